package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/kozaktomas/photo-culler/internal/database"
	"github.com/kozaktomas/photo-culler/internal/fingerprint"
)

var photoColumns = []string{
	"id", "project_id", "filename", "original_path", "thumbnail_path", "fingerprint",
	"size", "score", "comment", "selected", "group_id", "taken_at", "created_at", "updated_at",
}

// PhotoRepository stores photos and their analysis state
type PhotoRepository struct {
	pool *Pool
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(pool *Pool) *PhotoRepository {
	return &PhotoRepository{pool: pool}
}

// CreatePhoto inserts a photo, returning ErrDuplicatePhoto on a fingerprint conflict
func (r *PhotoRepository) CreatePhoto(ctx context.Context, photo *database.Photo) error {
	if !fingerprint.Valid(photo.Fingerprint) {
		return database.ErrInvalidFingerprint
	}

	now := time.Now().UTC()
	photo.CreatedAt = now
	photo.UpdatedAt = now

	query, args, err := r.pool.builder.Insert("photos").
		Columns("project_id", "filename", "original_path", "thumbnail_path", "fingerprint",
			"size", "score", "comment", "selected", "group_id", "taken_at", "created_at", "updated_at").
		Values(photo.ProjectID, photo.Filename, photo.OriginalPath, photo.ThumbnailPath, photo.Fingerprint,
			photo.Size, photo.Score, photo.Comment, photo.Selected, photo.GroupID, nullMillis(photo.TakenAt),
			toMillis(now), toMillis(now)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert photo: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&photo.ID); err != nil {
		if isUniqueViolation(err) {
			return database.ErrDuplicatePhoto
		}
		return fmt.Errorf("insert photo: %w", err)
	}
	return nil
}

// GetPhoto retrieves a photo by ID, returns nil if not found
func (r *PhotoRepository) GetPhoto(ctx context.Context, id int64) (*database.Photo, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

// FindByFingerprint returns the photo with the given fingerprint in a project, nil if none
func (r *PhotoRepository) FindByFingerprint(ctx context.Context, projectID, fingerprint string) (*database.Photo, error) {
	return r.getOne(ctx, sq.Eq{"project_id": projectID, "fingerprint": fingerprint})
}

func (r *PhotoRepository) getOne(ctx context.Context, where sq.Eq) (*database.Photo, error) {
	query, args, err := r.pool.builder.Select(photoColumns...).
		From("photos").
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get photo: %w", err)
	}

	p, err := scanPhoto(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get photo: %w", err)
	}
	return p, nil
}

// ListPhotos returns all photos of a project ordered by ID
func (r *PhotoRepository) ListPhotos(ctx context.Context, projectID string) ([]database.Photo, error) {
	return r.list(ctx, sq.Eq{"project_id": projectID})
}

// ListUnscoredPhotos returns photos with a null score ordered by ID
func (r *PhotoRepository) ListUnscoredPhotos(ctx context.Context, projectID string) ([]database.Photo, error) {
	return r.list(ctx, sq.Eq{"project_id": projectID, "score": nil})
}

// ListSelectedPhotos returns photos flagged for export ordered by ID
func (r *PhotoRepository) ListSelectedPhotos(ctx context.Context, projectID string) ([]database.Photo, error) {
	return r.list(ctx, sq.Eq{"project_id": projectID, "selected": true})
}

// ListByGroup returns the members of one similarity group ordered by ID
func (r *PhotoRepository) ListByGroup(ctx context.Context, projectID string, groupID int64) ([]database.Photo, error) {
	return r.list(ctx, sq.Eq{"project_id": projectID, "group_id": groupID})
}

func (r *PhotoRepository) list(ctx context.Context, where sq.Sqlizer) ([]database.Photo, error) {
	query, args, err := r.pool.builder.Select(photoColumns...).
		From("photos").
		Where(where).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list photos: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	var photos []database.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photos: %w", err)
	}
	return photos, nil
}

// CountGroups returns the number of distinct non-null group IDs in a project
func (r *PhotoRepository) CountGroups(ctx context.Context, projectID string) (int, error) {
	return r.count(ctx, "COUNT(DISTINCT group_id)", sq.And{
		sq.Eq{"project_id": projectID},
		sq.NotEq{"group_id": nil},
	})
}

// CountUnscored returns the number of photos with a null score
func (r *PhotoRepository) CountUnscored(ctx context.Context, projectID string) (int, error) {
	return r.count(ctx, "COUNT(*)", sq.Eq{"project_id": projectID, "score": nil})
}

func (r *PhotoRepository) count(ctx context.Context, expr string, where sq.Sqlizer) (int, error) {
	query, args, err := r.pool.builder.Select(expr).From("photos").Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var n int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count photos: %w", err)
	}
	return n, nil
}

// UpdateScore sets score and comment of a photo
func (r *PhotoRepository) UpdateScore(ctx context.Context, id int64, score float64, comment string) error {
	query, args, err := r.pool.builder.Update("photos").
		Set("score", score).
		Set("comment", comment).
		Set("updated_at", toMillis(time.Now())).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update score: %w", err)
	}
	return r.execOne(ctx, query, args, "update score")
}

// AssignGroup sets the group ID of all given photos in one transaction.
// Fails without changes if any photo is missing from the project.
func (r *PhotoRepository) AssignGroup(ctx context.Context, projectID string, groupID int64, photoIDs []int64) error {
	if len(photoIDs) == 0 {
		return nil
	}

	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query, args, err := r.pool.builder.Update("photos").
		Set("group_id", groupID).
		Set("updated_at", toMillis(time.Now())).
		Where(sq.Eq{"project_id": projectID, "id": photoIDs}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build assign group: %w", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("assign group: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("assign group rows affected: %w", err)
	}
	if n != int64(len(photoIDs)) {
		return fmt.Errorf("assign group %d: %w", groupID, database.ErrPhotoNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assign group: %w", err)
	}
	return nil
}

// ClearGroups sets the group ID of every photo in a project to null
func (r *PhotoRepository) ClearGroups(ctx context.Context, projectID string) error {
	query, args, err := r.pool.builder.Update("photos").
		Set("group_id", nil).
		Set("updated_at", toMillis(time.Now())).
		Where(sq.Eq{"project_id": projectID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clear groups: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("clear groups: %w", err)
	}
	return nil
}

// SetSelected updates the export flag of the given photos, returns rows changed
func (r *PhotoRepository) SetSelected(ctx context.Context, projectID string, photoIDs []int64, selected bool) (int64, error) {
	if len(photoIDs) == 0 {
		return 0, nil
	}

	query, args, err := r.pool.builder.Update("photos").
		Set("selected", selected).
		Set("updated_at", toMillis(time.Now())).
		Where(sq.Eq{"project_id": projectID, "id": photoIDs}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build set selected: %w", err)
	}

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("set selected: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("set selected rows affected: %w", err)
	}
	return n, nil
}

// DeletePhoto removes a photo row
func (r *PhotoRepository) DeletePhoto(ctx context.Context, id int64) error {
	query, args, err := r.pool.builder.Delete("photos").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete photo: %w", err)
	}
	return r.execOne(ctx, query, args, "delete photo")
}

func (r *PhotoRepository) execOne(ctx context.Context, query string, args []any, op string) error {
	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return database.ErrPhotoNotFound
	}
	return nil
}

func scanPhoto(row rowScanner) (*database.Photo, error) {
	var p database.Photo
	var score sql.NullFloat64
	var comment sql.NullString
	var groupID, takenAt sql.NullInt64
	var createdAt, updatedAt int64

	err := row.Scan(
		&p.ID, &p.ProjectID, &p.Filename, &p.OriginalPath, &p.ThumbnailPath, &p.Fingerprint,
		&p.Size, &score, &comment, &p.Selected, &groupID, &takenAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if score.Valid {
		p.Score = &score.Float64
	}
	if comment.Valid {
		p.Comment = &comment.String
	}
	if groupID.Valid {
		p.GroupID = &groupID.Int64
	}
	if takenAt.Valid {
		t := fromMillis(takenAt.Int64)
		p.TakenAt = &t
	}
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return &p, nil
}
