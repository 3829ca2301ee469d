package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/kozaktomas/photo-culler/internal/database"
)

var projectColumns = []string{"id", "name", "prompt", "created_at", "updated_at"}

// ProjectRepository stores projects
type ProjectRepository struct {
	pool *Pool
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(pool *Pool) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

// CreateProject inserts a project, generating an ID when none is set
func (r *ProjectRepository) CreateProject(ctx context.Context, project *database.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now

	query, args, err := r.pool.builder.Insert("projects").
		Columns(projectColumns...).
		Values(project.ID, project.Name, project.Prompt, toMillis(project.CreatedAt), toMillis(project.UpdatedAt)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert project: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// GetProject retrieves a project by ID, returns nil if not found
func (r *ProjectRepository) GetProject(ctx context.Context, id string) (*database.Project, error) {
	query, args, err := r.pool.builder.Select(projectColumns...).
		From("projects").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get project: %w", err)
	}

	p, err := scanProject(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// ListProjects returns all projects ordered by creation time
func (r *ProjectRepository) ListProjects(ctx context.Context) ([]database.Project, error) {
	query, args, err := r.pool.builder.Select(projectColumns...).
		From("projects").
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list projects: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []database.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}
	return projects, nil
}

// UpdateProject updates name and prompt of an existing project
func (r *ProjectRepository) UpdateProject(ctx context.Context, project *database.Project) error {
	project.UpdatedAt = time.Now().UTC()

	query, args, err := r.pool.builder.Update("projects").
		Set("name", project.Name).
		Set("prompt", project.Prompt).
		Set("updated_at", toMillis(project.UpdatedAt)).
		Where(sq.Eq{"id": project.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update project: %w", err)
	}

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project rows affected: %w", err)
	}
	if n == 0 {
		return database.ErrProjectNotFound
	}
	return nil
}

// DeleteProject removes a project together with its photo rows
func (r *ProjectRepository) DeleteProject(ctx context.Context, id string) error {
	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	deletePhotos, args, err := r.pool.builder.Delete("photos").Where(sq.Eq{"project_id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete photos: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deletePhotos, args...); err != nil {
		return fmt.Errorf("delete project photos: %w", err)
	}

	deleteProject, args, err := r.pool.builder.Delete("projects").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete project: %w", err)
	}
	result, err := tx.ExecContext(ctx, deleteProject, args...)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project rows affected: %w", err)
	}
	if n == 0 {
		return database.ErrProjectNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete project: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*database.Project, error) {
	var p database.Project
	var createdAt, updatedAt int64
	if err := row.Scan(&p.ID, &p.Name, &p.Prompt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return &p, nil
}
