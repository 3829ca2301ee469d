package analyzer

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/photo-culler/internal/database"
	"github.com/kozaktomas/photo-culler/internal/library"
)

// SetSelected flags photos for export and returns how many rows changed.
func (a *Analyzer) SetSelected(ctx context.Context, projectID string, photoIDs []int64, selected bool) (int64, error) {
	if _, err := a.project(ctx, projectID); err != nil {
		return 0, err
	}
	n, err := a.store.SetSelected(ctx, projectID, photoIDs, selected)
	if err != nil {
		return 0, fmt.Errorf("failed to update selection: %w", err)
	}
	return n, nil
}

// SelectBest selects the best photo of each group plus every ungrouped photo
// scored at or above threshold. Existing selections are kept.
func (a *Analyzer) SelectBest(ctx context.Context, projectID string, threshold float64) (int64, error) {
	if _, err := a.project(ctx, projectID); err != nil {
		return 0, err
	}

	photos, err := a.store.ListPhotos(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to list photos: %w", err)
	}

	byGroup := make(map[int64][]database.Photo)
	var ids []int64
	for _, p := range photos {
		switch {
		case p.GroupID != nil:
			byGroup[*p.GroupID] = append(byGroup[*p.GroupID], p)
		case p.IsScored() && *p.Score >= threshold:
			ids = append(ids, p.ID)
		}
	}
	for _, members := range byGroup {
		ids = append(ids, BestOf(members).ID)
	}

	return a.SetSelected(ctx, projectID, ids, true)
}

// Export copies the originals of selected photos into the project's exports
// directory and returns the written paths.
func (a *Analyzer) Export(ctx context.Context, projectID string) ([]string, error) {
	if _, err := a.project(ctx, projectID); err != nil {
		return nil, err
	}

	photos, err := a.store.ListSelectedPhotos(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list selected photos: %w", err)
	}

	dir := a.layout.ExportsDir(projectID)
	paths := make([]string, 0, len(photos))
	for _, p := range photos {
		path, err := library.CopyUnique(p.OriginalPath, dir, p.Filename)
		if err != nil {
			return paths, fmt.Errorf("failed to export photo %d: %w", p.ID, err)
		}
		paths = append(paths, path)
	}

	a.log.Info("export finished", "project", projectID, "photos", len(paths), "dir", dir)
	return paths, nil
}

// DeletePhoto removes the photo row, then its files on a best-effort basis.
func (a *Analyzer) DeletePhoto(ctx context.Context, photoID int64) error {
	photo, err := a.store.GetPhoto(ctx, photoID)
	if err != nil {
		return fmt.Errorf("failed to load photo: %w", err)
	}
	if photo == nil {
		return database.ErrPhotoNotFound
	}

	if err := a.store.DeletePhoto(ctx, photoID); err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	if err := library.RemoveFiles(photo.OriginalPath, photo.ThumbnailPath); err != nil {
		a.log.Warn("failed to remove photo files", "photo_id", photoID, "error", err)
	}
	return nil
}

// DeleteProject removes a project with its photos, then its directory on a
// best-effort basis.
func (a *Analyzer) DeleteProject(ctx context.Context, projectID string) error {
	if err := a.store.DeleteProject(ctx, projectID); err != nil {
		if errors.Is(err, database.ErrProjectNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if err := a.layout.RemoveProject(projectID); err != nil {
		a.log.Warn("failed to remove project directory", "project", projectID, "error", err)
	}
	return nil
}
