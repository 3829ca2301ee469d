// Package ingest adds image files to a project: fingerprinting, duplicate
// detection, storing the original, rendering a thumbnail and persisting the row.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/photo-culler/internal/constants"
	"github.com/kozaktomas/photo-culler/internal/database"
	"github.com/kozaktomas/photo-culler/internal/fingerprint"
	"github.com/kozaktomas/photo-culler/internal/library"
	"github.com/kozaktomas/photo-culler/internal/logger"
	"github.com/kozaktomas/photo-culler/internal/thumbnail"
	"github.com/rwcarlsen/goexif/exif"
)

// Result describes the outcome of ingesting one file
type Result struct {
	Duplicate bool
	Photo     *database.Photo // the existing photo when Duplicate is set
}

// Progress is emitted once per file, in submission order
type Progress struct {
	Current  int
	Total    int
	Filename string
}

// Failure records a file that could not be ingested
type Failure struct {
	Path string
	Err  error
}

// Summary aggregates the outcome of IngestFiles
type Summary struct {
	Added      []database.Photo
	Duplicates []database.Photo
	Failures   []Failure
}

// Pipeline ingests files into projects
type Pipeline struct {
	store    database.Store
	layout   *library.Layout
	producer thumbnail.Producer
	log      *logger.Logger
}

// NewPipeline creates an ingestion pipeline
func NewPipeline(store database.Store, layout *library.Layout, producer thumbnail.Producer, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{store: store, layout: layout, producer: producer, log: log}
}

// Ingest adds one file to a project. Files already present (same content)
// are reported as duplicates without any write.
func (p *Pipeline) Ingest(ctx context.Context, projectID, path string) (*Result, error) {
	project, err := p.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, database.ErrProjectNotFound
	}
	return p.ingest(ctx, projectID, path)
}

func (p *Pipeline) ingest(ctx context.Context, projectID, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	sum := fingerprint.Compute(data)

	existing, err := p.store.FindByFingerprint(ctx, projectID, sum)
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicate: %w", err)
	}
	if existing != nil {
		p.log.Debug("duplicate skipped", "path", path, "photo_id", existing.ID)
		return &Result{Duplicate: true, Photo: existing}, nil
	}

	name := library.CleanFilename(path)
	originalPath, err := library.WriteUnique(p.layout.OriginalsDir(projectID), name, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store original: %w", err)
	}

	thumb, err := p.producer.Produce(originalPath, constants.ThumbnailMaxSize, constants.ThumbnailQuality)
	if err != nil {
		p.log.Warn("thumbnail failed, using placeholder", "path", path, "error", err)
		thumb = thumbnail.Placeholder(constants.ThumbnailMaxSize, constants.ThumbnailQuality)
	}

	thumbPath, err := library.WriteUnique(p.layout.ThumbnailsDir(projectID), uuid.NewString()+".jpg", thumb)
	if err != nil {
		library.RemoveFiles(originalPath)
		return nil, fmt.Errorf("failed to store thumbnail: %w", err)
	}

	photo := &database.Photo{
		ProjectID:     projectID,
		Filename:      name,
		OriginalPath:  originalPath,
		ThumbnailPath: thumbPath,
		Fingerprint:   sum,
		Size:          int64(len(data)),
		TakenAt:       takenAt(data),
	}
	if err := p.store.CreatePhoto(ctx, photo); err != nil {
		if rmErr := library.RemoveFiles(originalPath, thumbPath); rmErr != nil {
			p.log.Warn("failed to remove orphaned files", "path", path, "error", rmErr)
		}
		if errors.Is(err, database.ErrDuplicatePhoto) {
			existing, findErr := p.store.FindByFingerprint(ctx, projectID, sum)
			if findErr == nil && existing != nil {
				return &Result{Duplicate: true, Photo: existing}, nil
			}
		}
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}

	p.log.Info("photo ingested", "project", projectID, "photo_id", photo.ID, "filename", name)
	return &Result{Photo: photo}, nil
}

// IngestFiles ingests files one after another. A per-file failure is recorded
// in the summary and does not stop the run. onProgress may be nil.
func (p *Pipeline) IngestFiles(ctx context.Context, projectID string, paths []string, onProgress func(Progress)) (*Summary, error) {
	project, err := p.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, database.ErrProjectNotFound
	}

	summary := &Summary{}
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		res, err := p.ingest(ctx, projectID, path)
		switch {
		case err != nil:
			p.log.Error("ingest failed", "path", path, "error", err)
			summary.Failures = append(summary.Failures, Failure{Path: path, Err: err})
		case res.Duplicate:
			summary.Duplicates = append(summary.Duplicates, *res.Photo)
		default:
			summary.Added = append(summary.Added, *res.Photo)
		}

		if onProgress != nil {
			onProgress(Progress{Current: i + 1, Total: len(paths), Filename: library.CleanFilename(path)})
		}
	}
	return summary, nil
}

// takenAt extracts the capture time from EXIF, nil when absent.
func takenAt(data []byte) *time.Time {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	t, err := x.DateTime()
	if err != nil || t.IsZero() {
		return nil
	}
	t = t.UTC()
	return &t
}
