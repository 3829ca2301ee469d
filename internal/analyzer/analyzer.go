// Package analyzer runs vision-service analysis over a project's photos and
// reconciles the results into the store.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/kozaktomas/photo-culler/internal/ai"
	"github.com/kozaktomas/photo-culler/internal/database"
	"github.com/kozaktomas/photo-culler/internal/library"
	"github.com/kozaktomas/photo-culler/internal/logger"
	"github.com/kozaktomas/photo-culler/internal/retry"
	"golang.org/x/sync/errgroup"
)

// AnalysisProgress is reported after every batch attempt and once more with
// Done set when the run finishes.
type AnalysisProgress struct {
	Current int // photos processed so far, cumulative
	Total   int
	Message string
	Done    bool
}

// Options tunes a run.
type Options struct {
	Concurrency int                    // batches in flight; values below 1 mean 1
	OnProgress  func(AnalysisProgress) // optional progress callback
}

type Analyzer struct {
	store    database.Store
	provider ai.Provider
	governor *retry.Governor
	layout   *library.Layout
	log      *logger.Logger
}

// New creates an analyzer. provider may be nil for commands that never call
// the vision service.
func New(store database.Store, provider ai.Provider, layout *library.Layout, log *logger.Logger) *Analyzer {
	if log == nil {
		log = logger.Nop()
	}
	return &Analyzer{
		store:    store,
		provider: provider,
		governor: retry.New(ai.IsRateLimited, log),
		layout:   layout,
		log:      log,
	}
}

// SetGovernor replaces the retry policy.
func (a *Analyzer) SetGovernor(g *retry.Governor) {
	a.governor = g
}

func (a *Analyzer) project(ctx context.Context, projectID string) (*database.Project, error) {
	project, err := a.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, database.ErrProjectNotFound
	}
	return project, nil
}

// progressTracker counts processed photos across concurrently running batches.
type progressTracker struct {
	mu        sync.Mutex
	processed int
	total     int
	notify    func(AnalysisProgress)
}

func (p *progressTracker) add(n int, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed += n
	if p.notify != nil {
		p.notify(AnalysisProgress{Current: p.processed, Total: p.total, Message: message})
	}
}

func (p *progressTracker) done(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.notify != nil {
		p.notify(AnalysisProgress{Current: p.processed, Total: p.total, Message: message, Done: true})
	}
}

// runBatches calls fn for every batch with at most concurrency in flight.
// Cancellation is observed between batches; fn itself never fails the run.
func runBatches(ctx context.Context, batches [][]database.Photo, concurrency int, fn func(ctx context.Context, index int, batch []database.Photo)) error {
	if concurrency < 1 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, batch := range batches {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(gctx, i, batch)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// loadImages reads the thumbnails of a batch, leaving out unreadable ones.
func (a *Analyzer) loadImages(batch []database.Photo) []ai.TaggedImage {
	images := make([]ai.TaggedImage, 0, len(batch))
	for _, photo := range batch {
		data, err := os.ReadFile(photo.ThumbnailPath)
		if err != nil {
			a.log.Warn("thumbnail unreadable, photo skipped", "photo_id", photo.ID, "error", err)
			continue
		}
		images = append(images, ai.TaggedImage{PhotoID: photo.ID, Data: data})
	}
	return images
}

// analyze submits one request through the retry governor.
func (a *Analyzer) analyze(ctx context.Context, req *ai.VisionRequest) (string, error) {
	if a.provider == nil {
		return "", errors.New("no vision provider configured")
	}
	var text string
	err := a.governor.Do(ctx, func(ctx context.Context) error {
		t, err := a.provider.Analyze(ctx, req)
		if err != nil {
			return err
		}
		text = t
		return nil
	})
	return text, err
}

func idSet(images []ai.TaggedImage) map[int64]bool {
	set := make(map[int64]bool, len(images))
	for _, img := range images {
		set[img.PhotoID] = true
	}
	return set
}
