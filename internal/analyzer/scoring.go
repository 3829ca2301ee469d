package analyzer

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"github.com/kozaktomas/photo-culler/internal/ai"
	"github.com/kozaktomas/photo-culler/internal/batch"
	"github.com/kozaktomas/photo-culler/internal/constants"
	"github.com/kozaktomas/photo-culler/internal/database"
)

// ScorePhotos scores every unscored photo of a project and returns how many
// photos received a score. Failed batches are logged and skipped.
func (a *Analyzer) ScorePhotos(ctx context.Context, projectID string, opts Options) (int, error) {
	project, err := a.project(ctx, projectID)
	if err != nil {
		return 0, err
	}

	photos, err := a.store.ListUnscoredPhotos(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to list unscored photos: %w", err)
	}

	batches := batch.Partition(photos, constants.ScoringBatchSize)
	progress := &progressTracker{total: len(photos), notify: opts.OnProgress}
	instruction := ai.ScoringInstruction(project.Prompt)

	a.log.Info("scoring started", "project", projectID, "photos", len(photos), "batches", len(batches))

	var scored atomic.Int64
	err = runBatches(ctx, batches, opts.Concurrency, func(ctx context.Context, i int, b []database.Photo) {
		n := a.scoreBatch(ctx, instruction, b)
		scored.Add(int64(n))
		progress.add(len(b), fmt.Sprintf("Scored batch %d/%d", i+1, len(batches)))
	})
	progress.done(fmt.Sprintf("Scored %d of %d photos", scored.Load(), len(photos)))

	a.log.Info("scoring finished", "project", projectID, "scored", scored.Load())
	return int(scored.Load()), err
}

func (a *Analyzer) scoreBatch(ctx context.Context, instruction string, b []database.Photo) int {
	images := a.loadImages(b)
	if len(images) == 0 {
		return 0
	}

	text, err := a.analyze(ctx, &ai.VisionRequest{
		Images:      images,
		Instruction: instruction,
		MaxTokens:   constants.ScoringMaxTokens,
	})
	if err != nil {
		a.log.Error("scoring batch failed", "first_photo_id", images[0].PhotoID, "photos", len(images), "error", err)
		return 0
	}

	result := ai.ParseEvaluations(text)
	if !result.OK {
		a.log.Warn("unusable scoring response", "first_photo_id", images[0].PhotoID, "response", truncate(text, 200))
		return 0
	}

	inBatch := idSet(images)
	scored := make(map[int64]bool)
	for _, ev := range result.Evaluations {
		if !inBatch[ev.PhotoID] {
			a.log.Debug("evaluation for photo outside batch ignored", "photo_id", ev.PhotoID)
			continue
		}
		score, ok := NormalizeScore(ev.Score)
		if !ok {
			a.log.Debug("non-finite score ignored", "photo_id", ev.PhotoID)
			continue
		}
		if err := a.store.UpdateScore(ctx, ev.PhotoID, score, strings.TrimSpace(ev.Comment)); err != nil {
			a.log.Error("failed to save score", "photo_id", ev.PhotoID, "error", err)
			continue
		}
		scored[ev.PhotoID] = true
	}
	return len(scored)
}

// NormalizeScore clamps a score to [0, 10] and rounds it to one decimal.
// Non-finite values are rejected.
func NormalizeScore(score float64) (float64, bool) {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, false
	}
	score = math.Max(0, math.Min(10, score))
	return math.Round(score*10) / 10, true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
