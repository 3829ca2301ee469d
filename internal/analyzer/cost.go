package analyzer

import (
	"context"
	"fmt"

	"github.com/kozaktomas/photo-culler/internal/ai"
	"github.com/kozaktomas/photo-culler/internal/batch"
	"github.com/kozaktomas/photo-culler/internal/constants"
)

// CostEstimate is the projected price of scoring the unscored photos.
type CostEstimate struct {
	Photos       int
	Batches      int
	InputTokens  int
	OutputTokens int
	InputCost    float64 // USD
	OutputCost   float64 // USD
	TotalCost    float64 // USD
}

// EstimateCost computes the cost of scoring photoCount photos at the given
// per-million-token prices.
func EstimateCost(photoCount int, pricing ai.RequestPricing) CostEstimate {
	if photoCount <= 0 {
		return CostEstimate{}
	}

	batches := batch.Count(photoCount, constants.ScoringBatchSize)
	input := photoCount*constants.InputTokensPerPhoto + batches*constants.InstructionTokensPerBatch
	output := photoCount * constants.OutputTokensPerPhoto

	est := CostEstimate{
		Photos:       photoCount,
		Batches:      batches,
		InputTokens:  input,
		OutputTokens: output,
		InputCost:    float64(input) / 1_000_000 * pricing.Input,
		OutputCost:   float64(output) / 1_000_000 * pricing.Output,
	}
	est.TotalCost = est.InputCost + est.OutputCost
	return est
}

// EstimateProjectCost estimates scoring cost for a project's unscored photos.
func (a *Analyzer) EstimateProjectCost(ctx context.Context, projectID string, pricing ai.RequestPricing) (CostEstimate, error) {
	if _, err := a.project(ctx, projectID); err != nil {
		return CostEstimate{}, err
	}
	n, err := a.store.CountUnscored(ctx, projectID)
	if err != nil {
		return CostEstimate{}, fmt.Errorf("failed to count unscored photos: %w", err)
	}
	return EstimateCost(n, pricing), nil
}
