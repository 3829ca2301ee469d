package ai

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// MaxImagesPerRequest bounds a single vision request.
const MaxImagesPerRequest = 20

// TaggedImage is one JPEG sent to the vision service, labelled with the
// photo it belongs to.
type TaggedImage struct {
	PhotoID int64
	Data    []byte
}

// VisionRequest is an ordered list of tagged images followed by one
// instruction block.
type VisionRequest struct {
	Images      []TaggedImage
	Instruction string
	MaxTokens   int
}

// Validate checks the request against the service contract.
func (r *VisionRequest) Validate() error {
	if r == nil || len(r.Images) == 0 {
		return errors.New("vision request has no images")
	}
	if len(r.Images) > MaxImagesPerRequest {
		return fmt.Errorf("vision request has %d images, at most %d allowed", len(r.Images), MaxImagesPerRequest)
	}
	if r.Instruction == "" {
		return errors.New("vision request has no instruction")
	}
	return nil
}

// Provider defines the interface for vision backends.
type Provider interface {
	Name() string
	// Analyze sends the request and returns the raw response text.
	// Rate limiting is reported so that IsRateLimited(err) is true.
	Analyze(ctx context.Context, req *VisionRequest) (string, error)
	// ValidateKey performs a cheap authenticated call.
	ValidateKey(ctx context.Context) error

	// Usage tracking.
	GetUsage() *Usage
	ResetUsage()
}

// Usage tracks token usage and calculates cost.
type Usage struct {
	Requests     int
	InputTokens  int
	OutputTokens int
	TotalCost    float64 // in USD
}

// RequestPricing holds input/output prices per 1M tokens
type RequestPricing struct {
	Input  float64
	Output float64
}

// usageTracker is embedded by providers; batches may run concurrently.
type usageTracker struct {
	mu      sync.Mutex
	usage   Usage
	pricing RequestPricing
}

func (t *usageTracker) trackUsage(inputTokens, outputTokens int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage.Requests++
	t.usage.InputTokens += inputTokens
	t.usage.OutputTokens += outputTokens
	t.usage.TotalCost += float64(inputTokens) / 1_000_000 * t.pricing.Input
	t.usage.TotalCost += float64(outputTokens) / 1_000_000 * t.pricing.Output
}

// GetUsage returns a snapshot of the accumulated usage.
func (t *usageTracker) GetUsage() *Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	u := t.usage
	return &u
}

// ResetUsage clears the accumulated usage.
func (t *usageTracker) ResetUsage() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage = Usage{}
}
