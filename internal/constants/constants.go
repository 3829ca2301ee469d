// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Batch sizes for requests to the vision service
const (
	// ScoringBatchSize is the number of photos sent together for scoring
	ScoringBatchSize = 10

	// GroupingBatchSize is the number of photos sent together for similarity grouping
	GroupingBatchSize = 20

	// MinGroupSize is the smallest cluster that is ever persisted as a group
	MinGroupSize = 2
)

// Thumbnail constants
const (
	// ThumbnailMaxSize is the square bound (fit-inside, never upscaled) for previews
	ThumbnailMaxSize = 800

	// ThumbnailQuality is the JPEG quality used for previews
	ThumbnailQuality = 85

	// VisionMaxImageSize bounds any image sent to the vision service
	VisionMaxImageSize = 1024
)

// Retry constants
const (
	// MaxRateLimitRetries is the number of retries after the first attempt (4 attempts total)
	MaxRateLimitRetries = 3

	// RateLimitBaseDelay is multiplied by the 1-based attempt index to get the wait
	RateLimitBaseDelay = 5 * time.Second
)

// Cost estimation constants, in tokens
const (
	// InputTokensPerPhoto approximates the image tokens billed for one thumbnail
	InputTokensPerPhoto = 1100

	// InstructionTokensPerBatch approximates the rubric and id markers sent once per batch
	InstructionTokensPerBatch = 700

	// OutputTokensPerPhoto approximates one evaluation entry in the response
	OutputTokensPerPhoto = 80
)

// Response limits
const (
	// ScoringMaxTokens caps the response of one scoring request
	ScoringMaxTokens = 2000

	// GroupingMaxTokens caps the response of one grouping request
	GroupingMaxTokens = 2000
)

// Selection constants
const (
	// DefaultSelectThreshold is the minimum score for an ungrouped photo to be auto-selected
	DefaultSelectThreshold = 7.0
)

// Project directory names
const (
	OriginalsDir  = "originals"
	ThumbnailsDir = "thumbnails"
	ExportsDir    = "exports"
)
