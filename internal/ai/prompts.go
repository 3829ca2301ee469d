package ai

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed prompts/scoring.txt
var scoringPrompt string

//go:embed prompts/grouping.txt
var groupingPrompt string

// PhotoMarker is the text label placed before each image in a request.
func PhotoMarker(photoID int64) string {
	return fmt.Sprintf("Photo ID: %d", photoID)
}

// ScoringInstruction returns the scoring rubric, extended with the project's
// own guidance when present.
func ScoringInstruction(customPrompt string) string {
	customPrompt = strings.TrimSpace(customPrompt)
	if customPrompt == "" {
		return scoringPrompt
	}
	return scoringPrompt + "\nAdditional guidance from the photographer:\n" + customPrompt + "\n"
}

// GroupingInstruction returns the similarity rubric.
func GroupingInstruction() string {
	return groupingPrompt
}

// markerList describes image order for backends that cannot interleave text
// between images.
func markerList(images []TaggedImage) string {
	var b strings.Builder
	b.WriteString("The images are attached in this order:\n")
	for i, img := range images {
		fmt.Fprintf(&b, "%d. %s\n", i+1, PhotoMarker(img.PhotoID))
	}
	return b.String()
}
