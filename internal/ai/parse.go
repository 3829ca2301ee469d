package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Evaluation is the service's verdict on one photo.
type Evaluation struct {
	PhotoID int64
	Score   float64
	Comment string
}

// EvaluationResult is the parsed scoring response. OK is false when no
// usable payload could be extracted.
type EvaluationResult struct {
	OK          bool
	Evaluations []Evaluation
}

// GroupProposal is one cluster of photos the service considers similar.
type GroupProposal struct {
	PhotoIDs []int64
	Reason   string
}

// GroupResult is the parsed grouping response.
type GroupResult struct {
	OK     bool
	Groups []GroupProposal
}

var fencedBlock = regexp.MustCompile("(?s)```[a-zA-Z]*[ \t]*\r?\n?(.*?)```")

// flexInt accepts a JSON number or a numeric string.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = flexInt(v)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != float64(int64(v)) {
		return fmt.Errorf("invalid photo id %s", data)
	}
	*f = flexInt(int64(v))
	return nil
}

// flexFloat accepts a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid score %s", data)
	}
	*f = flexFloat(v)
	return nil
}

type evaluationsPayload struct {
	Evaluations []struct {
		PhotoID flexInt   `json:"photo_id"`
		Score   flexFloat `json:"score"`
		Comment string    `json:"comment"`
	} `json:"evaluations"`
}

type groupsPayload struct {
	Groups []struct {
		PhotoIDs []flexInt `json:"photo_ids"`
		Reason   string    `json:"reason"`
	} `json:"groups"`
}

// ParseEvaluations extracts scoring results from raw response text. It never
// fails; unusable text yields an empty result with OK unset.
func ParseEvaluations(text string) EvaluationResult {
	var payload evaluationsPayload
	if !decodePayload(text, &payload) {
		return EvaluationResult{}
	}

	result := EvaluationResult{OK: true, Evaluations: make([]Evaluation, 0, len(payload.Evaluations))}
	for _, e := range payload.Evaluations {
		result.Evaluations = append(result.Evaluations, Evaluation{
			PhotoID: int64(e.PhotoID),
			Score:   float64(e.Score),
			Comment: e.Comment,
		})
	}
	return result
}

// ParseGroups extracts grouping results from raw response text. It never
// fails; unusable text yields an empty result with OK unset.
func ParseGroups(text string) GroupResult {
	var payload groupsPayload
	if !decodePayload(text, &payload) {
		return GroupResult{}
	}

	result := GroupResult{OK: true, Groups: make([]GroupProposal, 0, len(payload.Groups))}
	for _, g := range payload.Groups {
		ids := make([]int64, 0, len(g.PhotoIDs))
		for _, id := range g.PhotoIDs {
			ids = append(ids, int64(id))
		}
		result.Groups = append(result.Groups, GroupProposal{PhotoIDs: ids, Reason: g.Reason})
	}
	return result
}

// decodePayload tries the fenced/trimmed text first, then the first balanced
// object inside it.
func decodePayload(text string, v any) bool {
	candidate := extractPayload(text)
	if candidate == "" {
		return false
	}
	if json.Unmarshal([]byte(candidate), v) == nil {
		return true
	}

	object := extractJSON(candidate)
	if object == candidate || !strings.HasPrefix(object, "{") {
		return false
	}
	return json.Unmarshal([]byte(object), v) == nil
}

// extractPayload returns the interior of the first fenced code block, or the
// trimmed text when there is none.
func extractPayload(text string) string {
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

// extractJSON attempts to extract JSON from a response that may contain extra text
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	if start == -1 {
		return content
	}

	// Find matching closing brace, ignoring braces inside strings
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		c := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[start : i+1]
			}
		}
	}

	// If no matching brace found, return from start
	return content[start:]
}
