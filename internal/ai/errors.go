package ai

import (
	"errors"
	"net/http"

	"github.com/openai/openai-go"
	"google.golang.org/genai"
)

// ErrRateLimited is returned (wrapped) when the service asks the caller to slow down.
var ErrRateLimited = errors.New("rate limited")

// IsRateLimited reports whether err signals a rate limit from any provider.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return openaiErr.StatusCode == http.StatusTooManyRequests
	}

	var geminiErr genai.APIError
	if errors.As(err, &geminiErr) {
		return geminiErr.Code == http.StatusTooManyRequests
	}
	var geminiErrPtr *genai.APIError
	if errors.As(err, &geminiErrPtr) {
		return geminiErrPtr.Code == http.StatusTooManyRequests
	}

	return false
}
