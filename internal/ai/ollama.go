package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "llama3.2-vision:11b"
)

type OllamaProvider struct {
	usageTracker
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaProvider(baseURL, model string) *OllamaProvider {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaProvider{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
	}
}

func (p *OllamaProvider) Name() string {
	return p.model
}

// ollamaRequest represents a request to the Ollama chat API
type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  ollamaOptions   `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"` // base64 encoded images
}

type ollamaOptions struct {
	NumPredict int `json:"num_predict,omitempty"`
}

// ollamaResponse represents a response from the Ollama chat API
type ollamaResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done            bool `json:"done"`
	PromptEvalCount int  `json:"prompt_eval_count"`
	EvalCount       int  `json:"eval_count"`
}

// Analyze sends all images in one user message. Ollama cannot interleave text
// between images, so the id order is spelled out before the instruction.
func (p *OllamaProvider) Analyze(ctx context.Context, req *VisionRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	images := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		data, err := ResizeImage(img.Data, visionMaxImageSize)
		if err != nil {
			return "", fmt.Errorf("failed to prepare image for photo %d: %w", img.PhotoID, err)
		}
		images = append(images, base64.StdEncoding.EncodeToString(data))
	}

	messages := []ollamaMessage{
		{
			Role:    "user",
			Content: markerList(req.Images) + "\n" + req.Instruction,
			Images:  images,
		},
	}

	resp, err := p.sendRequest(ctx, messages, req.MaxTokens)
	if err != nil {
		return "", fmt.Errorf("ollama API error: %w", err)
	}

	// Ollama is free, but we track tokens for stats
	p.trackUsage(resp.PromptEvalCount, resp.EvalCount)

	return resp.Message.Content, nil
}

// ValidateKey checks that the server is reachable; Ollama has no keys.
func (p *OllamaProvider) ValidateKey(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama not ready (status %d)", resp.StatusCode)
	}
	return nil
}

func (p *OllamaProvider) sendRequest(ctx context.Context, messages []ollamaMessage, maxTokens int) (*ollamaResponse, error) {
	reqBody := ollamaRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   false,
		Format:   "json",
		Options: ollamaOptions{
			NumPredict: maxTokens,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if err := statusError(resp.StatusCode, body); err != nil {
		return nil, err
	}

	var ollamaResp ollamaResponse
	if err := json.Unmarshal(body, &ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &ollamaResp, nil
}

// statusError maps non-200 responses of HTTP backends to errors, keeping 429
// recognizable as a rate limit.
func statusError(status int, body []byte) error {
	switch status {
	case http.StatusOK:
		return nil
	case http.StatusTooManyRequests:
		return fmt.Errorf("API error (status %d): %w", status, ErrRateLimited)
	default:
		return fmt.Errorf("API error (status %d): %s", status, string(body))
	}
}
