package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// GeminiModel is the model used for every Gemini request.
const GeminiModel = "gemini-2.5-flash"

type GeminiProvider struct {
	usageTracker
	client *genai.Client
}

func NewGeminiProvider(ctx context.Context, apiKey string, pricing RequestPricing) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		usageTracker: usageTracker{pricing: pricing},
		client:       client,
	}, nil
}

func (p *GeminiProvider) Name() string {
	return GeminiModel
}

func (p *GeminiProvider) Analyze(ctx context.Context, req *VisionRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	parts := make([]*genai.Part, 0, len(req.Images)*2+1)
	for _, img := range req.Images {
		data, err := ResizeImage(img.Data, visionMaxImageSize)
		if err != nil {
			return "", fmt.Errorf("failed to prepare image for photo %d: %w", img.PhotoID, err)
		}
		parts = append(parts,
			&genai.Part{Text: PhotoMarker(img.PhotoID)},
			&genai.Part{InlineData: &genai.Blob{Data: data, MIMEType: "image/jpeg"}},
		)
	}
	parts = append(parts, &genai.Part{Text: req.Instruction})

	contents := []*genai.Content{{Role: "user", Parts: parts}}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	result, err := p.client.Models.GenerateContent(ctx, GeminiModel, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	// Track usage
	if result.UsageMetadata != nil {
		p.trackUsage(int(result.UsageMetadata.PromptTokenCount), int(result.UsageMetadata.CandidatesTokenCount))
	}

	content := result.Text()
	if content == "" {
		return "", errors.New("no response from Gemini")
	}
	return content, nil
}

// ValidateKey fetches the model description, which requires a valid key.
func (p *GeminiProvider) ValidateKey(ctx context.Context) error {
	if _, err := p.client.Models.Get(ctx, GeminiModel, nil); err != nil {
		return fmt.Errorf("gemini key validation failed: %w", err)
	}
	return nil
}
