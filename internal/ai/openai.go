package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIModel is the model used for every OpenAI request.
const OpenAIModel = openai.ChatModelGPT4_1Mini

type OpenAIProvider struct {
	usageTracker
	client *openai.Client
}

// NewOpenAIProvider creates an OpenAI-backed provider. SDK retries are
// disabled; the retry governor owns backoff.
func NewOpenAIProvider(apiKey string, pricing RequestPricing, opts ...option.RequestOption) *OpenAIProvider {
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	client := openai.NewClient(opts...)
	return &OpenAIProvider{
		usageTracker: usageTracker{pricing: pricing},
		client:       &client,
	}
}

func (p *OpenAIProvider) Name() string {
	return OpenAIModel
}

func (p *OpenAIProvider) Analyze(ctx context.Context, req *VisionRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(req.Images)*2+1)
	for _, img := range req.Images {
		data, err := ResizeImage(img.Data, visionMaxImageSize)
		if err != nil {
			return "", fmt.Errorf("failed to prepare image for photo %d: %w", img.PhotoID, err)
		}
		parts = append(parts,
			openai.TextContentPart(PhotoMarker(img.PhotoID)),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL:    "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data),
				Detail: "low",
			}),
		)
	}
	parts = append(parts, openai.TextContentPart(req.Instruction))

	params := openai.ChatCompletionNewParams{
		Model: OpenAIModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: parts,
					},
				},
			},
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	// Track usage
	if resp.Usage.PromptTokens > 0 || resp.Usage.CompletionTokens > 0 {
		p.trackUsage(int(resp.Usage.PromptTokens), int(resp.Usage.CompletionTokens))
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// ValidateKey lists models, which requires a valid key.
func (p *OpenAIProvider) ValidateKey(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return fmt.Errorf("OpenAI key validation failed: %w", err)
	}
	return nil
}
