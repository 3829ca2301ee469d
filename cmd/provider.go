package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/photo-culler/internal/ai"
	"github.com/kozaktomas/photo-culler/internal/config"
	"github.com/spf13/cobra"
)

const supportedProviders = "openai, gemini, ollama, llamacpp"

func addProviderFlag(cmd *cobra.Command) {
	cmd.Flags().String("provider", "", "AI provider to use: "+supportedProviders+" (default from AI_PROVIDER)")
}

// providerName resolves the --provider flag, falling back to configuration.
func providerName(cmd *cobra.Command, cfg *config.Config) string {
	if name := mustGetString(cmd, "provider"); name != "" {
		return name
	}
	return cfg.AI.Provider
}

// modelName returns the model a provider would use, for price lookups.
func modelName(cfg *config.Config, provider string) (string, error) {
	switch provider {
	case "openai":
		return ai.OpenAIModel, nil
	case "gemini":
		return ai.GeminiModel, nil
	case "ollama":
		if cfg.Ollama.Model != "" {
			return cfg.Ollama.Model, nil
		}
		return ai.DefaultOllamaModel, nil
	case "llamacpp":
		if cfg.LlamaCpp.Model != "" {
			return cfg.LlamaCpp.Model, nil
		}
		return ai.DefaultLlamaCppModel, nil
	default:
		return "", fmt.Errorf("unknown provider: %s (supported: %s)", provider, supportedProviders)
	}
}

func providerPricing(cfg *config.Config, provider string) (ai.RequestPricing, error) {
	model, err := modelName(cfg, provider)
	if err != nil {
		return ai.RequestPricing{}, err
	}
	pricing := cfg.GetModelPricing(model)
	return ai.RequestPricing{Input: pricing.Standard.Input, Output: pricing.Standard.Output}, nil
}

func newProvider(ctx context.Context, cfg *config.Config, name string) (ai.Provider, error) {
	pricing, err := providerPricing(cfg, name)
	if err != nil {
		return nil, err
	}

	switch name {
	case "openai":
		if cfg.OpenAI.Token == "" {
			return nil, errors.New("OPENAI_TOKEN environment variable is required")
		}
		return ai.NewOpenAIProvider(cfg.OpenAI.Token, pricing), nil
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, errors.New("GEMINI_API_KEY environment variable is required")
		}
		p, err := ai.NewGeminiProvider(ctx, cfg.Gemini.APIKey, pricing)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini provider: %w", err)
		}
		return p, nil
	case "ollama":
		return ai.NewOllamaProvider(cfg.Ollama.URL, cfg.Ollama.Model), nil
	default:
		p, err := ai.NewLlamaCppProvider(cfg.LlamaCpp.URL, cfg.LlamaCpp.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create llama.cpp provider: %w", err)
		}
		return p, nil
	}
}

func printUsage(provider ai.Provider) {
	usage := provider.GetUsage()
	if usage.InputTokens == 0 && usage.OutputTokens == 0 {
		return
	}
	fmt.Printf("\nAPI Usage (%s):\n", provider.Name())
	fmt.Printf("  Requests: %d\n", usage.Requests)
	fmt.Printf("  Input tokens: %d\n", usage.InputTokens)
	fmt.Printf("  Output tokens: %d\n", usage.OutputTokens)
	fmt.Printf("  Total cost: $%.4f\n", usage.TotalCost)
}
