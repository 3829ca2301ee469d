package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetModelPricing_KnownModel(t *testing.T) {
	cfg := Load()

	pricing := cfg.GetModelPricing("gpt-4.1-mini")

	if pricing.Standard.Input != 0.40 {
		t.Errorf("expected standard input price 0.40, got %f", pricing.Standard.Input)
	}

	if pricing.Standard.Output != 1.60 {
		t.Errorf("expected standard output price 1.60, got %f", pricing.Standard.Output)
	}
}

func TestGetModelPricing_GeminiModel(t *testing.T) {
	cfg := Load()

	pricing := cfg.GetModelPricing("gemini-2.5-flash")

	if pricing.Standard.Input != 0.30 {
		t.Errorf("expected gemini standard input 0.30, got %f", pricing.Standard.Input)
	}

	if pricing.Standard.Output != 2.50 {
		t.Errorf("expected gemini standard output 2.50, got %f", pricing.Standard.Output)
	}
}

func TestGetModelPricing_LocalModel(t *testing.T) {
	cfg := Load()

	pricing := cfg.GetModelPricing("llama3.2-vision:11b")

	if pricing.Standard.Input != 0 || pricing.Standard.Output != 0 {
		t.Errorf("expected zero pricing for local model, got input=%f output=%f",
			pricing.Standard.Input, pricing.Standard.Output)
	}
}

func TestGetModelPricing_UnknownModel(t *testing.T) {
	cfg := Load()

	pricing := cfg.GetModelPricing("unknown-model-xyz")

	if pricing.Standard.Input != 0 || pricing.Standard.Output != 0 {
		t.Errorf("expected zero pricing for unknown model, got input=%f output=%f",
			pricing.Standard.Input, pricing.Standard.Output)
	}
}

func TestLoad_PricesLoaded(t *testing.T) {
	cfg := Load()

	expectedModels := []string{"gpt-4.1-mini", "gemini-2.5-flash", "llama3.2-vision"}
	for _, model := range expectedModels {
		if _, ok := cfg.Prices.Models[model]; !ok {
			t.Errorf("expected model '%s' to be in prices", model)
		}
	}
}

func TestLoad_DefaultDatabaseIsSQLiteInLibrary(t *testing.T) {
	root := t.TempDir()
	t.Setenv("PHOTO_CULLER_LIBRARY", root)
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("DATABASE_URL", "")

	cfg := Load()

	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected default driver sqlite, got '%s'", cfg.Database.Driver)
	}

	expected := filepath.Join(root, "culler.db")
	if cfg.Database.URL != expected {
		t.Errorf("expected database path '%s', got '%s'", expected, cfg.Database.URL)
	}
}

func TestLoad_PostgresKeepsExplicitURL(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/db")

	cfg := Load()

	if cfg.Database.Driver != "postgres" {
		t.Errorf("expected driver to be lowercased to 'postgres', got '%s'", cfg.Database.Driver)
	}

	if cfg.Database.URL != "postgres://u:p@localhost/db" {
		t.Errorf("unexpected database URL '%s'", cfg.Database.URL)
	}
}

func TestLoad_InvalidMaxOpenConns(t *testing.T) {
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "invalid")

	cfg := Load()

	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("expected default 25 for invalid input, got %d", cfg.Database.MaxOpenConns)
	}
}

func TestLoad_NegativeMaxIdleConns(t *testing.T) {
	t.Setenv("DATABASE_MAX_IDLE_CONNS", "-3")

	cfg := Load()

	if cfg.Database.MaxIdleConns != 5 {
		t.Errorf("expected default 5 for negative input, got %d", cfg.Database.MaxIdleConns)
	}
}

func TestLoad_SelectThreshold(t *testing.T) {
	t.Setenv("SELECT_THRESHOLD", "8.5")

	cfg := Load()

	if cfg.Library.SelectThreshold != 8.5 {
		t.Errorf("expected select threshold 8.5, got %f", cfg.Library.SelectThreshold)
	}

	t.Setenv("SELECT_THRESHOLD", "nope")
	cfg = Load()

	if cfg.Library.SelectThreshold != 7.0 {
		t.Errorf("expected default threshold 7.0 for invalid input, got %f", cfg.Library.SelectThreshold)
	}
}

func TestLoad_ProviderConfig(t *testing.T) {
	t.Setenv("AI_PROVIDER", "Gemini")
	t.Setenv("OPENAI_TOKEN", "sk-test-token-123")
	t.Setenv("GEMINI_API_KEY", "gemini-api-key-456")
	t.Setenv("OLLAMA_URL", "http://localhost:11434")
	t.Setenv("OLLAMA_MODEL", "llava:13b")
	t.Setenv("LLAMACPP_URL", "http://gpu-box:8080")
	t.Setenv("LLAMACPP_MODEL", "")

	cfg := Load()

	if cfg.AI.Provider != "gemini" {
		t.Errorf("expected provider 'gemini', got '%s'", cfg.AI.Provider)
	}

	if cfg.OpenAI.Token != "sk-test-token-123" {
		t.Errorf("expected OpenAI token 'sk-test-token-123', got '%s'", cfg.OpenAI.Token)
	}

	if cfg.Gemini.APIKey != "gemini-api-key-456" {
		t.Errorf("expected Gemini API key 'gemini-api-key-456', got '%s'", cfg.Gemini.APIKey)
	}

	if cfg.Ollama.URL != "http://localhost:11434" || cfg.Ollama.Model != "llava:13b" {
		t.Errorf("unexpected Ollama config %+v", cfg.Ollama)
	}

	if cfg.LlamaCpp.URL != "http://gpu-box:8080" || cfg.LlamaCpp.Model != "" {
		t.Errorf("unexpected llama.cpp config %+v", cfg.LlamaCpp)
	}
}

func TestLoad_EmptyEnvVars(t *testing.T) {
	os.Unsetenv("OPENAI_TOKEN")
	os.Unsetenv("GEMINI_API_KEY")
	os.Unsetenv("AI_PROVIDER")

	cfg := Load()

	if cfg.OpenAI.Token != "" {
		t.Errorf("expected empty OpenAI token, got '%s'", cfg.OpenAI.Token)
	}

	if cfg.AI.Provider != "openai" {
		t.Errorf("expected default provider 'openai', got '%s'", cfg.AI.Provider)
	}
}
