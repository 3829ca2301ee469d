package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prices.yaml
var pricesYAML []byte

type Config struct {
	Library  LibraryConfig
	Database DatabaseConfig
	AI       AIConfig
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
	Ollama   OllamaConfig
	LlamaCpp LlamaCppConfig
	Log      LogConfig
	Prices   PricesConfig
}

type LibraryConfig struct {
	Root            string  // root directory holding one subdirectory per project
	SelectThreshold float64 // minimum score for ungrouped photos in select-best
}

type DatabaseConfig struct {
	Driver       string // "sqlite" (default) or "postgres"
	URL          string // SQLite file path or PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25, forced to 1 for SQLite)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type AIConfig struct {
	Provider string // defaults to openai
}

type OpenAIConfig struct {
	Token string
}

type GeminiConfig struct {
	APIKey string
}

type OllamaConfig struct {
	URL   string // defaults to http://localhost:11434
	Model string // defaults to llama3.2-vision:11b
}

type LlamaCppConfig struct {
	URL   string // defaults to http://localhost:8080
	Model string // defaults to llava
}

type LogConfig struct {
	Mode string // "dev" or "prod"
}

type PricesConfig struct {
	Models map[string]ModelPricing `yaml:"models"`
}

type ModelPricing struct {
	Standard RequestPricing `yaml:"standard"`
}

type RequestPricing struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable as a non-negative float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		return s
	}
	return defaultVal
}

// defaultLibraryRoot places the library under the user's home directory,
// falling back to the working directory when home is unknown.
func defaultLibraryRoot() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "photo-culler"
	}
	return filepath.Join(home, ".photo-culler")
}

func Load() *Config {
	var prices PricesConfig
	if err := yaml.Unmarshal(pricesYAML, &prices); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded prices.yaml: " + err.Error())
	}

	root := envString("PHOTO_CULLER_LIBRARY", defaultLibraryRoot())
	driver := strings.ToLower(envString("DATABASE_DRIVER", "sqlite"))

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" && driver == "sqlite" {
		dbURL = filepath.Join(root, "culler.db")
	}

	return &Config{
		Library: LibraryConfig{
			Root:            root,
			SelectThreshold: envFloat("SELECT_THRESHOLD", 7.0),
		},
		Database: DatabaseConfig{
			Driver:       driver,
			URL:          dbURL,
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		AI: AIConfig{
			Provider: strings.ToLower(envString("AI_PROVIDER", "openai")),
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPENAI_TOKEN"),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Ollama: OllamaConfig{
			URL:   os.Getenv("OLLAMA_URL"),
			Model: os.Getenv("OLLAMA_MODEL"),
		},
		LlamaCpp: LlamaCppConfig{
			URL:   os.Getenv("LLAMACPP_URL"),
			Model: os.Getenv("LLAMACPP_MODEL"),
		},
		Log: LogConfig{
			Mode: envString("LOG_MODE", "dev"),
		},
		Prices: prices,
	}
}

// GetModelPricing returns pricing for a specific model, zero if unknown
func (c *Config) GetModelPricing(modelName string) ModelPricing {
	if pricing, ok := c.Prices.Models[modelName]; ok {
		return pricing
	}
	return ModelPricing{}
}
