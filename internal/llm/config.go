package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	MinTimeout = 1 * time.Second
	MaxTimeout = 5 * time.Minute
)

// Config holds all generation backend configuration.
type Config struct {
	// Provider selects the primary backend.
	// Values: "gemini", "openai", "openrouter", "anthropic", "huggingface",
	// "textgen", "mock".
	Provider string

	// Candidates lists extra model ids tried in order on the same backend
	// when the primary model is rate limited or unavailable.
	Candidates []string

	Anthropic   AnthropicConfig
	OpenAI      OpenAIConfig
	Gemini      GeminiConfig
	OpenRouter  OpenRouterConfig
	HuggingFace HuggingFaceConfig
	TextGen     TextGenConfig
	Retry       RetryConfig

	// Timeout bounds a single generation call. Default: 60s.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-haiku"
	BaseURL string // Optional. Override for proxies and tests.
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string
	Model   string // Default: "gemini-flash"
	BaseURL string // Optional. Override for proxies and tests.
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-exp"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// HuggingFaceConfig configures the hosted inference API backend.
type HuggingFaceConfig struct {
	APIKey  string
	Model   string // Default: "ibm-granite/granite-3.3-8b-instruct"
	BaseURL string // Default: "https://api-inference.huggingface.co"
}

// TextGenConfig configures a self-hosted /generate server.
type TextGenConfig struct {
	BaseURL string // Default: "http://localhost:8000"
	APIKey  string // Sent as x-api-key when set.
	Model   string // Informational; the server decides which model runs.
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		HuggingFace: HuggingFaceConfig{
			Model:   "ibm-granite/granite-3.3-8b-instruct",
			BaseURL: defaultHuggingFaceBaseURL,
		},
		TextGen: TextGenConfig{
			BaseURL: "http://localhost:8000",
			Model:   "granite",
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// DiscoverConfig probes standard API key env vars in priority order
// (Gemini, OpenAI, Anthropic, OpenRouter, Hugging Face) and returns a
// Config for the first provider whose key is found.
// Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("HF_API_KEY"); k != "" {
		cfg.Provider = "huggingface"
		cfg.HuggingFace.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// Validate checks that the selected provider has what it needs.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("NIBBLE_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("NIBBLE_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("NIBBLE_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("NIBBLE_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "huggingface":
		if c.HuggingFace.APIKey == "" {
			return fmt.Errorf("NIBBLE_HF_API_KEY is required for the huggingface provider")
		}
	case "textgen":
		if c.TextGen.BaseURL == "" {
			return fmt.Errorf("NIBBLE_TEXTGEN_URL is required for the textgen provider")
		}
	case "mock":
		// No credentials needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}

	if c.Timeout < MinTimeout || c.Timeout > MaxTimeout {
		return fmt.Errorf("LLM timeout %s out of range [%s, %s]", c.Timeout, MinTimeout, MaxTimeout)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}

// PrimaryModel returns the configured model for the selected provider.
func (c Config) PrimaryModel() string {
	switch c.Provider {
	case "anthropic":
		return c.Anthropic.Model
	case "openai":
		return c.OpenAI.Model
	case "gemini":
		return c.Gemini.Model
	case "openrouter":
		return c.OpenRouter.Model
	case "huggingface":
		return c.HuggingFace.Model
	case "textgen":
		return c.TextGen.Model
	}
	return c.Provider
}

// WithModel returns a copy of c with the selected provider's model replaced.
func (c Config) WithModel(model string) Config {
	switch c.Provider {
	case "anthropic":
		c.Anthropic.Model = model
	case "openai":
		c.OpenAI.Model = model
	case "gemini":
		c.Gemini.Model = model
	case "openrouter":
		c.OpenRouter.Model = model
	case "huggingface":
		c.HuggingFace.Model = model
	case "textgen":
		c.TextGen.Model = model
	}
	return c
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
