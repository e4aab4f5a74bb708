package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/nibble/internal/logger"
	"github.com/abhisek/nibble/internal/store"
)

// NewProvider creates a Provider from configuration.
//
// The returned chain is: caller → retry → candidates → logging → timeout → backend,
// with one logging/timeout/backend stack per candidate model.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Provider == "mock" {
		return NewMockProvider(), nil
	}

	wrap := func(p Provider) Provider {
		return WithLogging(WithTimeout(p, cfg.Timeout), cfg.Provider, eventRepo, log)
	}

	primary, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	var fallbacks []Provider
	for _, model := range cfg.Candidates {
		if model == cfg.PrimaryModel() {
			continue
		}
		p, err := newBackend(ctx, cfg.WithModel(model))
		if err != nil {
			return nil, fmt.Errorf("initializing %s candidate %q: %w", cfg.Provider, model, err)
		}
		fallbacks = append(fallbacks, wrap(p))
	}

	chain := WithCandidates(wrap(primary), fallbacks...)
	return WithRetry(chain, cfg.Retry), nil
}

func newBackend(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		return NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		return NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		return NewOpenRouterProvider(cfg.OpenRouter)
	case "huggingface":
		return NewHuggingFaceProvider(cfg.HuggingFace)
	case "textgen":
		return NewTextGenProvider(cfg.TextGen)
	}
	return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
}
