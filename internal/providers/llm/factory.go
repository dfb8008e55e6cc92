package llm

import (
	"context"
	"fmt"

	"github.com/careloop/intakebot/internal/config"
	"github.com/careloop/intakebot/internal/core"
	"github.com/careloop/intakebot/pkg/log"
)

// NewProvider creates the ChatProvider used by structured extraction.
func NewProvider(ctx context.Context, cfg *config.LLMConfig) (core.ChatProvider, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Msg("starting llm provider")

	switch cfg.Provider {
	case "openai":
		return NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    "https://api.openai.com",
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.OpenAIModel,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}), nil
	case "openrouter":
		return NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    "https://openrouter.ai/api",
			APIKey:     cfg.OpenRouterAPIKey,
			Model:      cfg.OpenRouterModel,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}), nil
	case "ollama":
		return NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL: cfg.OllamaBaseURL,
			Model:   cfg.OllamaModel,
		}), nil
	case "custom":
		return NewOpenAICompatible(OpenAICompatibleConfig{
			BaseURL:    cfg.CustomBaseURL,
			APIKey:     cfg.CustomAPIKey,
			Model:      cfg.CustomModel,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
