package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/careloop/intakebot/pkg/log"
)

type EmbeddingConfig struct {
	BaseURL string `env:"EMBEDDING_BASE_URL" envDefault:"https://api.openai.com"`
	APIKey  string `env:"EMBEDDING_API_KEY"`
	Model   string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
}

func NewEmbeddingConfig(ctx context.Context) *EmbeddingConfig {
	c := &EmbeddingConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Embedding config")
	}
	return c
}
