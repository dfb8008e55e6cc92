package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/careloop/intakebot/pkg/log"
)

// RedisConfig selects the RediSearch-backed similarity index. With Addr
// empty the engine runs on the in-memory index instead.
type RedisConfig struct {
	Addr      string `env:"REDIS_ADDR"`
	Password  string `env:"REDIS_PASSWORD"`
	DB        int    `env:"REDIS_DB" envDefault:"0"`
	IndexName string `env:"REDIS_INDEX_NAME" envDefault:"symptom_questions"`
	// VectorDim must match the embedding model's output dimension.
	VectorDim int `env:"REDIS_VECTOR_DIM" envDefault:"1536"`
}

func NewRedisConfig(ctx context.Context) *RedisConfig {
	c := &RedisConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Redis config")
	}
	return c
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}
