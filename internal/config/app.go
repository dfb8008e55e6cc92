package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/careloop/intakebot/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"INTAKE_RUNTIME_PATH" envDefault:".intakebot"`

	// Transport flags
	EnableHTTP     bool   `env:"ENABLE_HTTP" envDefault:"true"`
	EnableTelegram bool   `env:"ENABLE_TELEGRAM" envDefault:"false"`
	HTTPAddr       string `env:"HTTP_ADDR" envDefault:":8080"`

	// Transcript context handed to extraction
	TranscriptWindowSize int `env:"TRANSCRIPT_WINDOW_SIZE" envDefault:"60"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(GetRuntimePath(), "intakebot.db")
}

func (c AppConfig) GetQuestionDataPath() string {
	return filepath.Join(GetRuntimePath(), "symptom_questions.json")
}

func (c AppConfig) IsTelegramSelected() bool {
	return c.EnableTelegram
}
