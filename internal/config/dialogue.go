package config

import (
	"context"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/careloop/intakebot/pkg/log"
)

// defaultSymptomKeywords is the curated surface-form list used for initial
// symptom detection; matched case-insensitively as substrings, first hit wins.
var defaultSymptomKeywords = []string{
	"cough", "fever", "sore throat", "headache", "fatigue", "shortness of breath",
}

type DialogueConfig struct {
	// Per-section answer quotas. Max bounds how many questions a section may
	// consume; Min is the coverage needed before early termination.
	SectionMin int `env:"INTAKE_SECTION_MIN" envDefault:"1"`
	SectionMax int `env:"INTAKE_SECTION_MAX" envDefault:"3"`

	// Top-k for each similarity retrieval.
	RetrievalK int `env:"INTAKE_RETRIEVAL_K" envDefault:"6"`

	// Cosine-distance ceiling for the soft relevance check; lower is closer.
	RelevanceThreshold float64 `env:"INTAKE_RELEVANCE_THRESHOLD" envDefault:"0.35"`

	SymptomKeywords []string `env:"INTAKE_SYMPTOM_KEYWORDS" envSeparator:","`
}

func NewDialogueConfig(ctx context.Context) *DialogueConfig {
	c := &DialogueConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Dialogue config")
	}
	if len(c.SymptomKeywords) == 0 {
		c.SymptomKeywords = defaultSymptomKeywords
	}
	for i, kw := range c.SymptomKeywords {
		c.SymptomKeywords[i] = strings.ToLower(strings.TrimSpace(kw))
	}
	if c.SectionMin > c.SectionMax {
		c.SectionMin = c.SectionMax
	}
	return c
}
