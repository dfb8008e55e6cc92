package config

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// clearEnv removes keys for the test while letting t.Setenv restore the
// caller's values afterwards.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k) //nolint:errcheck
	}
}

func TestDialogueConfigDefaults(t *testing.T) {
	clearEnv(t,
		"INTAKE_SECTION_MIN", "INTAKE_SECTION_MAX",
		"INTAKE_RETRIEVAL_K", "INTAKE_RELEVANCE_THRESHOLD",
		"INTAKE_SYMPTOM_KEYWORDS",
	)

	c := NewDialogueConfig(context.Background())

	assert.Equal(t, 1, c.SectionMin)
	assert.Equal(t, 3, c.SectionMax)
	assert.Equal(t, 6, c.RetrievalK)
	assert.Equal(t, 0.35, c.RelevanceThreshold)
	assert.Equal(t, []string{
		"cough", "fever", "sore throat", "headache", "fatigue", "shortness of breath",
	}, c.SymptomKeywords)
}

func TestDialogueConfigClampsMinToMax(t *testing.T) {
	t.Setenv("INTAKE_SECTION_MIN", "5")
	t.Setenv("INTAKE_SECTION_MAX", "2")

	c := NewDialogueConfig(context.Background())

	assert.Equal(t, 2, c.SectionMax)
	assert.Equal(t, 2, c.SectionMin)
}

func TestDialogueConfigNormalizesKeywords(t *testing.T) {
	t.Setenv("INTAKE_SYMPTOM_KEYWORDS", " Cough ,FEVER, Sore Throat ")

	c := NewDialogueConfig(context.Background())

	assert.Equal(t, []string{"cough", "fever", "sore throat"}, c.SymptomKeywords)
}

func TestAppConfigDefaults(t *testing.T) {
	clearEnv(t,
		"INTAKE_RUNTIME_PATH", "ENABLE_HTTP", "ENABLE_TELEGRAM",
		"HTTP_ADDR", "TRANSCRIPT_WINDOW_SIZE",
	)

	c := NewAppConfig(context.Background())

	assert.Equal(t, ".intakebot", c.RuntimePath)
	assert.True(t, c.EnableHTTP)
	assert.False(t, c.EnableTelegram)
	assert.False(t, c.IsTelegramSelected())
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, 60, c.TranscriptWindowSize)
}

func TestRedisConfigDefaults(t *testing.T) {
	clearEnv(t,
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"REDIS_INDEX_NAME", "REDIS_VECTOR_DIM",
	)

	c := NewRedisConfig(context.Background())

	assert.Empty(t, c.Addr)
	assert.False(t, c.Enabled())
	assert.Equal(t, 0, c.DB)
	assert.Equal(t, "symptom_questions", c.IndexName)
	assert.Equal(t, 1536, c.VectorDim)
}

func TestRedisConfigEnabledWithAddr(t *testing.T) {
	t.Setenv("REDIS_ADDR", "localhost:6379")

	c := NewRedisConfig(context.Background())

	assert.True(t, c.Enabled())
}
