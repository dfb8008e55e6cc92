package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfig struct {
	Addr     string   `env:"SAMPLE_ADDR"`
	Max      int      `env:"SAMPLE_MAX"`
	Debug    bool     `env:"SAMPLE_DEBUG"`
	Keywords []string `env:"SAMPLE_KEYWORDS" envSeparator:","`
	Skipped  string
	Empty    string `env:"SAMPLE_EMPTY"`
}

func TestMarshalEnv(t *testing.T) {
	c := &sampleConfig{
		Addr:     ":8080",
		Max:      3,
		Debug:    true,
		Keywords: []string{"cough", "sore throat"},
	}

	out, err := MarshalEnv(c)
	require.NoError(t, err)

	assert.Contains(t, out, "SAMPLE_ADDR=:8080\n")
	assert.Contains(t, out, "SAMPLE_MAX=3\n")
	assert.Contains(t, out, "SAMPLE_DEBUG=true\n")
	assert.Contains(t, out, "SAMPLE_KEYWORDS=cough,sore throat\n")
	// Untagged and zero-valued fields stay out of the snapshot.
	assert.NotContains(t, out, "Skipped")
	assert.NotContains(t, out, "SAMPLE_EMPTY")
}
