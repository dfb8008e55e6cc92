package catalog

import (
	"context"
	"testing"

	"github.com/careloop/intakebot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []Entry {
	return []Entry{
		{
			Symptom: "Cough",
			Questions: map[string][]string{
				"chiefComplaint": {"What brings you in today?"},
				"HPI":            {"How long have you had the cough?", "Is the cough dry?"},
				"bogusSection":   {"should be dropped"},
			},
		},
		{
			Symptom: "fever",
			Questions: map[string][]string{
				"HPI": {"How high was your temperature?"},
			},
		},
	}
}

func TestNewIndexNormalizesSymptoms(t *testing.T) {
	idx := NewIndex(sampleEntries())

	// Lookup is lowercase regardless of source casing.
	qs := idx.QuestionsFor("COUGH")
	assert.Equal(t, []string{"What brings you in today?"}, qs[core.SectionChiefComplaint])
	assert.Len(t, qs[core.SectionHPI], 2)
}

func TestQuestionsForAlwaysCoversAllSections(t *testing.T) {
	idx := NewIndex(sampleEntries())

	for _, symptom := range []string{"fever", "cough", "entirely unknown"} {
		qs := idx.QuestionsFor(symptom)
		require.Len(t, qs, len(core.SectionOrder), "symptom %q", symptom)
		for _, sec := range core.SectionOrder {
			_, ok := qs[sec]
			assert.True(t, ok, "symptom %q missing section %s", symptom, sec)
		}
	}

	// Unknown symptom: every list empty, no error.
	qs := idx.QuestionsFor("entirely unknown")
	for _, sec := range core.SectionOrder {
		assert.Empty(t, qs[sec])
	}
}

func TestBuildDocsStableIDs(t *testing.T) {
	docs1 := BuildDocs(sampleEntries())
	docs2 := BuildDocs(sampleEntries())

	require.NotEmpty(t, docs1)

	ids1 := make(map[string]core.Candidate, len(docs1))
	for _, d := range docs1 {
		ids1[d.ID] = d
	}
	// Re-building yields the same id set: seeding is idempotent.
	for _, d := range docs2 {
		prev, ok := ids1[d.ID]
		require.True(t, ok, "id %s missing on rebuild", d.ID)
		assert.Equal(t, prev.Text, d.Text)
	}

	// Ids carry symptom and section tags.
	for _, d := range docs1 {
		assert.Contains(t, d.ID, d.Symptom+"::"+d.Section.Key()+"::")
	}
}

func TestBuildDocsDropsUnknownSections(t *testing.T) {
	docs := BuildDocs(sampleEntries())
	for _, d := range docs {
		assert.NotEqual(t, "should be dropped", d.Text)
	}
}

func TestLoadFallsBackToEmbeddedBank(t *testing.T) {
	entries, err := Load(context.Background(), "/nonexistent/path/questions.json")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	idx := NewIndex(entries)
	assert.NotEmpty(t, idx.QuestionsFor("cough")[core.SectionHPI])
}

func TestExtractSymptom(t *testing.T) {
	keywords := []string{"cough", "fever", "sore throat", "headache", "fatigue", "shortness of breath"}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"direct keyword", "I have a cough", "cough"},
		{"case insensitive", "TERRIBLE HEADACHE since morning", "headache"},
		{"first hit wins on list order", "I have a sore throat and cough", "cough"},
		{"multi-word keyword", "some shortness of breath when climbing stairs", "shortness of breath"},
		{"no match", "my knee hurts", ""},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSymptom(tt.input, keywords))
		})
	}
}
