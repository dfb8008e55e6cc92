package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/intakebot/internal/core"
	"github.com/careloop/intakebot/internal/storage/memindex"
)

type askedMap map[string]struct{}

func (a askedMap) Asked(id, text string) bool {
	if _, ok := a[id]; ok {
		return true
	}
	_, ok := a["text:"+text]
	return ok
}

type failingIndex struct{}

func (failingIndex) Upsert(context.Context, []core.Candidate) error { return nil }

func (failingIndex) Search(context.Context, string, int, core.IndexFilter) ([]core.Candidate, error) {
	return nil, errors.New("index down")
}

func seededIndex(t *testing.T) *memindex.Index {
	t.Helper()
	idx := memindex.New()
	require.NoError(t, idx.Upsert(context.Background(), []core.Candidate{
		{ID: "q1", Text: "How long have you had the cough?", Symptom: "cough", Section: core.SectionHPI},
		{ID: "q2", Text: "Is the cough dry or productive?", Symptom: "cough", Section: core.SectionHPI},
	}))
	return idx
}

func TestNextCandidateSkipsAsked(t *testing.T) {
	r := New(seededIndex(t), 6)
	sec := core.SectionHPI

	first := r.NextCandidate(context.Background(), "cough", "how long", &sec, askedMap{})
	require.NotNil(t, first)

	second := r.NextCandidate(context.Background(), "cough", "how long", &sec, askedMap{first.ID: {}})
	require.NotNil(t, second)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestNextCandidateNilWhenExhausted(t *testing.T) {
	r := New(seededIndex(t), 6)
	sec := core.SectionHPI

	asked := askedMap{"q1": {}, "q2": {}}
	assert.Nil(t, r.NextCandidate(context.Background(), "cough", "anything", &sec, asked))
}

func TestNextCandidateNilOnIndexError(t *testing.T) {
	r := New(failingIndex{}, 6)
	sec := core.SectionHPI

	assert.Nil(t, r.NextCandidate(context.Background(), "cough", "anything", &sec, askedMap{}))
}
