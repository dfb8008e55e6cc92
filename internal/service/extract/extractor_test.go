package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/careloop/intakebot/internal/core"
)

type stubProvider struct {
	reply string
	err   error
	last  []core.Message
}

func (s *stubProvider) Chat(_ context.Context, msgs []core.Message) (core.Message, error) {
	s.last = msgs
	if s.err != nil {
		return core.Message{}, s.err
	}
	return core.Message{Role: core.RoleAssistant, Content: s.reply}, nil
}

func sampleAnswers() map[core.Section][]core.QA {
	return map[core.Section][]core.QA{
		core.SectionChiefComplaint: {{Question: "What brings you in?", Answer: "a bad cough"}},
		core.SectionHPI: {
			{Question: "How long?", Answer: "2 days"},
			{Question: "Dry or productive?", Answer: "dry"},
		},
	}
}

func TestExtractUsesModelResponse(t *testing.T) {
	p := &stubProvider{reply: `{"chiefComplaint":"cough for 2 days","HPI":"dry cough","PMH":"","Medications":"","SH":"","FH":""}`}

	h, source := New(p).Extract(context.Background(), sampleAnswers())

	assert.Equal(t, SourceModel, source)
	assert.Equal(t, "cough for 2 days", h.ChiefComplaint)
	assert.Equal(t, "dry cough", h.HPI)
	assert.Empty(t, h.Medications)
}

func TestExtractStripsCodeFence(t *testing.T) {
	p := &stubProvider{reply: "```json\n{\"chiefComplaint\":\"cough\"}\n```"}

	h, source := New(p).Extract(context.Background(), sampleAnswers())

	assert.Equal(t, SourceModel, source)
	assert.Equal(t, "cough", h.ChiefComplaint)
}

func TestExtractFallsBackOnProviderError(t *testing.T) {
	p := &stubProvider{err: errors.New("upstream 500")}

	h, source := New(p).Extract(context.Background(), sampleAnswers())

	assert.Equal(t, SourceRaw, source)
	assert.Equal(t, "What brings you in?: a bad cough", h.ChiefComplaint)
	assert.Equal(t, "How long?: 2 days | Dry or productive?: dry", h.HPI)
	assert.Equal(t, emptyAnswer, h.PMH)
	assert.Equal(t, emptyAnswer, h.FamilyHistory)
}

func TestExtractFallsBackOnMalformedJSON(t *testing.T) {
	p := &stubProvider{reply: "Sure! Here is the summary you asked for."}

	_, source := New(p).Extract(context.Background(), sampleAnswers())

	assert.Equal(t, SourceRaw, source)
}

func TestExtractWithoutProvider(t *testing.T) {
	h, source := New(nil).Extract(context.Background(), sampleAnswers())

	assert.Equal(t, SourceRaw, source)
	assert.Equal(t, "What brings you in?: a bad cough", h.ChiefComplaint)
}

func TestRawSummaryDeterministic(t *testing.T) {
	a := rawSummary(sampleAnswers())
	b := rawSummary(sampleAnswers())
	assert.Equal(t, a, b)
}

func TestRenderTranscriptOrderedBySection(t *testing.T) {
	p := &stubProvider{reply: `{}`}
	e := New(p)

	e.Extract(context.Background(), sampleAnswers())

	transcript := p.last[1].Content
	assert.Contains(t, transcript, "[chiefComplaint] Q: What brings you in? A: a bad cough")
	assert.Contains(t, transcript, "[HPI] Q: How long? A: 2 days")
	assert.Less(t,
		strings.Index(transcript, "chiefComplaint"),
		strings.Index(transcript, "HPI"),
	)
}
