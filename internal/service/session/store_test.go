package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/careloop/intakebot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateReturnsSameSession(t *testing.T) {
	store := NewStore()

	a := store.GetOrCreate("s1", "p1")
	b := store.GetOrCreate("s1", "p1")
	assert.Same(t, a, b)
	assert.Equal(t, 1, store.Len())

	assert.Equal(t, StateAwaitingSymptom, a.State)
	assert.Equal(t, core.SectionChiefComplaint, a.Current)
}

func TestPurgeStartsFresh(t *testing.T) {
	store := NewStore()

	a := store.GetOrCreate("s1", "p1")
	a.Symptom = "cough"
	a.State = StateTerminated

	store.Purge("s1")
	b := store.GetOrCreate("s1", "p1")
	assert.NotSame(t, a, b)
	assert.Equal(t, StateAwaitingSymptom, b.State)
	assert.Empty(t, b.Symptom)
}

func TestLedgerMatchesByIDAndText(t *testing.T) {
	store := NewStore()
	sess := store.GetOrCreate("s1", "p1")

	c := core.Candidate{ID: "cough::HPI::abc", Text: "How long have you had the cough?"}
	sess.MarkAsked(c)

	assert.True(t, sess.Asked(c.ID, ""))
	assert.True(t, sess.Asked("", "how long HAVE you had   the cough?"), "text match is normalized")
	assert.True(t, sess.Asked("other-id", c.Text))
	assert.False(t, sess.Asked("other-id", "Is the cough dry?"))
}

func TestRecordAnswerAndMinimums(t *testing.T) {
	store := NewStore()
	sess := store.GetOrCreate("s1", "p1")

	assert.False(t, sess.MinimumsMet(1))

	for _, sec := range core.SectionOrder {
		sess.RecordAnswer(sec, "q", "a")
	}
	assert.True(t, sess.MinimumsMet(1))
	assert.False(t, sess.MinimumsMet(2))

	sess.RecordAnswer(core.SectionHPI, "q2", "a2")
	assert.Equal(t, 2, sess.AnswerCount(core.SectionHPI))
}

func TestAnswersReturnsCopy(t *testing.T) {
	store := NewStore()
	sess := store.GetOrCreate("s1", "p1")
	sess.RecordAnswer(core.SectionHPI, "q", "a")

	got := sess.Answers()
	got[core.SectionHPI][0].Answer = "mutated"
	require.Equal(t, "a", sess.Answers()[core.SectionHPI][0].Answer)
}

func TestStoreIsolationAcrossSessions(t *testing.T) {
	store := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			sess := store.GetOrCreate(id, "p")
			sess.Lock()
			sess.RecordAnswer(core.SectionChiefComplaint, "q", "a")
			sess.Unlock()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, store.Len())
	for i := 0; i < 20; i++ {
		sess := store.GetOrCreate(fmt.Sprintf("s%d", i), "p")
		assert.Equal(t, 1, sess.AnswerCount(core.SectionChiefComplaint))
	}
}
