// Package session owns per-session interview state: the detected symptom,
// the current section, the asked-question ledger and the collected answers.
// State is explicit; there is no "absent from the map means first turn".
package session

import (
	"sync"

	"github.com/careloop/intakebot/internal/core"
)

type State int

const (
	// StateAwaitingSymptom is the initial state: no symptom detected yet.
	StateAwaitingSymptom State = iota
	// StateInSection means the interview is collecting answers for
	// the session's current section.
	StateInSection
	// StateTerminated is terminal; the session is purged right after.
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateAwaitingSymptom:
		return "awaiting_symptom"
	case StateInSection:
		return "in_section"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

// Session is the mutable aggregate for one interview. All turn handling
// for a session id happens under its mutex, so concurrent requests for
// the same session cannot lose ledger or answer updates.
type Session struct {
	sync.Mutex

	ID        string
	PatientID string
	State     State
	Symptom   string
	Current   core.Section

	// Pending is the question awaiting the patient's next reply.
	Pending *core.Candidate

	asked   map[string]struct{}
	answers map[core.Section][]core.QA
}

func newSession(id, patientID string) *Session {
	return &Session{
		ID:        id,
		PatientID: patientID,
		State:     StateAwaitingSymptom,
		Current:   core.SectionChiefComplaint,
		asked:     make(map[string]struct{}),
		answers:   make(map[core.Section][]core.QA),
	}
}

// MarkAsked records a candidate in the ledger under both its stable id and
// its normalized text, so neither can be emitted twice.
func (s *Session) MarkAsked(c core.Candidate) {
	if c.ID != "" {
		s.asked[c.ID] = struct{}{}
	}
	if t := core.NormalizeText(c.Text); t != "" {
		s.asked["text:"+t] = struct{}{}
	}
}

// Asked reports whether a question was already asked, by id or exact text.
func (s *Session) Asked(id, text string) bool {
	if id != "" {
		if _, ok := s.asked[id]; ok {
			return true
		}
	}
	if t := core.NormalizeText(text); t != "" {
		if _, ok := s.asked["text:"+t]; ok {
			return true
		}
	}
	return false
}

// RecordAnswer appends one Q&A pair to a section.
func (s *Session) RecordAnswer(sec core.Section, question, answer string) {
	s.answers[sec] = append(s.answers[sec], core.QA{Question: question, Answer: answer})
}

// AnswerCount returns how many answers a section has collected.
func (s *Session) AnswerCount(sec core.Section) int {
	return len(s.answers[sec])
}

// Answers returns a copy of the collected Q&A pairs keyed by section.
func (s *Session) Answers() map[core.Section][]core.QA {
	out := make(map[core.Section][]core.QA, len(s.answers))
	for sec, qas := range s.answers {
		cp := make([]core.QA, len(qas))
		copy(cp, qas)
		out[sec] = cp
	}
	return out
}

// MinimumsMet reports whether every section has at least min answers.
func (s *Session) MinimumsMet(min int) bool {
	for _, sec := range core.SectionOrder {
		if s.AnswerCount(sec) < min {
			return false
		}
	}
	return true
}
