package core

import "context"

// TranscriptRepository persists the running transcript of a session.
// Writes are best-effort relative to the turn: a failed append is logged,
// never surfaced to the patient.
type TranscriptRepository interface {
	AddMessage(ctx context.Context, sessionID string, msg Message) error
	GetMessages(ctx context.Context, sessionID string, limit int) ([]Message, error)
}

// HistoryRepository receives the terminal extraction record. Append-only
// from the engine's perspective.
type HistoryRepository interface {
	SaveHistory(ctx context.Context, rec HistoryRecord) error
}

// HistoryReader serves completed extraction records to transports.
type HistoryReader interface {
	GetHistoriesByPatient(ctx context.Context, patientID string, limit int) ([]HistoryRecord, error)
}

// IndexFilter narrows a similarity search to one symptom and, optionally,
// one section. Symptom is mandatory.
type IndexFilter struct {
	Symptom string
	Section *Section
}

// VectorIndex is the similarity-search collaborator. Upsert is idempotent
// under stable candidate ids; Search returns candidates ranked by distance
// ascending (lower is closer).
type VectorIndex interface {
	Upsert(ctx context.Context, docs []Candidate) error
	Search(ctx context.Context, query string, k int, filter IndexFilter) ([]Candidate, error)
}

// QuestionSource resolves a symptom to its curated per-section question
// lists. Unknown symptoms yield a mapping with every section present and
// empty, never an error.
type QuestionSource interface {
	QuestionsFor(symptom string) map[Section][]string
}
