package core

import "time"

const (
	AppName    = "IntakeBot"
	AppVersion = "0.1.0"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one transcript entry within a session.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Candidate is a retrievable question document tagged with its owning
// symptom and section. ID is stable across re-seeding (content hash).
type Candidate struct {
	ID      string  `json:"id"`
	Text    string  `json:"text"`
	Symptom string  `json:"symptom"`
	Section Section `json:"section"`
	// Score is the retrieval distance for ranked results; lower is closer.
	Score float64 `json:"score,omitempty"`
}

// QA is one collected question/answer pair within a section.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ExtractedHistory is the fixed-schema clinical summary produced once per
// session at termination. Field keys mirror the curated question data.
type ExtractedHistory struct {
	ChiefComplaint string `json:"chiefComplaint"`
	HPI            string `json:"HPI"`
	PMH            string `json:"PMH"`
	Medications    string `json:"Medications"`
	SocialHistory  string `json:"SH"`
	FamilyHistory  string `json:"FH"`
}

// Get returns the summary string for a section.
func (h ExtractedHistory) Get(s Section) string {
	switch s {
	case SectionChiefComplaint:
		return h.ChiefComplaint
	case SectionHPI:
		return h.HPI
	case SectionPMH:
		return h.PMH
	case SectionMedications:
		return h.Medications
	case SectionSocialHistory:
		return h.SocialHistory
	case SectionFamilyHistory:
		return h.FamilyHistory
	}
	return ""
}

// Set assigns the summary string for a section.
func (h *ExtractedHistory) Set(s Section, v string) {
	switch s {
	case SectionChiefComplaint:
		h.ChiefComplaint = v
	case SectionHPI:
		h.HPI = v
	case SectionPMH:
		h.PMH = v
	case SectionMedications:
		h.Medications = v
	case SectionSocialHistory:
		h.SocialHistory = v
	case SectionFamilyHistory:
		h.FamilyHistory = v
	}
}

// HistoryRecord is the flat record handed to the persistence collaborator
// on the terminal turn. Summary is either the model-derived extraction or
// the raw per-section concatenation fallback.
type HistoryRecord struct {
	ID        string           `json:"id"`
	PatientID string           `json:"patient_id"`
	SessionID string           `json:"session_id"`
	Summary   ExtractedHistory `json:"summary"`
	// Source records which extraction path produced Summary: "model" or "raw".
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}
