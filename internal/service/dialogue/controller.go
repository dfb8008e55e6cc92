// Package dialogue drives the turn-by-turn history-taking interview:
// symptom detection, question selection, section advancement, quota
// enforcement and termination into a structured extraction.
package dialogue

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/intakebot/internal/catalog"
	"github.com/careloop/intakebot/internal/config"
	"github.com/careloop/intakebot/internal/core"
	"github.com/careloop/intakebot/internal/retrieval"
	"github.com/careloop/intakebot/internal/service/session"
	"github.com/careloop/intakebot/pkg/log"
	"github.com/careloop/intakebot/pkg/retry"
)

const (
	msgAskSymptom  = "I'm here to take your history. What symptom is bothering you the most?"
	msgTerminated  = "Thank you. I've collected enough information for now."
	persistTimeout = 30 * time.Second
)

// Extractor produces the structured summary at termination. It never
// fails: implementations fall back to raw concatenation internally and
// report which path produced the result ("model" or "raw").
type Extractor interface {
	Extract(ctx context.Context, answers map[core.Section][]core.QA) (core.ExtractedHistory, string)
}

type Controller struct {
	cfg         *config.DialogueConfig
	sessions    *session.Store
	retriever   *retrieval.Retriever
	validator   *Validator
	static      core.QuestionSource
	extractor   Extractor
	transcripts core.TranscriptRepository
	histories   core.HistoryRepository
	retrier     *retry.Retrier
}

func NewController(
	cfg *config.DialogueConfig,
	sessions *session.Store,
	retriever *retrieval.Retriever,
	validator *Validator,
	static core.QuestionSource,
	extractor Extractor,
	transcripts core.TranscriptRepository,
	histories core.HistoryRepository,
) *Controller {
	return &Controller{
		cfg:         cfg,
		sessions:    sessions,
		retriever:   retriever,
		validator:   validator,
		static:      static,
		extractor:   extractor,
		transcripts: transcripts,
		histories:   histories,
		retrier:     retry.NewDefaultRetrier(),
	}
}

// Turn processes one inbound patient message and returns the reply text.
// A session is processed one turn at a time under its own lock; other
// sessions proceed independently.
func (c *Controller) Turn(ctx context.Context, sessionID, patientID, message string) string {
	sess := c.sessions.GetOrCreate(sessionID, patientID)
	sess.Lock()
	defer sess.Unlock()

	c.appendTranscript(ctx, sessionID, core.Message{Role: core.RoleUser, Content: message})

	var reply string
	switch sess.State {
	case session.StateAwaitingSymptom:
		reply = c.handleAwaitingSymptom(ctx, sess, message)
	case session.StateInSection:
		reply = c.handleInSection(ctx, sess, message)
	default:
		// Terminated sessions are purged immediately, so this pointer is
		// stale. Any further message starts a new interview; route it in
		// as the fresh session's first message instead of dropping it.
		c.sessions.Purge(sess.ID)
		fresh := c.sessions.GetOrCreate(sess.ID, patientID)
		fresh.Lock()
		reply = c.handleAwaitingSymptom(ctx, fresh, message)
		fresh.Unlock()
	}

	c.appendTranscript(ctx, sessionID, core.Message{Role: core.RoleAssistant, Content: reply})
	return reply
}

// handleAwaitingSymptom runs fixed keyword matching on the first usable
// message. Unrecognized input re-prompts rather than defaulting to an
// "unspecified" symptom, keeping unknown symptoms out of the history.
func (c *Controller) handleAwaitingSymptom(ctx context.Context, sess *session.Session, message string) string {
	symptom := catalog.ExtractSymptom(message, c.cfg.SymptomKeywords)
	if symptom == "" {
		return msgAskSymptom
	}

	log.FromCtx(ctx).Info().
		Str("session", sess.ID).
		Str("symptom", symptom).
		Msg("symptom detected, starting interview")

	sess.Symptom = symptom
	sess.State = session.StateInSection
	sess.Current = core.SectionChiefComplaint

	return c.askNext(ctx, sess, message)
}

func (c *Controller) handleInSection(ctx context.Context, sess *session.Session, message string) string {
	lastQuestion := ""
	if sess.Pending != nil {
		lastQuestion = sess.Pending.Text
	}

	accepted, rejectMsg := c.validator.Validate(ctx, sess.Symptom, message, lastQuestion)
	if !accepted {
		// Self-loop: no counts move, the pending question stands.
		if lastQuestion != "" {
			return rejectMsg + " " + lastQuestion
		}
		return rejectMsg
	}

	if sess.Pending != nil {
		sess.RecordAnswer(sess.Pending.Section, sess.Pending.Text, message)
		sess.Pending = nil
	}

	// Good-enough early exit: once every section has its minimum, stop
	// even though more candidates may exist.
	if sess.MinimumsMet(c.cfg.SectionMin) {
		return c.terminate(ctx, sess)
	}

	return c.askNext(ctx, sess, message)
}

// askNext walks sections in fixed order starting at the current one,
// skipping any at max quota, and emits the first unseen candidate. When
// every remaining section is exhausted the interview terminates.
func (c *Controller) askNext(ctx context.Context, sess *session.Session, hint string) string {
	start := 0
	for i, sec := range core.SectionOrder {
		if sec == sess.Current {
			start = i
			break
		}
	}

	for _, sec := range core.SectionOrder[start:] {
		if sess.AnswerCount(sec) >= c.cfg.SectionMax {
			continue
		}
		if cand := c.nextCandidate(ctx, sess, sec, hint); cand != nil {
			sess.Current = sec
			sess.Pending = cand
			sess.MarkAsked(*cand)
			return cand.Text
		}
	}

	return c.terminate(ctx, sess)
}

// nextCandidate prefers the similarity retriever and falls back to the
// static per-section lists when retrieval yields nothing, so an empty or
// unavailable index degrades instead of stalling the interview.
func (c *Controller) nextCandidate(ctx context.Context, sess *session.Session, sec core.Section, hint string) *core.Candidate {
	if cand := c.retriever.NextCandidate(ctx, sess.Symptom, hint, &sec, sess); cand != nil {
		return cand
	}

	if c.static == nil {
		return nil
	}
	for _, q := range c.static.QuestionsFor(sess.Symptom)[sec] {
		id := catalog.DocID(sess.Symptom, sec, q)
		if sess.Asked(id, q) {
			continue
		}
		return &core.Candidate{ID: id, Text: q, Symptom: sess.Symptom, Section: sec}
	}
	return nil
}

// terminate runs structured extraction, hands the record to persistence
// (best-effort, off the turn path) and purges the session.
func (c *Controller) terminate(ctx context.Context, sess *session.Session) string {
	logger := log.FromCtx(ctx)

	summary, source := c.extractor.Extract(ctx, sess.Answers())

	rec := core.HistoryRecord{
		ID:        uuid.NewString(),
		PatientID: sess.PatientID,
		SessionID: sess.ID,
		Summary:   summary,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}

	logger.Info().
		Str("session", sess.ID).
		Str("source", source).
		Msg("interview terminated")

	// The reply is already decided; the write must not delay or fail it.
	go func(parent context.Context, rec core.HistoryRecord) {
		wctx, cancel := context.WithTimeout(log.FromCtx(parent).WithContext(context.Background()), persistTimeout)
		defer cancel()
		err := c.retrier.Do(wctx, func() error {
			return c.histories.SaveHistory(wctx, rec)
		})
		if err != nil {
			log.FromCtx(wctx).Error().Err(err).Str("session", rec.SessionID).Msg("failed to persist history record")
		}
	}(ctx, rec)

	sess.State = session.StateTerminated
	c.sessions.Purge(sess.ID)

	return msgTerminated
}

func (c *Controller) appendTranscript(ctx context.Context, sessionID string, msg core.Message) {
	if c.transcripts == nil {
		return
	}
	if err := c.transcripts.AddMessage(ctx, sessionID, msg); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("session", sessionID).Msg("failed to append transcript")
	}
}
