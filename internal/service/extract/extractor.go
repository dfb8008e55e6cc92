// Package extract turns a finished interview's question/answer pairs into
// the fixed six-section clinical summary, preferring the language model
// and falling back to a deterministic raw rendering.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/careloop/intakebot/internal/core"
	"github.com/careloop/intakebot/pkg/log"
)

const (
	// SourceModel and SourceRaw tag which path produced a summary.
	SourceModel = "model"
	SourceRaw   = "raw"

	encodingName   = "cl100k_base"
	promptTokenCap = 3000
	emptyAnswer    = "(no response)"
)

const systemPrompt = `You are a clinical scribe. Summarize the interview transcript into a JSON object with exactly these keys: "chiefComplaint", "HPI", "PMH", "Medications", "SH", "FH". Each value is a concise plain-text summary of that section, or an empty string if nothing was discussed. Respond with the JSON object only, no markdown and no commentary.`

type Extractor struct {
	provider core.ChatProvider
	encoder  *tiktoken.Tiktoken
}

func New(provider core.ChatProvider) *Extractor {
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		// Counting falls back to a rune estimate; extraction still works.
		enc = nil
	}
	return &Extractor{provider: provider, encoder: enc}
}

// Extract produces the structured summary. It never fails: any model or
// parse error degrades to the raw concatenation of recorded answers.
func (e *Extractor) Extract(ctx context.Context, answers map[core.Section][]core.QA) (core.ExtractedHistory, string) {
	if e.provider != nil {
		h, err := e.extractWithModel(ctx, answers)
		if err == nil {
			return h, SourceModel
		}
		log.FromCtx(ctx).Warn().Err(err).Msg("model extraction failed, using raw summary")
	}
	return rawSummary(answers), SourceRaw
}

func (e *Extractor) extractWithModel(ctx context.Context, answers map[core.Section][]core.QA) (core.ExtractedHistory, error) {
	reply, err := e.provider.Chat(ctx, []core.Message{
		{Role: core.RoleSystem, Content: systemPrompt},
		{Role: core.RoleUser, Content: e.renderTranscript(answers)},
	})
	if err != nil {
		return core.ExtractedHistory{}, fmt.Errorf("extraction chat: %w", err)
	}

	var h core.ExtractedHistory
	if err := json.Unmarshal([]byte(stripCodeFence(reply.Content)), &h); err != nil {
		return core.ExtractedHistory{}, fmt.Errorf("parse extraction response: %w", err)
	}
	return h, nil
}

// renderTranscript lays the interview out section by section, dropping
// trailing material once the token cap is reached so a long interview
// never overruns the model's context.
func (e *Extractor) renderTranscript(answers map[core.Section][]core.QA) string {
	var b strings.Builder
	used := 0
	for _, sec := range core.SectionOrder {
		qas := answers[sec]
		if len(qas) == 0 {
			continue
		}
		for _, qa := range qas {
			line := fmt.Sprintf("[%s] Q: %s A: %s\n", sec.Key(), qa.Question, qa.Answer)
			n := e.countTokens(line)
			if used+n > promptTokenCap {
				return b.String()
			}
			b.WriteString(line)
			used += n
		}
	}
	return b.String()
}

func (e *Extractor) countTokens(s string) int {
	if e.encoder == nil {
		// Rough upper estimate, one token per four runes.
		return len([]rune(s))/4 + 1
	}
	return len(e.encoder.Encode(s, nil, nil))
}

// rawSummary concatenates each section's answers verbatim. It is fully
// deterministic so repeated extraction of the same session yields the
// same record.
func rawSummary(answers map[core.Section][]core.QA) core.ExtractedHistory {
	var h core.ExtractedHistory
	for _, sec := range core.SectionOrder {
		qas := answers[sec]
		if len(qas) == 0 {
			h.Set(sec, emptyAnswer)
			continue
		}
		parts := make([]string, 0, len(qas))
		for _, qa := range qas {
			answer := strings.TrimSpace(qa.Answer)
			if answer == "" {
				answer = emptyAnswer
			}
			parts = append(parts, fmt.Sprintf("%s: %s", qa.Question, answer))
		}
		h.Set(sec, strings.Join(parts, " | "))
	}
	return h
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
