package dialogue

import (
	"context"
	"regexp"
	"strings"

	"github.com/careloop/intakebot/internal/core"
	"github.com/careloop/intakebot/pkg/log"
)

// Reply texts for rejected input. The turn handler re-emits the pending
// question after these, so they stay short.
const (
	msgDidNotCatch  = "I didn't catch that. Could you share a bit more?"
	msgFocusSymptom = "Let's focus on your symptoms."
	msgNotRelated   = "That doesn't seem related to the question."
)

var (
	// Whole-message chit-chat only; substrings never match, so
	// "hello, I have a cough" survives to answer detection.
	chitchatRe = regexp.MustCompile(`(?i)^(?:hi|hello|hey|thanks|thank you|good morning|good night|how are you|what's up|lol|ok|okay|k|cool)[\s.!?]*$`)

	wordNum    = `one|two|three|four|five|six|seven|eight|nine|ten|couple|few|several`
	durationRe = regexp.MustCompile(`(?i)\b((\d+)|(` + wordNum + `))\s*(min|mins|minute|minutes|hr|hour|hours|day|days|week|weeks|month|months|year|years)\b|today|yesterday|last night|this morning|this evening|tonight`)

	// Plausible body temperatures: 36.5, 38.2 C, 101 F.
	temperatureRe = regexp.MustCompile(`(?i)\b(1[0-1]\d(\.\d+)?|[3-4]\d(\.\d+)?)[°\s]?(c|f)\b`)
	severityRe    = regexp.MustCompile(`(?i)\b(mild|moderate|severe|worse|improving|unchanged)\b`)
	brevityRe     = regexp.MustCompile(`(?i)\b(none|no|yes)\b`)
)

var yesNoAnswers = map[string]struct{}{
	"yes": {}, "yeah": {}, "yep": {}, "yup": {},
	"no": {}, "nope": {}, "nah": {},
	"not really": {}, "i don't": {}, "i do not": {}, "i am not": {},
	"no fever": {}, "no chills": {},
}

var clinicalTokens = []string{
	"cough", "fever", "phlegm", "sputum", "chest", "shortness",
	"asthma", "smoke", "pain", "chills",
}

// Validator classifies a patient utterance as trivial, chit-chat, or a
// usable answer, with an optional soft relevance check against the
// symptom's question space.
type Validator struct {
	index     core.VectorIndex
	threshold float64
}

func NewValidator(index core.VectorIndex, threshold float64) *Validator {
	return &Validator{index: index, threshold: threshold}
}

// Validate applies the classification rules in load-bearing order:
// trivial, then answer detection, then chit-chat, then soft relevance.
// Answer detection must run before chit-chat so short clinical replies
// like "no" or "2 days" are never misclassified.
func (v *Validator) Validate(ctx context.Context, symptom, text, lastQuestion string) (bool, string) {
	if isTrivial(text) {
		return false, msgDidNotCatch
	}
	if looksLikeAnswer(text, lastQuestion) {
		return true, ""
	}
	if isChitChat(text) {
		return false, msgFocusSymptom
	}
	if lastQuestion != "" && !v.isRelevant(ctx, symptom, text) {
		return false, msgNotRelated
	}
	return true, ""
}

func isTrivial(s string) bool {
	return core.NormalizeText(s) == ""
}

func isChitChat(s string) bool {
	return chitchatRe.MatchString(strings.TrimSpace(s))
}

// looksLikeAnswer is deliberately generous: yes/no vocabulary, durations,
// temperatures, severity adjectives, short brevity words, symptom tokens.
// With a question pending, essentially anything non-empty counts.
func looksLikeAnswer(s, lastQuestion string) bool {
	norm := core.NormalizeText(s)
	if norm == "" {
		return false
	}

	if _, ok := yesNoAnswers[norm]; ok {
		return true
	}
	if durationRe.MatchString(norm) {
		return true
	}
	if temperatureRe.MatchString(norm) {
		return true
	}
	if severityRe.MatchString(norm) {
		return true
	}
	if len(norm) <= 4 && brevityRe.MatchString(norm) {
		return true
	}
	for _, tok := range clinicalTokens {
		if strings.Contains(norm, tok) {
			return true
		}
	}
	if isChitChat(s) {
		return false
	}
	// Free text of some substance counts when a question is pending;
	// single stray words still fall through to the relevance check.
	return lastQuestion != "" && len(strings.Fields(norm)) >= 3
}

// isRelevant soft-checks the utterance against the symptom's question
// space. Any retrieval failure fails open: validation must never block a
// turn because the index is down.
func (v *Validator) isRelevant(ctx context.Context, symptom, text string) bool {
	if v.index == nil {
		return true
	}

	docs, err := v.index.Search(ctx, text, 1, core.IndexFilter{Symptom: symptom})
	if err != nil {
		log.FromCtx(ctx).Debug().Err(err).Msg("relevance check failed open")
		return true
	}
	if len(docs) == 0 {
		return false
	}
	return docs[0].Score < v.threshold
}
