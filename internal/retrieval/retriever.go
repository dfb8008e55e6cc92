// Package retrieval turns the similarity index into a "next unseen
// question" source for the dialogue controller.
package retrieval

import (
	"context"

	"github.com/careloop/intakebot/internal/core"
	"github.com/careloop/intakebot/pkg/log"
)

// AskedSet answers whether a question was already asked in this session,
// by stable id or by exact normalized text.
type AskedSet interface {
	Asked(id, text string) bool
}

type Retriever struct {
	index core.VectorIndex
	k     int
}

func New(index core.VectorIndex, k int) *Retriever {
	if k <= 0 {
		k = 6
	}
	return &Retriever{index: index, k: k}
}

// NextCandidate runs a filtered top-k search against hint and returns the
// best-ranked candidate not yet asked. A nil result is not an error: it
// means this section (or the whole index) has nothing left to offer, which
// drives section advancement. Index failures are logged and collapse to
// nil for the same reason.
func (r *Retriever) NextCandidate(ctx context.Context, symptom, hint string, section *core.Section, asked AskedSet) *core.Candidate {
	logger := log.FromCtx(ctx)

	docs, err := r.index.Search(ctx, hint, r.k, core.IndexFilter{Symptom: symptom, Section: section})
	if err != nil {
		logger.Warn().Err(err).Str("symptom", symptom).Msg("similarity search failed, treating as no candidate")
		return nil
	}

	for _, d := range docs {
		if asked != nil && asked.Asked(d.ID, d.Text) {
			continue
		}
		c := d
		return &c
	}
	return nil
}
