// Package memindex is a process-local similarity index used when no Redis
// is configured and in tests. Scoring is bag-of-words cosine distance,
// which is deterministic and needs no external embedding service.
package memindex

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/careloop/intakebot/internal/core"
)

type Index struct {
	mu   sync.RWMutex
	docs map[string]core.Candidate
}

func New() *Index {
	return &Index{docs: make(map[string]core.Candidate)}
}

// Upsert stores docs keyed by their stable id. Re-inserting the same id
// overwrites in place, so seeding is idempotent.
func (i *Index) Upsert(ctx context.Context, docs []core.Candidate) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, d := range docs {
		if d.ID == "" {
			continue
		}
		i.docs[d.ID] = d
	}
	return nil
}

func (i *Index) Search(ctx context.Context, query string, k int, filter core.IndexFilter) ([]core.Candidate, error) {
	if k <= 0 {
		return nil, nil
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	queryVec := termVector(query)

	var matches []core.Candidate
	for _, d := range i.docs {
		if !strings.EqualFold(d.Symptom, filter.Symptom) {
			continue
		}
		if filter.Section != nil && d.Section != *filter.Section {
			continue
		}
		c := d
		c.Score = cosineDistance(queryVec, termVector(d.Text))
		matches = append(matches, c)
	}

	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].Score != matches[b].Score {
			return matches[a].Score < matches[b].Score
		}
		// Stable tie-break keeps search results deterministic across runs.
		return matches[a].ID < matches[b].ID
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Len reports the number of stored docs.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.docs)
}

func termVector(text string) map[string]float64 {
	vec := make(map[string]float64)
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		vec[tok]++
	}
	return vec
}

// cosineDistance is 1 - cosine similarity over term vectors; 0 means
// identical token bags, 1 means disjoint.
func cosineDistance(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 1.0
	}
	var dot, normA, normB float64
	for tok, va := range a {
		normA += va * va
		if vb, ok := b[tok]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if dot == 0 {
		return 1.0
	}
	return 1.0 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
