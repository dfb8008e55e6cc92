// Package catalog owns the curated symptom question bank: loading the raw
// data, normalizing it into a per-symptom index, and turning it into stable
// documents for the similarity index.
package catalog

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/careloop/intakebot/internal/core"
	"github.com/careloop/intakebot/pkg/log"
)

// Entry is one raw record in the curated data file: a symptom and its
// question lists keyed by section wire key.
type Entry struct {
	Symptom   string              `json:"symptom"`
	Questions map[string][]string `json:"questions"`
}

// Index is the normalized exact-match symptom question index. Every known
// symptom maps to all six sections, empty lists included.
type Index struct {
	bySymptom map[string]map[core.Section][]string
}

// Load reads curated entries from path, falling back to the embedded
// default bank when the file does not exist.
func Load(ctx context.Context, path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.FromCtx(ctx).Debug().Str("path", path).Msg("no question data file, using embedded bank")
			data = defaultQuestionData
		} else {
			return nil, fmt.Errorf("read question data: %w", err)
		}
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode question data: %w", err)
	}
	return entries, nil
}

// NewIndex builds the normalized index. Symptom keys are lowercased and
// trimmed; unknown section keys in the source data are dropped.
func NewIndex(entries []Entry) *Index {
	idx := &Index{bySymptom: make(map[string]map[core.Section][]string, len(entries))}
	for _, e := range entries {
		key := strings.ToLower(strings.TrimSpace(e.Symptom))
		if key == "" {
			continue
		}
		perSection := emptySections()
		for rawKey, qs := range e.Questions {
			sec, ok := core.ParseSection(rawKey)
			if !ok {
				continue
			}
			perSection[sec] = append(perSection[sec], qs...)
		}
		idx.bySymptom[key] = perSection
	}
	return idx
}

// QuestionsFor returns the per-section question lists for a symptom.
// Unknown symptoms get a mapping with every section empty; never an error.
func (i *Index) QuestionsFor(symptom string) map[core.Section][]string {
	key := strings.ToLower(strings.TrimSpace(symptom))
	if perSection, ok := i.bySymptom[key]; ok {
		return perSection
	}
	return emptySections()
}

// Symptoms lists the known symptom keys.
func (i *Index) Symptoms() []string {
	out := make([]string, 0, len(i.bySymptom))
	for s := range i.bySymptom {
		out = append(out, s)
	}
	return out
}

func emptySections() map[core.Section][]string {
	m := make(map[core.Section][]string, len(core.SectionOrder))
	for _, sec := range core.SectionOrder {
		m[sec] = []string{}
	}
	return m
}

// BuildDocs flattens entries into candidates with stable content-hash ids,
// so re-seeding the similarity index upserts instead of duplicating.
func BuildDocs(entries []Entry) []core.Candidate {
	var docs []core.Candidate
	for _, e := range entries {
		symptom := strings.ToLower(strings.TrimSpace(e.Symptom))
		if symptom == "" {
			continue
		}
		for rawKey, qs := range e.Questions {
			sec, ok := core.ParseSection(rawKey)
			if !ok {
				continue
			}
			for _, q := range qs {
				q = strings.TrimSpace(q)
				if q == "" {
					continue
				}
				docs = append(docs, core.Candidate{
					ID:      DocID(symptom, sec, q),
					Text:    q,
					Symptom: symptom,
					Section: sec,
				})
			}
		}
	}
	return docs
}

// DocID derives the stable identifier for a question document.
func DocID(symptom string, section core.Section, question string) string {
	sum := md5.Sum([]byte(question))
	return fmt.Sprintf("%s::%s::%s", symptom, section.Key(), hex.EncodeToString(sum[:]))
}
