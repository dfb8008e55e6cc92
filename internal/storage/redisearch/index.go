// Package redisearch backs the similarity index with a RediSearch vector
// index: question docs are hashes with an embedding blob plus symptom and
// section tag fields, queried via filtered KNN search.
package redisearch

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/careloop/intakebot/internal/config"
	"github.com/careloop/intakebot/internal/core"
	"github.com/careloop/intakebot/pkg/log"
)

const keyPrefix = "question:"

type Index struct {
	rdb      *redis.Client
	embedder core.Embedder
	name     string
	dim      int
}

func New(cfg *config.RedisConfig, embedder core.Embedder) *Index {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Index{rdb: rdb, embedder: embedder, name: cfg.IndexName, dim: cfg.VectorDim}
}

// EnsureIndex creates the search index if it does not exist yet.
func (i *Index) EnsureIndex(ctx context.Context) error {
	err := i.rdb.FTCreate(ctx, i.name,
		&redis.FTCreateOptions{
			OnHash: true,
			Prefix: []any{keyPrefix},
		},
		&redis.FieldSchema{FieldName: "symptom", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "section", FieldType: redis.SearchFieldTypeTag},
		&redis.FieldSchema{FieldName: "text", FieldType: redis.SearchFieldTypeText},
		&redis.FieldSchema{
			FieldName: "embedding",
			FieldType: redis.SearchFieldTypeVector,
			VectorArgs: &redis.FTVectorArgs{
				FlatOptions: &redis.FTFlatOptions{
					Type:           "FLOAT32",
					Dim:            i.dim,
					DistanceMetric: "COSINE",
				},
			},
		},
	).Err()
	if err != nil && !strings.Contains(err.Error(), "Index already exists") {
		return fmt.Errorf("create search index: %w", err)
	}
	return nil
}

// Upsert writes docs under their stable ids. Existing hashes are
// overwritten, so re-seeding never duplicates.
func (i *Index) Upsert(ctx context.Context, docs []core.Candidate) error {
	logger := log.FromCtx(ctx)
	for _, d := range docs {
		vec, err := i.embedder.Embed(ctx, d.Text)
		if err != nil {
			return fmt.Errorf("embed doc %s: %w", d.ID, err)
		}
		fields := map[string]any{
			"text":      d.Text,
			"symptom":   d.Symptom,
			"section":   d.Section.Key(),
			"embedding": serializeVector(vec),
		}
		if err := i.rdb.HSet(ctx, keyPrefix+d.ID, fields).Err(); err != nil {
			return fmt.Errorf("hset doc %s: %w", d.ID, err)
		}
	}
	logger.Debug().Int("count", len(docs)).Msg("upserted question docs")
	return nil
}

func (i *Index) Search(ctx context.Context, query string, k int, filter core.IndexFilter) ([]core.Candidate, error) {
	if k <= 0 {
		return nil, nil
	}

	vec, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	pre := fmt.Sprintf("@symptom:{%s}", escapeTag(filter.Symptom))
	if filter.Section != nil {
		pre += fmt.Sprintf(" @section:{%s}", escapeTag(filter.Section.Key()))
	}
	q := fmt.Sprintf("(%s)=>[KNN %d @embedding $vec AS score]", pre, k)

	res, err := i.rdb.FTSearchWithArgs(ctx, i.name, q, &redis.FTSearchOptions{
		Params:         map[string]any{"vec": serializeVector(vec)},
		SortBy:         []redis.FTSearchSortBy{{FieldName: "score", Asc: true}},
		DialectVersion: 2,
		LimitOffset:    0,
		Limit:          k,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}

	out := make([]core.Candidate, 0, len(res.Docs))
	for _, doc := range res.Docs {
		sec, ok := core.ParseSection(doc.Fields["section"])
		if !ok {
			continue
		}
		score, _ := strconv.ParseFloat(doc.Fields["score"], 64)
		out = append(out, core.Candidate{
			ID:      strings.TrimPrefix(doc.ID, keyPrefix),
			Text:    doc.Fields["text"],
			Symptom: doc.Fields["symptom"],
			Section: sec,
			Score:   score,
		})
	}
	return out, nil
}

func (i *Index) Close() error {
	return i.rdb.Close()
}

// escapeTag escapes characters RediSearch treats as tag syntax, so
// multi-word symptoms like "sore throat" stay one tag value.
func escapeTag(v string) string {
	var sb strings.Builder
	for _, r := range v {
		switch r {
		case ' ', '-', '.', ',', ':', ';', '{', '}', '(', ')', '|', '@':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
