package main

import (
	"github.com/spf13/cobra"

	"github.com/careloop/intakebot/internal/catalog"
	"github.com/careloop/intakebot/internal/config"
	"github.com/careloop/intakebot/internal/providers/rag"
	"github.com/careloop/intakebot/internal/storage/redisearch"
	"github.com/careloop/intakebot/pkg/log"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Index the symptom question data into RediSearch",
	Long:  `Loads the symptom question data, embeds every question and writes the documents into the configured RediSearch index. Requires REDIS_ADDR. The in-memory index seeds itself at startup and does not need this command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()
		logger := log.FromCtx(ctx)

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			logger.Fatal().Err(err).Msg("failed to init env")
		}

		redisCfg := config.NewRedisConfig(ctx)
		if !redisCfg.Enabled() {
			logger.Fatal().Msg("REDIS_ADDR is not set, nothing to seed")
		}

		appCfg := config.NewAppConfig(ctx)
		entries, err := catalog.Load(ctx, appCfg.GetQuestionDataPath())
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to load question data")
		}

		embedder := rag.NewEmbedder(config.NewEmbeddingConfig(ctx))
		idx := redisearch.New(redisCfg, embedder)
		defer idx.Close() //nolint:errcheck

		if err := idx.EnsureIndex(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to ensure redisearch index")
		}

		docs := catalog.BuildDocs(entries)
		if err := idx.Upsert(ctx, docs); err != nil {
			logger.Fatal().Err(err).Msg("failed to index question documents")
		}

		logger.Info().
			Int("symptoms", len(entries)).
			Int("questions", len(docs)).
			Str("index", redisCfg.IndexName).
			Msg("question data indexed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
