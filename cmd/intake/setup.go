package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/careloop/intakebot/internal/catalog"
	"github.com/careloop/intakebot/internal/config"
	"github.com/careloop/intakebot/internal/core"
	"github.com/careloop/intakebot/internal/providers/llm"
	"github.com/careloop/intakebot/internal/providers/rag"
	"github.com/careloop/intakebot/internal/retrieval"
	"github.com/careloop/intakebot/internal/service/dialogue"
	"github.com/careloop/intakebot/internal/service/extract"
	"github.com/careloop/intakebot/internal/service/session"
	"github.com/careloop/intakebot/internal/storage/memindex"
	"github.com/careloop/intakebot/internal/storage/redisearch"
	"github.com/careloop/intakebot/internal/storage/sqlite"
	"github.com/careloop/intakebot/internal/transport/httpapi"
	"github.com/careloop/intakebot/internal/transport/telegram"
	"github.com/careloop/intakebot/pkg/log"
	"github.com/careloop/intakebot/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)

	engine, appCfg, services := buildEngine(ctx)

	// Transports
	if appCfg.EnableHTTP {
		services = append(services, httpapi.NewServer(ctx, appCfg, engine.ctrl, engine.transcripts, engine.histories))
	}
	if appCfg.IsTelegramSelected() {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, engine.ctrl)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize telegram bot")
		}
		services = append(services, bot)
	}

	return services
}

// engine bundles the dialogue controller with the stores the read-side
// endpoints serve from.
type engine struct {
	ctrl        *dialogue.Controller
	transcripts *sqlite.TranscriptsRepo
	histories   *sqlite.HistoriesRepo
}

// buildEngine wires the dialogue controller and its backing services.
// Returned services are cleanups and must be registered for shutdown.
func buildEngine(ctx context.Context) (*engine, *config.AppConfig, []srv.Service) {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	dlgCfg := config.NewDialogueConfig(ctx)
	redisCfg := config.NewRedisConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))
	transcripts := sqlite.NewTranscriptsRepo(db)
	histories := sqlite.NewHistoriesRepo(db)

	// 3. Question data
	entries, err := catalog.Load(ctx, appCfg.GetQuestionDataPath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load question data")
	}
	static := catalog.NewIndex(entries)

	// 4. Similarity index
	index, cleanup := initIndex(ctx, redisCfg, entries)
	if cleanup != nil {
		services = append(services, cleanup)
	}

	// 5. Extraction provider
	provider, err := llm.NewProvider(ctx, config.NewLLMConfig(ctx))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	ctrl := dialogue.NewController(
		dlgCfg,
		session.NewStore(),
		retrieval.New(index, dlgCfg.RetrievalK),
		dialogue.NewValidator(index, dlgCfg.RelevanceThreshold),
		static,
		extract.New(provider),
		transcripts,
		histories,
	)
	return &engine{ctrl: ctrl, transcripts: transcripts, histories: histories}, appCfg, services
}

// initIndex selects the RediSearch index when configured and reachable,
// otherwise the process-local index seeded from the question data. The
// interview keeps running either way.
func initIndex(ctx context.Context, redisCfg *config.RedisConfig, entries []catalog.Entry) (core.VectorIndex, srv.Service) {
	logger := log.FromCtx(ctx)

	if redisCfg.Enabled() {
		embedder := rag.NewEmbedder(config.NewEmbeddingConfig(ctx))
		idx := redisearch.New(redisCfg, embedder)
		if err := idx.EnsureIndex(ctx); err != nil {
			logger.Warn().Err(err).Msg("redisearch unavailable, falling back to in-memory index")
		} else {
			// Seeding is idempotent under stable doc ids, so a boot-time
			// upsert after `intake seed` changes nothing.
			if err := idx.Upsert(ctx, catalog.BuildDocs(entries)); err != nil {
				logger.Warn().Err(err).Msg("failed to seed redisearch, continuing with existing docs")
			}
			logger.Info().Str("index", redisCfg.IndexName).Msg("using redisearch similarity index")
			return idx, srv.NewCleanup(idx.Close)
		}
	}

	mem := memindex.New()
	if err := mem.Upsert(ctx, catalog.BuildDocs(entries)); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed in-memory index")
	}
	logger.Info().Int("questions", mem.Len()).Msg("using in-memory similarity index")
	return mem, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
