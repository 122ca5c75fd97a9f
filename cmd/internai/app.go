package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/internai/internai/internal/config"
	"github.com/internai/internai/internal/db"
	"github.com/internai/internai/internal/generation"
	"github.com/internai/internai/internal/llm"
	"github.com/internai/internai/internal/logger"
	"github.com/internai/internai/internal/pipeline"
	"github.com/internai/internai/internal/rendering"
	"github.com/internai/internai/internal/retrieval"
	"github.com/internai/internai/internal/scoring"
	"github.com/internai/internai/internal/skills"
	"github.com/internai/internai/internal/store"
)

// app holds the wired components shared by the subcommands.
type app struct {
	cfg         *config.Config
	log         *zap.Logger
	client      *llm.GeminiClient
	embedder    llm.Embedder
	store       store.Store
	indexer     *store.Indexer
	coordinator *pipeline.Coordinator
	db          *db.DB
}

// newApp builds the dependency graph from configuration. Postgres-backed
// storage and persistence activate when DATABASE_URL is set; otherwise the
// in-memory store is used and completed runs are not persisted.
func newApp(ctx context.Context, configPath string, jsonLogs bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	log, err := logger.New(jsonLogs, cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	client, err := llm.NewGeminiClient(ctx, cfg.APIKey, cfg.EmbeddingModel)
	if err != nil {
		return nil, err
	}

	embedder, err := llm.NewCachingEmbedder(client, cfg.EmbedCacheSize)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log, client: client, embedder: embedder}

	if cfg.DatabaseURL != "" {
		pg, err := store.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.store = pg

		a.db, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := a.db.EnsureSchema(ctx); err != nil {
			return nil, err
		}
	} else {
		a.store = store.NewMemory()
		log.Info("DATABASE_URL not set, using in-memory store without persistence")
	}

	a.indexer = store.NewIndexer(a.store, a.embedder, cfg.ChunkSize, cfg.ChunkOverlap)

	var persister pipeline.Persister
	if a.db != nil {
		persister = a.db
	}

	a.coordinator = pipeline.NewCoordinator(
		retrieval.New(a.store, a.embedder),
		generation.New(client, cfg, log),
		scoring.New(cfg.ScoreWeights),
		rendering.New(cfg.FontSizes),
		skills.NewExtractor(client, a.store, cfg.PrimaryModel, log),
		a.embedder,
		persister,
		cfg,
		log,
	)
	return a, nil
}

func (a *app) close() {
	if a.client != nil {
		_ = a.client.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	if pg, ok := a.store.(*store.Postgres); ok {
		pg.Close()
	}
	_ = a.log.Sync()
}
