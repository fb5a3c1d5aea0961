package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/handlers"
	"github.com/ternarybob/blograg/internal/interfaces"
	"github.com/ternarybob/blograg/internal/services/answer"
	"github.com/ternarybob/blograg/internal/services/embeddings"
	"github.com/ternarybob/blograg/internal/services/indexing"
	"github.com/ternarybob/blograg/internal/services/ingest"
	"github.com/ternarybob/blograg/internal/services/llm"
	"github.com/ternarybob/blograg/internal/services/retrieval"
	"github.com/ternarybob/blograg/internal/services/scheduler"
	"github.com/ternarybob/blograg/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	StorageManager interfaces.StorageManager
	ArticleStorage interfaces.ArticleStorage
	JobStorage     interfaces.IngestJobStorage
	VectorIndex    interfaces.VectorIndex

	// Providers
	Embedder  interfaces.Embedder
	Generator interfaces.Generator

	// Core services
	EmbeddingService interfaces.EmbeddingService
	RetrievalService interfaces.RetrievalService
	IndexingService  interfaces.IndexingService
	AnswerService    interfaces.AnswerService
	IngestService    *ingest.Service
	SchedulerService *scheduler.Service

	// HTTP handlers
	APIHandler    *handlers.APIHandler
	AnswerHandler *handlers.AnswerHandler
	IngestHandler *handlers.IngestHandler
}

// New wires storage, providers, services and handlers from config
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	ctx := context.Background()

	if err := app.initStorage(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initServices(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	if err := app.SchedulerService.Start(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.Info().
		Str("storage", cfg.Storage.Type).
		Str("vector", cfg.Vector.Type).
		Str("collection", cfg.Vector.Collection).
		Str("embedder", app.Embedder.Name()).
		Str("generator", app.Generator.Name()).
		Msg("Application initialization complete")

	return app, nil
}

// initStorage opens Badger (always used for ingest jobs), the article store and the vector index
func (a *App) initStorage(ctx context.Context) error {
	manager, err := storage.NewStorageManager(ctx, a.Logger, a.Config)
	if err != nil {
		return err
	}
	a.StorageManager = manager
	a.ArticleStorage = manager.ArticleStorage()
	a.JobStorage = manager.IngestJobStorage()
	a.VectorIndex = manager.VectorIndex()
	return nil
}

// initServices builds providers and the core services in dependency order
func (a *App) initServices(ctx context.Context) error {
	var err error

	factory := llm.NewProviderFactory(a.Config, a.Logger)
	if a.Embedder, err = factory.NewEmbedder(ctx); err != nil {
		return err
	}
	if a.Generator, err = factory.NewGenerator(ctx); err != nil {
		return err
	}

	tokenizer, err := embeddings.NewTiktokenTokenizer(embeddings.DefaultEncoding)
	if err != nil {
		return err
	}
	a.EmbeddingService = embeddings.NewService(a.Embedder, tokenizer, a.Config.LLM.MaxEmbedTokens, a.Logger)

	a.RetrievalService = retrieval.NewEngine(
		a.VectorIndex,
		a.EmbeddingService,
		a.Config.Vector.Collection,
		a.Config.Vector.ScrollLimit,
		a.Logger,
	)

	a.IndexingService = indexing.NewPipeline(
		a.VectorIndex,
		a.EmbeddingService,
		a.Config.Vector.Collection,
		a.Config.Indexing.BatchSize,
		a.Logger,
	)

	synthesizer := answer.NewSynthesizer(a.Generator, &a.Config.Answer, a.Logger)
	a.AnswerService = answer.NewService(a.RetrievalService, synthesizer, &a.Config.Answer, a.Logger)

	scraper, err := ingest.NewScraper(&a.Config.Ingest, a.Logger)
	if err != nil {
		return err
	}
	a.IngestService = ingest.NewService(
		scraper,
		a.ArticleStorage,
		a.JobStorage,
		a.IndexingService,
		&a.Config.Ingest,
		a.Logger,
	)

	a.SchedulerService = scheduler.NewService(a.IngestService, &a.Config.Scheduler, a.Logger)
	return nil
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(
		a.ArticleStorage,
		a.VectorIndex,
		a.SchedulerService,
		a.Config.Vector.Collection,
		a.Logger,
	)
	a.AnswerHandler = handlers.NewAnswerHandler(a.AnswerService, &a.Config.Answer, a.Logger)
	a.IngestHandler = handlers.NewIngestHandler(a.IngestService, a.Logger)
}

// Close stops background work and releases storage. Safe on a partially built App.
func (a *App) Close() error {
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}

	if a.IngestService != nil {
		a.Logger.Info().Msg("Waiting for active ingest to stop")
		a.IngestService.Close()
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
