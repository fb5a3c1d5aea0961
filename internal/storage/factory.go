package storage

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/interfaces"
	"github.com/ternarybob/blograg/internal/storage/badger"
	"github.com/ternarybob/blograg/internal/storage/postgres"
	"github.com/ternarybob/blograg/internal/storage/qdrant"
)

// Manager combines the Badger store (always used for ingest jobs) with the
// configured article store and vector index.
type Manager struct {
	badger   *badger.Manager
	articles interfaces.ArticleStorage
	vectors  interfaces.VectorIndex
	logger   arbor.ILogger
}

var _ interfaces.StorageManager = (*Manager)(nil)

// NewStorageManager creates a new storage manager based on config
func NewStorageManager(ctx context.Context, logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	badgerManager, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		badger:   badgerManager,
		articles: badgerManager.ArticleStorage(),
		vectors:  badgerManager.VectorIndex(),
		logger:   logger,
	}

	switch config.Storage.Type {
	case "badger", "":
	case "postgres":
		store, err := postgres.NewArticleStorage(ctx, &config.Storage.Postgres, logger)
		if err != nil {
			badgerManager.Close()
			return nil, err
		}
		m.articles = store
	default:
		badgerManager.Close()
		return nil, fmt.Errorf("unsupported storage type: %s", config.Storage.Type)
	}

	switch config.Vector.Type {
	case "badger", "":
	case "qdrant":
		client, err := qdrant.NewClient(&config.Vector.Qdrant, logger)
		if err != nil {
			m.Close()
			return nil, err
		}
		m.vectors = client
	default:
		m.Close()
		return nil, fmt.Errorf("unsupported vector index type: %s", config.Vector.Type)
	}

	logger.Debug().
		Str("articles", config.Storage.Type).
		Str("vectors", config.Vector.Type).
		Str("badger_path", config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return m, nil
}

func (m *Manager) ArticleStorage() interfaces.ArticleStorage {
	return m.articles
}

func (m *Manager) IngestJobStorage() interfaces.IngestJobStorage {
	return m.badger.IngestJobStorage()
}

func (m *Manager) VectorIndex() interfaces.VectorIndex {
	return m.vectors
}

// Close closes the article store when it is not Badger, then Badger itself
func (m *Manager) Close() error {
	if m.articles != m.badger.ArticleStorage() {
		if err := m.articles.Close(); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to close article storage")
		}
	}
	return m.badger.Close()
}
