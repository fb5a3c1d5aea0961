package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db       *BadgerDB
	articles interfaces.ArticleStorage
	jobs     interfaces.IngestJobStorage
	vectors  *VectorIndex
	logger   arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:       db,
		articles: NewArticleStorage(db, logger),
		jobs:     NewIngestJobStorage(db, logger),
		vectors:  NewVectorIndex(db, logger),
		logger:   logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

var _ interfaces.StorageManager = (*Manager)(nil)

// ArticleStorage returns the Article storage interface
func (m *Manager) ArticleStorage() interfaces.ArticleStorage {
	return m.articles
}

// IngestJobStorage returns the IngestJob storage interface
func (m *Manager) IngestJobStorage() interfaces.IngestJobStorage {
	return m.jobs
}

// VectorIndex returns the embedded vector index
func (m *Manager) VectorIndex() interfaces.VectorIndex {
	return m.vectors
}

// DB returns the underlying Badger connection
func (m *Manager) DB() *BadgerDB {
	return m.db
}

// Close closes the database connection
func (m *Manager) Close() error {
	return m.db.Close()
}
