package interfaces

import (
	"context"

	"github.com/ternarybob/blograg/internal/models"
)

// ArticleStorage persists scraped articles keyed by URL
type ArticleStorage interface {
	// UpsertArticle inserts the article or replaces the existing row with the same URL
	UpsertArticle(ctx context.Context, article *models.Article) error
	GetArticle(ctx context.Context, url string) (*models.Article, error)
	// FetchAll returns every article ordered by publish date, newest first.
	// Articles without a publish date come last.
	FetchAll(ctx context.Context) ([]*models.Article, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// IngestJobStorage persists ingest job records
type IngestJobStorage interface {
	SaveJob(ctx context.Context, job *models.IngestJob) error
	GetJob(ctx context.Context, id string) (*models.IngestJob, error)
	ListJobs(ctx context.Context, limit int) ([]*models.IngestJob, error)
}

// StorageManager owns the configured stores and closes them together
type StorageManager interface {
	ArticleStorage() ArticleStorage
	IngestJobStorage() IngestJobStorage
	VectorIndex() VectorIndex
	Close() error
}
