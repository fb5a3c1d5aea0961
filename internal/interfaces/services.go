package interfaces

import (
	"context"

	"github.com/ternarybob/blograg/internal/models"
)

// RetrievalService picks a retrieval strategy for a question and returns ranked results
type RetrievalService interface {
	Retrieve(ctx context.Context, question string, topK int) ([]models.RetrievalResult, error)
}

// IndexingService turns stored articles into vector index points
type IndexingService interface {
	Index(ctx context.Context, articles []*models.Article) (int, error)
}

// AnswerService answers a question from retrieved articles
type AnswerService interface {
	Answer(ctx context.Context, question string, topK int) (*models.Answer, error)
}

// IngestService runs sitemap ingest jobs
type IngestService interface {
	// Start launches an ingest run in the background and returns its job.
	// When a run is already active that job is returned instead.
	Start(ctx context.Context, trigger string) (*models.IngestJob, error)
	GetJob(ctx context.Context, id string) (*models.IngestJob, error)
}
