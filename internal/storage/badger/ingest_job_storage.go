package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/interfaces"
	"github.com/ternarybob/blograg/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// IngestJobStorage implements interfaces.IngestJobStorage for Badger
type IngestJobStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewIngestJobStorage creates a new IngestJobStorage instance
func NewIngestJobStorage(db *BadgerDB, logger arbor.ILogger) interfaces.IngestJobStorage {
	return &IngestJobStorage{
		db:     db,
		logger: logger,
	}
}

func (s *IngestJobStorage) SaveJob(ctx context.Context, job *models.IngestJob) error {
	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}
	if err := s.db.Store().Upsert(job.ID, job); err != nil {
		return fmt.Errorf("failed to save ingest job: %w", err)
	}
	return nil
}

func (s *IngestJobStorage) GetJob(ctx context.Context, id string) (*models.IngestJob, error) {
	var job models.IngestJob
	if err := s.db.Store().Get(id, &job); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%w: ingest job %s", common.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get ingest job: %w", err)
	}
	return &job, nil
}

func (s *IngestJobStorage) ListJobs(ctx context.Context, limit int) ([]*models.IngestJob, error) {
	var jobs []models.IngestJob
	if err := s.db.Store().Find(&jobs, nil); err != nil {
		return nil, fmt.Errorf("failed to list ingest jobs: %w", err)
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}

	result := make([]*models.IngestJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}
