package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/models"
)

func TestIngestJobStorage_SaveAndGet(t *testing.T) {
	storage := NewIngestJobStorage(newTestDB(t), arbor.NewLogger())
	ctx := context.Background()

	job := &models.IngestJob{ID: "job-1", Trigger: "api", Status: models.IngestStatusRunning, CreatedAt: time.Now()}
	require.NoError(t, storage.SaveJob(ctx, job))

	job.Status = models.IngestStatusCompleted
	job.Indexed = 12
	require.NoError(t, storage.SaveJob(ctx, job))

	got, err := storage.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.IngestStatusCompleted, got.Status)
	assert.Equal(t, 12, got.Indexed)
}

func TestIngestJobStorage_Errors(t *testing.T) {
	storage := NewIngestJobStorage(newTestDB(t), arbor.NewLogger())
	ctx := context.Background()

	assert.Error(t, storage.SaveJob(ctx, &models.IngestJob{}))

	_, err := storage.GetJob(ctx, "missing")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestIngestJobStorage_ListNewestFirst(t *testing.T) {
	storage := NewIngestJobStorage(newTestDB(t), arbor.NewLogger())
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, storage.SaveJob(ctx, &models.IngestJob{ID: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)}))
	}

	jobs, err := storage.ListJobs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "c", jobs[0].ID)
	assert.Equal(t, "b", jobs[1].ID)

	all, err := storage.ListJobs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
