package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/models"
	"github.com/ternarybob/blograg/internal/services/ingest"
)

type mockIngest struct {
	mu       sync.Mutex
	triggers []string
	err      error
}

func (m *mockIngest) Start(ctx context.Context, trigger string) (*models.IngestJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggers = append(m.triggers, trigger)
	if m.err != nil {
		return nil, m.err
	}
	return &models.IngestJob{ID: "job-sched", Trigger: trigger}, nil
}

func (m *mockIngest) GetJob(ctx context.Context, id string) (*models.IngestJob, error) {
	return nil, common.ErrNotFound
}

func (m *mockIngest) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.triggers)
}

func TestStart_Disabled(t *testing.T) {
	ingestService := &mockIngest{}
	s := NewService(ingestService, &common.SchedulerConfig{Enabled: false, RunOnStart: true}, arbor.NewLogger())

	require.NoError(t, s.Start())
	defer s.Stop()

	status := s.GetStatus()
	assert.False(t, status.Enabled)
	assert.Nil(t, status.NextRun)
	assert.Zero(t, ingestService.count())
}

func TestStart_InvalidSchedule(t *testing.T) {
	s := NewService(&mockIngest{}, &common.SchedulerConfig{Enabled: true, Schedule: "whenever"}, arbor.NewLogger())
	assert.Error(t, s.Start())
}

func TestStart_Status(t *testing.T) {
	s := NewService(&mockIngest{}, &common.SchedulerConfig{Enabled: true, Schedule: "@every 1h"}, arbor.NewLogger())

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Error(t, s.Start(), "second start should fail")

	status := s.GetStatus()
	assert.True(t, status.Enabled)
	assert.Equal(t, "@every 1h", status.Schedule)
	require.NotNil(t, status.NextRun)
	assert.True(t, status.NextRun.After(time.Now()))
}

func TestRunOnStart_TriggersIngest(t *testing.T) {
	ingestService := &mockIngest{}
	s := NewService(ingestService, &common.SchedulerConfig{Enabled: true, Schedule: "@every 1h", RunOnStart: true}, arbor.NewLogger())

	require.NoError(t, s.Start())
	defer s.Stop()

	require.Eventually(t, func() bool { return s.GetStatus().LastJobID == "job-sched" }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{ingest.TriggerScheduler}, ingestService.triggers)
}

func TestTrigger_RecordsFailure(t *testing.T) {
	ingestService := &mockIngest{err: errors.New("storage offline")}
	s := NewService(ingestService, &common.SchedulerConfig{Enabled: true, Schedule: "@every 1h"}, arbor.NewLogger())

	s.trigger()

	status := s.GetStatus()
	assert.Equal(t, "storage offline", status.LastError)
	assert.NotNil(t, status.LastRun)
	assert.Empty(t, status.LastJobID)
}

func TestStop_Idempotent(t *testing.T) {
	s := NewService(&mockIngest{}, &common.SchedulerConfig{Enabled: true, Schedule: "@every 1h"}, arbor.NewLogger())
	require.NoError(t, s.Start())

	s.Stop()
	s.Stop()
	assert.False(t, s.GetStatus().Enabled)
}
