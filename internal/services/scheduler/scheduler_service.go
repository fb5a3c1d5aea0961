package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/interfaces"
	"github.com/ternarybob/blograg/internal/services/ingest"
)

// Service triggers periodic re-ingest on a cron schedule
type Service struct {
	ingest  interfaces.IngestService
	config  *common.SchedulerConfig
	cron    *cron.Cron
	logger  arbor.ILogger
	mu      sync.Mutex
	running bool
	entryID cron.EntryID
	lastRun *time.Time
	lastJob string
	lastErr string
}

// NewService creates a new scheduler service
func NewService(ingestService interfaces.IngestService, config *common.SchedulerConfig, logger arbor.ILogger) *Service {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Service{
		ingest: ingestService,
		config: config,
		cron:   cron.New(cron.WithParser(parser)),
		logger: logger,
	}
}

// Start registers the ingest trigger and starts the cron. A disabled scheduler
// is a no-op.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	if !s.config.Enabled {
		s.logger.Info().Msg("Scheduler disabled")
		return nil
	}

	id, err := s.cron.AddFunc(s.config.Schedule, s.trigger)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	s.entryID = id

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", s.config.Schedule).
		Str("next_run", s.nextRun().Format(time.RFC3339)).
		Msg("Scheduler started")

	if s.config.RunOnStart {
		common.SafeGo(s.logger, "scheduler-run-on-start", s.trigger, nil)
	}
	return nil
}

// trigger starts an ingest run. Failures are logged, never fatal.
func (s *Service) trigger() {
	now := time.Now()
	job, err := s.ingest.Start(context.Background(), ingest.TriggerScheduler)

	s.mu.Lock()
	s.lastRun = &now
	if err != nil {
		s.lastErr = err.Error()
	} else {
		s.lastErr = ""
		s.lastJob = job.ID
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Msg("Scheduled ingest failed to start")
		return
	}
	s.logger.Info().Str("job_id", job.ID).Msg("Scheduled ingest triggered")
}

// Status describes the scheduler for the health endpoint
type Status struct {
	Enabled   bool       `json:"enabled"`
	Schedule  string     `json:"schedule,omitempty"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	LastJobID string     `json:"last_job_id,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

// GetStatus returns the current scheduler state
func (s *Service) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Enabled:   s.running,
		LastRun:   s.lastRun,
		LastJobID: s.lastJob,
		LastError: s.lastErr,
	}
	if s.running {
		status.Schedule = s.config.Schedule
		next := s.nextRun()
		status.NextRun = &next
	}
	return status
}

// nextRun returns the next activation. The cron goroutine fills Entry.Next
// lazily, so a freshly started entry is computed from its schedule.
func (s *Service) nextRun() time.Time {
	entry := s.cron.Entry(s.entryID)
	if entry.Next.IsZero() && entry.Schedule != nil {
		return entry.Schedule.Next(time.Now())
	}
	return entry.Next
}

// Stop halts the cron and waits for a running trigger to return
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")
}
