package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/interfaces"
	"github.com/ternarybob/blograg/internal/models"
)

const (
	TriggerAPI       = "api"
	TriggerScheduler = "scheduler"
)

// progressEvery is how many pages are processed between job record saves
const progressEvery = 10

// ArticleSource discovers and scrapes blog pages
type ArticleSource interface {
	FetchSitemap(ctx context.Context, sitemapURL, pathFilter string) ([]string, error)
	ScrapeArticle(ctx context.Context, url string) (*models.Article, error)
}

// Service implements interfaces.IngestService. At most one run is active at a time.
type Service struct {
	source   ArticleSource
	articles interfaces.ArticleStorage
	jobs     interfaces.IngestJobStorage
	indexer  interfaces.IndexingService
	config   *common.IngestConfig
	logger   arbor.ILogger

	mu     sync.Mutex
	active *models.IngestJob

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewService creates a new ingest service
func NewService(
	source ArticleSource,
	articles interfaces.ArticleStorage,
	jobs interfaces.IngestJobStorage,
	indexer interfaces.IndexingService,
	config *common.IngestConfig,
	logger arbor.ILogger,
) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		source:   source,
		articles: articles,
		jobs:     jobs,
		indexer:  indexer,
		config:   config,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

var _ interfaces.IngestService = (*Service)(nil)

// Start records a new job and runs it in the background. The run outlives the
// caller's context and stops only on Close. If a run is already active its job
// is returned and nothing new is started.
func (s *Service) Start(ctx context.Context, trigger string) (*models.IngestJob, error) {
	s.mu.Lock()
	if s.active != nil {
		snapshot := *s.active
		s.mu.Unlock()
		s.logger.Info().Str("job_id", snapshot.ID).Str("trigger", trigger).Msg("Ingest already running, returning active job")
		return &snapshot, nil
	}

	job := &models.IngestJob{
		ID:        common.NewJobID(),
		Trigger:   trigger,
		Status:    models.IngestStatusPending,
		CreatedAt: time.Now(),
	}
	s.active = job
	snapshot := *job
	s.mu.Unlock()

	if err := s.jobs.SaveJob(ctx, &snapshot); err != nil {
		s.mu.Lock()
		s.active = nil
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to save ingest job: %w", err)
	}

	s.logger.Info().Str("job_id", job.ID).Str("trigger", trigger).Msg("Ingest job started")

	s.wg.Add(1)
	common.SafeGo(s.logger, "ingest-"+job.ID, func() {
		defer s.finish()
		if err := s.Run(s.ctx, job); err != nil {
			s.logger.Error().Err(err).Str("job_id", job.ID).Msg("Ingest job failed")
		}
	}, func(recovered any) {
		s.update(job, func(j *models.IngestJob) {
			j.Status = models.IngestStatusFailed
			j.Error = fmt.Sprintf("panic: %v", recovered)
		})
	})

	return &snapshot, nil
}

// finish clears the active run
func (s *Service) finish() {
	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()
	s.wg.Done()
}

// GetJob returns the job record, live for the active run
func (s *Service) GetJob(ctx context.Context, id string) (*models.IngestJob, error) {
	s.mu.Lock()
	if s.active != nil && s.active.ID == id {
		snapshot := *s.active
		s.mu.Unlock()
		return &snapshot, nil
	}
	s.mu.Unlock()

	return s.jobs.GetJob(ctx, id)
}

// Run executes one ingest: sitemap, scrape and upsert each page, then re-index
// every stored article. Pages that fail are counted and skipped.
func (s *Service) Run(ctx context.Context, job *models.IngestJob) error {
	started := time.Now()
	s.update(job, func(j *models.IngestJob) {
		j.Status = models.IngestStatusRunning
		j.StartedAt = &started
	})

	err := s.run(ctx, job)

	completed := time.Now()
	s.update(job, func(j *models.IngestJob) {
		j.CompletedAt = &completed
		if err != nil {
			j.Status = models.IngestStatusFailed
			j.Error = err.Error()
		} else {
			j.Status = models.IngestStatusCompleted
		}
	})

	if err == nil {
		s.mu.Lock()
		snapshot := *job
		s.mu.Unlock()
		s.logger.Info().
			Str("job_id", snapshot.ID).
			Int("discovered", snapshot.Discovered).
			Int("scraped", snapshot.Scraped).
			Int("failed", snapshot.Failed).
			Int("indexed", snapshot.Indexed).
			Dur("duration", completed.Sub(started)).
			Msg("Ingest job completed")
	}
	return err
}

func (s *Service) run(ctx context.Context, job *models.IngestJob) error {
	urls, err := s.source.FetchSitemap(ctx, s.config.SitemapURL, s.config.PathFilter)
	if err != nil {
		return err
	}
	if s.config.MaxArticles > 0 && len(urls) > s.config.MaxArticles {
		urls = urls[:s.config.MaxArticles]
	}
	s.update(job, func(j *models.IngestJob) { j.Discovered = len(urls) })

	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.ingestPage(ctx, url); err != nil {
			s.logger.Warn().Err(err).Str("url", url).Msg("Skipping article")
			s.mutate(job, func(j *models.IngestJob) { j.Failed++ })
		} else {
			s.mutate(job, func(j *models.IngestJob) { j.Scraped++ })
		}

		if (i+1)%progressEvery == 0 {
			s.update(job, func(*models.IngestJob) {})
		}
	}

	articles, err := s.articles.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load articles for indexing: %w", err)
	}

	indexed, err := s.indexer.Index(ctx, articles)
	s.update(job, func(j *models.IngestJob) { j.Indexed = indexed })
	return err
}

func (s *Service) ingestPage(ctx context.Context, url string) error {
	article, err := s.source.ScrapeArticle(ctx, url)
	if err != nil {
		return err
	}
	return s.articles.UpsertArticle(ctx, article)
}

// mutate applies fn to the job under the service lock
func (s *Service) mutate(job *models.IngestJob, fn func(*models.IngestJob)) models.IngestJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(job)
	return *job
}

// update mutates the job and persists a snapshot. Save failures are logged only.
func (s *Service) update(job *models.IngestJob, fn func(*models.IngestJob)) {
	snapshot := s.mutate(job, fn)
	if err := s.jobs.SaveJob(context.Background(), &snapshot); err != nil {
		s.logger.Warn().Err(err).Str("job_id", snapshot.ID).Msg("Failed to save ingest job progress")
	}
}

// Close cancels any active run and waits for it to finish
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}
