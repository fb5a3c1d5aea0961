package handlers

import (
	"context"

	"github.com/ternarybob/blograg/internal/services/scheduler"
)

// ArticleCounter reports how many articles are stored.
type ArticleCounter interface {
	Count(ctx context.Context) (int, error)
}

// CollectionChecker reports whether a vector collection exists.
type CollectionChecker interface {
	CollectionExists(ctx context.Context, name string) (bool, error)
}

// SchedulerStatusProvider exposes the re-ingest scheduler state.
type SchedulerStatusProvider interface {
	GetStatus() scheduler.Status
}
