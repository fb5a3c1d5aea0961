package models

import "time"

// IngestStatus represents the lifecycle state of an ingest job
type IngestStatus string

const (
	IngestStatusPending   IngestStatus = "pending"
	IngestStatusRunning   IngestStatus = "running"
	IngestStatusCompleted IngestStatus = "completed"
	IngestStatusFailed    IngestStatus = "failed"
)

// IngestJob tracks one sitemap ingest and re-index run
type IngestJob struct {
	ID          string       `json:"id"`
	Trigger     string       `json:"trigger"` // "api" or "scheduler"
	Status      IngestStatus `json:"status"`
	Discovered  int          `json:"discovered"` // Sitemap locations matching the path filter
	Scraped     int          `json:"scraped"`
	Failed      int          `json:"failed"`
	Indexed     int          `json:"indexed"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// IsTerminal reports whether the job has finished
func (j *IngestJob) IsTerminal() bool {
	return j.Status == IngestStatusCompleted || j.Status == IngestStatusFailed
}
