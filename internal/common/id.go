package common

import (
	"github.com/google/uuid"
)

// NewJobID generates a random ingest job ID
func NewJobID() string {
	return uuid.New().String()
}

// PointID derives the vector point ID for an article URL.
// UUIDv5 in the URL namespace: the same URL always maps to the same point,
// so re-indexing overwrites instead of appending.
func PointID(articleURL string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(articleURL)).String()
}
