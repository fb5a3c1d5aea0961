package interfaces

import (
	"context"

	"github.com/ternarybob/blograg/internal/models"
)

// DistanceCosine is the only metric the retrieval engine relies on
const DistanceCosine = "Cosine"

// VectorIndex stores (id, vector, payload) points in named collections
type VectorIndex interface {
	CollectionExists(ctx context.Context, collection string) (bool, error)
	// CreateCollection creates the collection or does nothing when it already exists
	CreateCollection(ctx context.Context, collection string, dimension int, distance string) error
	// CollectionDimension returns the vector size the collection was created with
	CollectionDimension(ctx context.Context, collection string) (int, error)
	// Upsert writes all points in one call, replacing points with the same ID
	Upsert(ctx context.Context, collection string, points []models.Point) error
	// Search returns up to limit hits ordered by descending similarity, payloads included
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]models.SearchHit, error)
	// Scroll returns up to limit payloads in no particular order
	Scroll(ctx context.Context, collection string, limit int) ([]models.Payload, error)
}
