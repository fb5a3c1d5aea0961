package badger

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/interfaces"
	"github.com/ternarybob/blograg/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// VectorCollection records the shape of a collection
type VectorCollection struct {
	Name      string
	Dimension int
	Distance  string
	CreatedAt time.Time
}

// VectorRecord is one stored point. Key is "<collection>/<point id>".
type VectorRecord struct {
	Key        string
	Collection string `badgerhold:"index"`
	PointID    string
	Vector     []float32
	Payload    models.Payload
}

// VectorIndex is an embedded brute-force cosine index on Badger
type VectorIndex struct {
	db     *BadgerDB
	logger arbor.ILogger
	mu     sync.Mutex // Serialises writes; badgerhold index entries are read-modify-write
}

// NewVectorIndex creates a new VectorIndex instance
func NewVectorIndex(db *BadgerDB, logger arbor.ILogger) *VectorIndex {
	return &VectorIndex{
		db:     db,
		logger: logger,
	}
}

var _ interfaces.VectorIndex = (*VectorIndex)(nil)

func (v *VectorIndex) getCollection(name string) (*VectorCollection, error) {
	var coll VectorCollection
	if err := v.db.Store().Get(name, &coll); err != nil {
		return nil, err
	}
	return &coll, nil
}

func (v *VectorIndex) CollectionExists(ctx context.Context, collection string) (bool, error) {
	_, err := v.getCollection(collection)
	if err == badgerhold.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, common.NewIndexError(collection, "get collection", err)
	}
	return true, nil
}

func (v *VectorIndex) CreateCollection(ctx context.Context, collection string, dimension int, distance string) error {
	if dimension <= 0 {
		return common.NewIndexError(collection, "create collection", fmt.Errorf("dimension must be positive, got %d", dimension))
	}
	if distance != interfaces.DistanceCosine {
		return common.NewIndexError(collection, "create collection", fmt.Errorf("unsupported distance %q", distance))
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	err := v.db.Store().Insert(collection, &VectorCollection{
		Name:      collection,
		Dimension: dimension,
		Distance:  distance,
		CreatedAt: time.Now(),
	})
	if err == badgerhold.ErrKeyExists {
		v.logger.Debug().Str("collection", collection).Msg("Collection already exists")
		return nil
	}
	if err != nil {
		return common.NewIndexError(collection, "create collection", err)
	}

	v.logger.Info().Str("collection", collection).Int("dimension", dimension).Msg("Created vector collection")
	return nil
}

func (v *VectorIndex) CollectionDimension(ctx context.Context, collection string) (int, error) {
	coll, err := v.getCollection(collection)
	if err != nil {
		return 0, common.NewIndexError(collection, "get collection", err)
	}
	return coll.Dimension, nil
}

func (v *VectorIndex) Upsert(ctx context.Context, collection string, points []models.Point) error {
	coll, err := v.getCollection(collection)
	if err != nil {
		return common.NewIndexError(collection, "upsert", err)
	}

	for _, p := range points {
		if len(p.Vector) != coll.Dimension {
			return common.NewIndexError(collection, "upsert",
				fmt.Errorf("%w: point %s has %d dimensions, collection has %d", common.ErrDimensionMismatch, p.ID, len(p.Vector), coll.Dimension))
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	// One transaction per call: the whole batch lands or none of it does
	err = v.db.Store().Badger().Update(func(tx *badger.Txn) error {
		for _, p := range points {
			key := collection + "/" + p.ID
			record := &VectorRecord{
				Key:        key,
				Collection: collection,
				PointID:    p.ID,
				Vector:     p.Vector,
				Payload:    p.Payload,
			}
			if err := v.db.Store().TxUpsert(tx, key, record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return common.NewIndexError(collection, "upsert", err)
	}
	return nil
}

func (v *VectorIndex) Search(ctx context.Context, collection string, vector []float32, limit int) ([]models.SearchHit, error) {
	if limit <= 0 {
		return []models.SearchHit{}, nil
	}

	var records []VectorRecord
	if err := v.db.Store().Find(&records, badgerhold.Where("Collection").Eq(collection).Index("Collection")); err != nil {
		return nil, common.NewIndexError(collection, "search", err)
	}

	hits := make([]models.SearchHit, 0, len(records))
	for _, r := range records {
		if len(r.Vector) != len(vector) {
			return nil, common.NewIndexError(collection, "search",
				fmt.Errorf("%w: query has %d dimensions, point has %d", common.ErrDimensionMismatch, len(vector), len(r.Vector)))
		}
		hits = append(hits, models.SearchHit{
			ID:      r.PointID,
			Score:   CosineSimilarity(vector, r.Vector),
			Payload: r.Payload,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (v *VectorIndex) Scroll(ctx context.Context, collection string, limit int) ([]models.Payload, error) {
	query := badgerhold.Where("Collection").Eq(collection).Index("Collection")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []VectorRecord
	if err := v.db.Store().Find(&records, query); err != nil {
		return nil, common.NewIndexError(collection, "scroll", err)
	}

	payloads := make([]models.Payload, len(records))
	for i, r := range records {
		payloads[i] = r.Payload
	}
	return payloads, nil
}

// CosineSimilarity returns the cosine of the angle between a and b, 0 when either is a zero vector
func CosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
