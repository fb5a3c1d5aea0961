package indexing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/interfaces"
	"github.com/ternarybob/blograg/internal/models"
	"github.com/ternarybob/blograg/internal/storage/badger"
)

const testCollection = "blog_articles"

// fakeEmbeddings returns fixed-size vectors and records batch sizes
type fakeEmbeddings struct {
	dimension int
	batches   []int
	failOn    int // 1-based EmbedTexts call that fails, 0 never
	calls     int
}

func (f *fakeEmbeddings) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.failOn > 0 && f.calls == f.failOn {
		return nil, common.NewProviderError("fake", "embed", errors.New("rate limited"))
	}
	f.batches = append(f.batches, len(texts))
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, f.dimension)
		v[i%f.dimension] = 1
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbeddings) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return make([]float32, f.dimension), nil
}

func (f *fakeEmbeddings) MaxInputTokens() int { return 8192 }

// countingIndex wraps a real index and counts collection creations and upserts
type countingIndex struct {
	interfaces.VectorIndex
	creates int
	upserts []int
}

func (c *countingIndex) CreateCollection(ctx context.Context, collection string, dimension int, distance string) error {
	c.creates++
	return c.VectorIndex.CreateCollection(ctx, collection, dimension, distance)
}

func (c *countingIndex) Upsert(ctx context.Context, collection string, points []models.Point) error {
	c.upserts = append(c.upserts, len(points))
	return c.VectorIndex.Upsert(ctx, collection, points)
}

func newTestIndex(t *testing.T) *countingIndex {
	t.Helper()
	logger := arbor.NewLogger()
	db, err := badger.NewBadgerDB(logger, &common.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &countingIndex{VectorIndex: badger.NewVectorIndex(db, logger)}
}

func makeArticles(n int) []*models.Article {
	articles := make([]*models.Article, n)
	for i := range articles {
		articles[i] = &models.Article{
			URL:   fmt.Sprintf("https://example.com/blog/post-%d", i),
			Title: fmt.Sprintf("Post %d", i),
			Text:  "body",
		}
	}
	return articles
}

func TestIndex_Batches(t *testing.T) {
	index := newTestIndex(t)
	embeddings := &fakeEmbeddings{dimension: 4}
	pipeline := NewPipeline(index, embeddings, testCollection, 0, arbor.NewLogger())

	indexed, err := pipeline.Index(context.Background(), makeArticles(120))
	require.NoError(t, err)

	assert.Equal(t, 120, indexed)
	assert.Equal(t, []int{50, 50, 20}, embeddings.batches)
	assert.Equal(t, []int{50, 50, 20}, index.upserts)
	assert.Equal(t, 1, index.creates)

	dim, err := index.CollectionDimension(context.Background(), testCollection)
	require.NoError(t, err)
	assert.Equal(t, 4, dim)
}

func TestIndex_Idempotent(t *testing.T) {
	index := newTestIndex(t)
	pipeline := NewPipeline(index, &fakeEmbeddings{dimension: 4}, testCollection, 10, arbor.NewLogger())
	articles := makeArticles(25)

	_, err := pipeline.Index(context.Background(), articles)
	require.NoError(t, err)
	_, err = pipeline.Index(context.Background(), articles)
	require.NoError(t, err)

	payloads, err := index.Scroll(context.Background(), testCollection, 0)
	require.NoError(t, err)
	assert.Len(t, payloads, 25)
	assert.Equal(t, 1, index.creates)
}

func TestIndex_PayloadCarriesArticle(t *testing.T) {
	index := newTestIndex(t)
	pipeline := NewPipeline(index, &fakeEmbeddings{dimension: 2}, testCollection, 50, arbor.NewLogger())

	article := &models.Article{
		URL:         "https://example.com/blog/only",
		Title:       "Only",
		Author:      "Jane",
		Description: "Desc",
		Tags:        []string{"go"},
		Text:        "body",
	}
	_, err := pipeline.Index(context.Background(), []*models.Article{article})
	require.NoError(t, err)

	payloads, err := index.Scroll(context.Background(), testCollection, 0)
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	assert.Equal(t, models.ArticlePayload(article), payloads[0])
}

func TestIndex_DimensionMismatch(t *testing.T) {
	index := newTestIndex(t)
	require.NoError(t, index.CreateCollection(context.Background(), testCollection, 8, interfaces.DistanceCosine))

	pipeline := NewPipeline(index, &fakeEmbeddings{dimension: 4}, testCollection, 50, arbor.NewLogger())

	indexed, err := pipeline.Index(context.Background(), makeArticles(3))
	assert.Zero(t, indexed)
	assert.True(t, common.IsIndexError(err))
	assert.True(t, errors.Is(err, common.ErrDimensionMismatch))
	assert.Empty(t, index.upserts)
}

func TestIndex_StopsOnFirstFailure(t *testing.T) {
	index := newTestIndex(t)
	embeddings := &fakeEmbeddings{dimension: 4, failOn: 2}
	pipeline := NewPipeline(index, embeddings, testCollection, 50, arbor.NewLogger())

	indexed, err := pipeline.Index(context.Background(), makeArticles(120))
	assert.True(t, common.IsProviderError(err))
	assert.Equal(t, 50, indexed)
	assert.Equal(t, []int{50}, index.upserts)

	payloads, err := index.Scroll(context.Background(), testCollection, 0)
	require.NoError(t, err)
	assert.Len(t, payloads, 50)
}

func TestIndex_Empty(t *testing.T) {
	index := newTestIndex(t)
	pipeline := NewPipeline(index, &fakeEmbeddings{dimension: 4}, testCollection, 50, arbor.NewLogger())

	indexed, err := pipeline.Index(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, indexed)
	assert.Zero(t, index.creates)
}

// stableEmbeddings maps every text to the same vector and holds no state
type stableEmbeddings struct {
	dimension int
}

func (s stableEmbeddings) vector() []float32 {
	v := make([]float32, s.dimension)
	v[0] = 1
	return v
}

func (s stableEmbeddings) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vector()
	}
	return out, nil
}

func (s stableEmbeddings) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return s.vector(), nil
}

func (s stableEmbeddings) MaxInputTokens() int { return 8192 }

func TestIndex_ConcurrentRunsShareOneCollection(t *testing.T) {
	logger := arbor.NewLogger()
	db, err := badger.NewBadgerDB(logger, &common.BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	index := badger.NewVectorIndex(db, logger)

	articles := makeArticles(60)
	const runs = 2
	errs := make([]error, runs)
	counts := make([]int, runs)

	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pipeline := NewPipeline(index, stableEmbeddings{dimension: 4}, testCollection, 25, logger)
			counts[i], errs[i] = pipeline.Index(context.Background(), articles)
		}(i)
	}
	wg.Wait()

	for i := 0; i < runs; i++ {
		assert.NoError(t, errs[i])
		assert.Equal(t, len(articles), counts[i])
	}

	dim, err := index.CollectionDimension(context.Background(), testCollection)
	require.NoError(t, err)
	assert.Equal(t, 4, dim)

	payloads, err := index.Scroll(context.Background(), testCollection, 0)
	require.NoError(t, err)
	require.Len(t, payloads, len(articles))

	seen := make(map[string]int, len(payloads))
	for _, p := range payloads {
		seen[p.URL]++
	}
	for _, a := range articles {
		assert.Equal(t, 1, seen[a.URL], a.URL)
	}
}
