package indexing

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/interfaces"
	"github.com/ternarybob/blograg/internal/models"
)

// DefaultBatchSize is the number of articles embedded and upserted per call
const DefaultBatchSize = 50

// Pipeline implements interfaces.IndexingService
type Pipeline struct {
	index      interfaces.VectorIndex
	embeddings interfaces.EmbeddingService
	collection string
	batchSize  int
	logger     arbor.ILogger
}

// NewPipeline creates a new indexing pipeline
func NewPipeline(
	index interfaces.VectorIndex,
	embeddings interfaces.EmbeddingService,
	collection string,
	batchSize int,
	logger arbor.ILogger,
) *Pipeline {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Pipeline{
		index:      index,
		embeddings: embeddings,
		collection: collection,
		batchSize:  batchSize,
		logger:     logger,
	}
}

var _ interfaces.IndexingService = (*Pipeline)(nil)

// Index embeds and upserts the articles batch by batch, returning the number of
// points written. The first failure stops the run; earlier batches stay committed.
func (p *Pipeline) Index(ctx context.Context, articles []*models.Article) (int, error) {
	if len(articles) == 0 {
		p.logger.Debug().Msg("No articles to index")
		return 0, nil
	}

	if err := p.ensureCollection(ctx, articles[0]); err != nil {
		return 0, err
	}

	indexed := 0
	total := (len(articles) + p.batchSize - 1) / p.batchSize
	for start := 0; start < len(articles); start += p.batchSize {
		end := min(start+p.batchSize, len(articles))
		batchNum := start/p.batchSize + 1

		if err := p.indexBatch(ctx, articles[start:end]); err != nil {
			p.logger.Error().
				Err(err).
				Int("batch", batchNum).
				Int("batches", total).
				Int("indexed", indexed).
				Msg("Indexing batch failed")
			return indexed, err
		}

		indexed += end - start
		p.logger.Info().
			Int("batch", batchNum).
			Int("batches", total).
			Int("indexed", indexed).
			Msg("Indexed batch")
	}

	return indexed, nil
}

// ensureCollection creates the collection sized from a probe embedding, or
// checks an existing collection against the probe.
func (p *Pipeline) ensureCollection(ctx context.Context, first *models.Article) error {
	probe, err := p.embeddings.EmbedQuery(ctx, first.CompositeText())
	if err != nil {
		return err
	}
	dimension := len(probe)

	exists, err := p.index.CollectionExists(ctx, p.collection)
	if err != nil {
		return err
	}

	if !exists {
		p.logger.Info().Str("collection", p.collection).Int("dimension", dimension).Msg("Creating vector collection")
		return p.index.CreateCollection(ctx, p.collection, dimension, interfaces.DistanceCosine)
	}

	existing, err := p.index.CollectionDimension(ctx, p.collection)
	if err != nil {
		return err
	}
	if existing != dimension {
		return common.NewIndexError(p.collection, "index",
			fmt.Errorf("%w: collection has %d dimensions, embedder produces %d; recreate the collection after changing embedding models",
				common.ErrDimensionMismatch, existing, dimension))
	}
	return nil
}

func (p *Pipeline) indexBatch(ctx context.Context, batch []*models.Article) error {
	texts := make([]string, len(batch))
	for i, article := range batch {
		texts[i] = article.CompositeText()
	}

	vectors, err := p.embeddings.EmbedTexts(ctx, texts)
	if err != nil {
		return err
	}

	points := make([]models.Point, len(batch))
	for i, article := range batch {
		points[i] = models.Point{
			ID:      common.PointID(article.URL),
			Vector:  vectors[i],
			Payload: models.ArticlePayload(article),
		}
	}

	return p.index.Upsert(ctx, p.collection, points)
}
