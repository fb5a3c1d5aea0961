package retrieval

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/interfaces"
	"github.com/ternarybob/blograg/internal/models"
)

// Engine implements interfaces.RetrievalService over a single vector collection
type Engine struct {
	index       interfaces.VectorIndex
	embeddings  interfaces.EmbeddingService
	collection  string
	scrollLimit int
	logger      arbor.ILogger
}

// NewEngine creates a new retrieval engine. scrollLimit caps how many points a
// date-ordered query reads; zero reads everything.
func NewEngine(
	index interfaces.VectorIndex,
	embeddings interfaces.EmbeddingService,
	collection string,
	scrollLimit int,
	logger arbor.ILogger,
) *Engine {
	return &Engine{
		index:       index,
		embeddings:  embeddings,
		collection:  collection,
		scrollLimit: scrollLimit,
		logger:      logger,
	}
}

var _ interfaces.RetrievalService = (*Engine)(nil)

// Retrieve returns at most topK results for the question
func (e *Engine) Retrieve(ctx context.Context, question string, topK int) ([]models.RetrievalResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, common.NewValidationError("question", "must not be empty")
	}
	if topK <= 0 {
		return nil, common.NewValidationError("top_k", "must be a positive integer")
	}

	exists, err := e.index.CollectionExists(ctx, e.collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		e.logger.Debug().Str("collection", e.collection).Msg("Collection not created yet, nothing to retrieve")
		return []models.RetrievalResult{}, nil
	}

	intent := ClassifyIntent(question)
	e.logger.Debug().
		Str("intent", string(intent)).
		Int("top_k", topK).
		Msg("Retrieving documents")

	if intent.IsDateOrdered() {
		return e.retrieveByDate(ctx, intent, topK)
	}
	return e.retrieveSemantic(ctx, question, topK)
}

type datedPayload struct {
	payload models.Payload
	date    time.Time
}

func (e *Engine) retrieveByDate(ctx context.Context, intent models.Intent, topK int) ([]models.RetrievalResult, error) {
	payloads, err := e.index.Scroll(ctx, e.collection, e.scrollLimit)
	if err != nil {
		return nil, err
	}

	dated := make([]datedPayload, 0, len(payloads))
	excluded := 0
	for _, p := range payloads {
		date, dataErr := payloadDate(p)
		if dataErr != nil {
			e.logger.Debug().Str("url", p.URL).Str("reason", dataErr.Reason).Msg("Record has no usable publish date")
			if dataErr.Missing() {
				excluded++
				continue
			}
		}
		dated = append(dated, datedPayload{payload: p, date: date})
	}

	sortByDate(dated, intent == models.IntentLatestFirst)

	if len(dated) > topK {
		dated = dated[:topK]
	}

	results := make([]models.RetrievalResult, len(dated))
	for i, d := range dated {
		results[i] = d.payload.ToResult(nil)
	}

	e.logger.Debug().
		Int("scanned", len(payloads)).
		Int("excluded", excluded).
		Int("returned", len(results)).
		Msg("Date-ordered retrieval complete")

	return results, nil
}

// payloadDate parses the publish date of a payload. A missing date or an
// unparseable one yields a DataError; unparseable dates map to the zero time.
func payloadDate(p models.Payload) (time.Time, *common.DataError) {
	if p.DatePublished == "" {
		return time.Time{}, &common.DataError{URL: p.URL, Field: "date_published", Reason: common.ReasonMissing}
	}
	t, err := models.ParsePayloadDate(p.DatePublished)
	if err != nil {
		return time.Time{}, &common.DataError{URL: p.URL, Field: "date_published", Reason: "unparseable: " + p.DatePublished}
	}
	return t, nil
}

// sortByDate orders payloads newest first when descending, oldest first otherwise.
// Equal dates keep their scan order.
func sortByDate(dated []datedPayload, descending bool) {
	sort.SliceStable(dated, func(i, j int) bool {
		if descending {
			return dated[i].date.After(dated[j].date)
		}
		return dated[i].date.Before(dated[j].date)
	})
}

func (e *Engine) retrieveSemantic(ctx context.Context, question string, topK int) ([]models.RetrievalResult, error) {
	vector, err := e.embeddings.EmbedQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	hits, err := e.index.Search(ctx, e.collection, vector, topK)
	if err != nil {
		return nil, err
	}

	if len(hits) > topK {
		hits = hits[:topK]
	}

	results := make([]models.RetrievalResult, len(hits))
	for i, hit := range hits {
		score := hit.Score
		results[i] = hit.Payload.ToResult(&score)
	}

	e.logger.Debug().Int("returned", len(results)).Msg("Semantic retrieval complete")
	return results, nil
}
