package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/interfaces"
)

// Service implements interfaces.EmbeddingService
type Service struct {
	embedder  interfaces.Embedder
	tokenizer interfaces.Tokenizer
	maxTokens int
	logger    arbor.ILogger
}

// NewService creates a new embedding service. maxTokens caps the provider's own
// limit when it is lower; zero keeps the provider's limit.
func NewService(embedder interfaces.Embedder, tokenizer interfaces.Tokenizer, maxTokens int, logger arbor.ILogger) *Service {
	limit := embedder.MaxInputTokens()
	if maxTokens > 0 && (limit <= 0 || maxTokens < limit) {
		limit = maxTokens
	}
	return &Service{
		embedder:  embedder,
		tokenizer: tokenizer,
		maxTokens: limit,
		logger:    logger,
	}
}

var _ interfaces.EmbeddingService = (*Service)(nil)

// MaxInputTokens returns the token budget applied before embedding
func (s *Service) MaxInputTokens() int {
	return s.maxTokens
}

// EmbedTexts truncates each text to the token budget and embeds them in one call
func (s *Service) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	truncated := make([]string, len(texts))
	for i, text := range texts {
		truncated[i] = Truncate(s.tokenizer, text, s.maxTokens)
	}

	start := time.Now()
	vectors, err := s.embedder.Embed(ctx, truncated)
	duration := time.Since(start)
	if err != nil {
		if common.IsProviderError(err) {
			return nil, err
		}
		return nil, common.NewProviderError(s.embedder.Name(), "embed", err)
	}

	if len(vectors) != len(texts) {
		return nil, common.NewProviderError(s.embedder.Name(), "embed",
			fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vectors)))
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, common.NewProviderError(s.embedder.Name(), "embed", fmt.Errorf("empty embedding at index %d", i))
		}
	}

	s.logger.Debug().
		Str("provider", s.embedder.Name()).
		Int("count", len(texts)).
		Int("embedding_dim", len(vectors[0])).
		Dur("duration", duration).
		Msg("Generated embeddings")

	return vectors, nil
}

// EmbedQuery embeds a single question
func (s *Service) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
