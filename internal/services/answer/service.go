package answer

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/interfaces"
	"github.com/ternarybob/blograg/internal/models"
	"github.com/ternarybob/blograg/internal/services/retrieval"
)

// DefaultSnippetChars is how much body text each reference carries
const DefaultSnippetChars = 300

// Service implements interfaces.AnswerService: retrieve, synthesize, cite
type Service struct {
	retriever    interfaces.RetrievalService
	synthesizer  *Synthesizer
	snippetChars int
	logger       arbor.ILogger
}

// NewService creates a new answer service
func NewService(
	retriever interfaces.RetrievalService,
	synthesizer *Synthesizer,
	config *common.AnswerConfig,
	logger arbor.ILogger,
) *Service {
	snippetChars := DefaultSnippetChars
	if config != nil && config.SnippetChars > 0 {
		snippetChars = config.SnippetChars
	}
	return &Service{
		retriever:    retriever,
		synthesizer:  synthesizer,
		snippetChars: snippetChars,
		logger:       logger,
	}
}

var _ interfaces.AnswerService = (*Service)(nil)

// Answer retrieves up to topK articles for the question and returns the
// generated answer with one reference per retrieved article, in citation order.
func (s *Service) Answer(ctx context.Context, question string, topK int) (*models.Answer, error) {
	docs, err := s.retriever.Retrieve(ctx, question, topK)
	if err != nil {
		return nil, err
	}

	text, err := s.synthesizer.Synthesize(ctx, question, docs)
	if err != nil {
		s.logger.Error().Err(err).Int("documents", len(docs)).Msg("Answer generation failed")
		return nil, err
	}

	references := make([]models.Reference, 0, len(docs))
	for _, doc := range docs {
		references = append(references, models.NewReference(doc, s.snippetChars))
	}

	intent := retrieval.ClassifyIntent(question)
	s.logger.Info().
		Str("intent", string(intent)).
		Int("references", len(references)).
		Msg("Answered question")

	return &models.Answer{
		Question:   question,
		Answer:     text,
		Intent:     intent,
		References: references,
	}, nil
}
