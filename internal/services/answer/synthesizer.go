package answer

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/interfaces"
	"github.com/ternarybob/blograg/internal/models"
)

const (
	DefaultContentChars = 1000
	DefaultMaxTokens    = 400
	DefaultTemperature  = float32(0.2)
)

// Synthesizer turns retrieved documents into a grounded, cited answer
type Synthesizer struct {
	generator    interfaces.Generator
	contentChars int
	maxTokens    int
	temperature  float32
	logger       arbor.ILogger
}

// NewSynthesizer creates a synthesizer from the [answer] config section
func NewSynthesizer(generator interfaces.Generator, config *common.AnswerConfig, logger arbor.ILogger) *Synthesizer {
	s := &Synthesizer{
		generator:    generator,
		contentChars: DefaultContentChars,
		maxTokens:    DefaultMaxTokens,
		temperature:  DefaultTemperature,
		logger:       logger,
	}
	if config != nil {
		if config.ContentChars > 0 {
			s.contentChars = config.ContentChars
		}
		if config.MaxTokens > 0 {
			s.maxTokens = config.MaxTokens
		}
		if config.Temperature != nil {
			s.temperature = *config.Temperature
		}
	}
	return s
}

// BuildPrompt renders the documents as numbered blocks, in the order given, and
// wraps them with the answering instructions.
func (s *Synthesizer) BuildPrompt(question string, docs []models.RetrievalResult) string {
	var context strings.Builder
	for i, doc := range docs {
		fmt.Fprintf(&context, documentBlockTemplate,
			i+1,
			doc.Title,
			doc.Author,
			doc.DatePublished,
			strings.Join(doc.Tags, ", "),
			doc.URL,
			models.TruncateRunes(doc.Text, s.contentChars),
		)
	}
	return fmt.Sprintf(userPromptTemplate, context.String(), question)
}

// Synthesize asks the generator for an answer grounded in docs.
// Generator failures surface as provider errors; there is no fallback answer.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, docs []models.RetrievalResult) (string, error) {
	prompt := s.BuildPrompt(question, docs)

	s.logger.Debug().
		Str("generator", s.generator.Name()).
		Int("documents", len(docs)).
		Int("prompt_length", len(prompt)).
		Msg("Synthesizing answer")

	text, err := s.generator.Complete(ctx, &interfaces.CompletionRequest{
		SystemPrompt: SystemPrompt,
		UserPrompt:   prompt,
		MaxTokens:    s.maxTokens,
		Temperature:  s.temperature,
	})
	if err != nil {
		if !common.IsProviderError(err) {
			err = common.NewProviderError(s.generator.Name(), "complete", err)
		}
		return "", err
	}

	return strings.TrimSpace(text), nil
}
