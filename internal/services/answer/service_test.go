package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/interfaces"
	"github.com/ternarybob/blograg/internal/models"
)

type mockRetriever struct {
	RetrieveFunc func(ctx context.Context, question string, topK int) ([]models.RetrievalResult, error)
}

func (m *mockRetriever) Retrieve(ctx context.Context, question string, topK int) ([]models.RetrievalResult, error) {
	return m.RetrieveFunc(ctx, question, topK)
}

func newTestService(retriever *mockRetriever, generator *mockGenerator) *Service {
	logger := arbor.NewLogger()
	return NewService(retriever, NewSynthesizer(generator, nil, logger), nil, logger)
}

func TestAnswer_References(t *testing.T) {
	score := 0.91
	docs := testDocs()
	docs[0].Score = &score
	docs[0].Description = "About one"

	var gotTopK int
	retriever := &mockRetriever{RetrieveFunc: func(ctx context.Context, question string, topK int) ([]models.RetrievalResult, error) {
		gotTopK = topK
		return docs, nil
	}}
	service := newTestService(retriever, &mockGenerator{})

	answer, err := service.Answer(context.Background(), "Tell me about RAG", 3)
	require.NoError(t, err)

	assert.Equal(t, 3, gotTopK)
	assert.Equal(t, "Tell me about RAG", answer.Question)
	assert.Equal(t, "An answer citing [1].", answer.Answer)
	assert.Equal(t, models.IntentSemantic, answer.Intent)
	require.Len(t, answer.References, 3)

	first := answer.References[0]
	assert.Equal(t, "One", first.Title)
	assert.Equal(t, "https://example.com/blog/one", first.URL)
	assert.Equal(t, &score, first.Score)
	assert.Equal(t, strings.Repeat("a", 300), first.Snippet)
	assert.Equal(t, "2024-01-02T00:00:00", first.DatePublished)
	assert.Equal(t, "Ann", first.Author)
	assert.Equal(t, "About one", first.Description)

	assert.Equal(t, "https://example.com/blog/two", answer.References[1].URL)
	assert.Nil(t, answer.References[1].Score)
	assert.Equal(t, "https://example.com/blog/three", answer.References[2].URL)
}

func TestAnswer_NoDocumentsStillGenerates(t *testing.T) {
	generator := &mockGenerator{}
	retriever := &mockRetriever{RetrieveFunc: func(ctx context.Context, question string, topK int) ([]models.RetrievalResult, error) {
		return []models.RetrievalResult{}, nil
	}}

	answer, err := newTestService(retriever, generator).Answer(context.Background(), "latest posts", 5)
	require.NoError(t, err)

	assert.NotNil(t, generator.last)
	assert.NotNil(t, answer.References)
	assert.Empty(t, answer.References)
	assert.Equal(t, models.IntentLatestFirst, answer.Intent)
}

func TestAnswer_RetrievalErrorSkipsGeneration(t *testing.T) {
	generator := &mockGenerator{}
	retriever := &mockRetriever{RetrieveFunc: func(ctx context.Context, question string, topK int) ([]models.RetrievalResult, error) {
		return nil, common.NewIndexError("blog_articles", "search", errors.New("unreachable"))
	}}

	_, err := newTestService(retriever, generator).Answer(context.Background(), "q", 5)
	assert.True(t, common.IsIndexError(err))
	assert.Nil(t, generator.last)
}

func TestAnswer_GenerationError(t *testing.T) {
	generator := &mockGenerator{CompleteFunc: func(ctx context.Context, req *interfaces.CompletionRequest) (string, error) {
		return "", errors.New("timeout")
	}}
	retriever := &mockRetriever{RetrieveFunc: func(ctx context.Context, question string, topK int) ([]models.RetrievalResult, error) {
		return testDocs(), nil
	}}

	answer, err := newTestService(retriever, generator).Answer(context.Background(), "q", 5)
	assert.Nil(t, answer)
	assert.True(t, common.IsProviderError(err))
}
