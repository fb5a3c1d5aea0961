package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/interfaces"
	"google.golang.org/genai"
)

// GeminiMaxEmbedTokens is the input limit of Gemini text embedding models
const GeminiMaxEmbedTokens = 2048

// geminiEmbedTokenBudget is what callers may send when counting with
// cl100k_base. Gemini's own tokenizer can split the same text into more
// tokens, so a quarter of the limit is held back.
const geminiEmbedTokenBudget = GeminiMaxEmbedTokens * 3 / 4

// GeminiProvider implements Embedder and Generator on the Gemini API
type GeminiProvider struct {
	client     *genai.Client
	model      string
	embedModel string
	retry      *RetryConfig
	logger     arbor.ILogger
}

// NewGeminiProvider creates a Gemini provider
func NewGeminiProvider(ctx context.Context, config *common.GeminiConfig, retry *RetryConfig, logger arbor.ILogger) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required (set GEMINI_API_KEY)")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client:     client,
		model:      config.Model,
		embedModel: config.EmbedModel,
		retry:      retry,
		logger:     logger,
	}, nil
}

var (
	_ interfaces.Embedder  = (*GeminiProvider)(nil)
	_ interfaces.Generator = (*GeminiProvider)(nil)
)

func (p *GeminiProvider) Name() string { return string(ProviderGemini) }

func (p *GeminiProvider) MaxInputTokens() int { return geminiEmbedTokenBudget }

func (p *GeminiProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := withRetry(ctx, p.retry, p.logger, p.Name(), func() (*genai.EmbedContentResponse, error) {
		return p.client.Models.EmbedContent(ctx, p.embedModel, contents, nil)
	})
	if err != nil {
		return nil, common.NewProviderError(p.Name(), "embed", err)
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, common.NewProviderError(p.Name(), "embed", fmt.Errorf("no embeddings returned"))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, e := range result.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}

func (p *GeminiProvider) Complete(ctx context.Context, req *interfaces.CompletionRequest) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	contents := []*genai.Content{genai.NewContentFromText(req.UserPrompt, genai.RoleUser)}

	resp, err := withRetry(ctx, p.retry, p.logger, p.Name(), func() (*genai.GenerateContentResponse, error) {
		return p.client.Models.GenerateContent(ctx, p.model, contents, config)
	})
	if err != nil {
		return "", common.NewProviderError(p.Name(), "complete", err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", common.NewProviderError(p.Name(), "complete", fmt.Errorf("empty response"))
	}

	return strings.TrimSpace(resp.Text()), nil
}
