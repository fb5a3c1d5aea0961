package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/interfaces"
)

// OpenAIMaxEmbedTokens is the input limit of the text-embedding-3 models
const OpenAIMaxEmbedTokens = 8191

// OpenAIProvider implements Embedder and Generator on the OpenAI API
type OpenAIProvider struct {
	client     *openai.Client
	model      string
	embedModel string
	retry      *RetryConfig
	logger     arbor.ILogger
}

// NewOpenAIProvider creates an OpenAI provider
func NewOpenAIProvider(config *common.OpenAIConfig, retry *RetryConfig, logger arbor.ILogger) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required (set OPENAI_API_KEY)")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      config.Model,
		embedModel: config.EmbedModel,
		retry:      retry,
		logger:     logger,
	}, nil
}

var (
	_ interfaces.Embedder  = (*OpenAIProvider)(nil)
	_ interfaces.Generator = (*OpenAIProvider)(nil)
)

func (p *OpenAIProvider) Name() string { return string(ProviderOpenAI) }

func (p *OpenAIProvider) MaxInputTokens() int { return OpenAIMaxEmbedTokens }

func (p *OpenAIProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := withRetry(ctx, p.retry, p.logger, p.Name(), func() (openai.EmbeddingResponse, error) {
		return p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts,
			Model: openai.EmbeddingModel(p.embedModel),
		})
	})
	if err != nil {
		return nil, common.NewProviderError(p.Name(), "embed", err)
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, common.NewProviderError(p.Name(), "embed", fmt.Errorf("embedding index %d out of range", d.Index))
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

func (p *OpenAIProvider) Complete(ctx context.Context, req *interfaces.CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserPrompt,
	})

	resp, err := withRetry(ctx, p.retry, p.logger, p.Name(), func() (openai.ChatCompletionResponse, error) {
		return p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       p.model,
			Messages:    messages,
			MaxTokens:   req.MaxTokens,
			Temperature: req.Temperature,
		})
	})
	if err != nil {
		return "", common.NewProviderError(p.Name(), "complete", err)
	}

	if len(resp.Choices) == 0 {
		return "", common.NewProviderError(p.Name(), "complete", fmt.Errorf("empty response"))
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
