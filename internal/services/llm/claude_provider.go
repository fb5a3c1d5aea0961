package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/interfaces"
)

// ClaudeProvider implements Generator on the Anthropic Messages API.
// Anthropic has no embedding endpoint, so it cannot back the embedder.
type ClaudeProvider struct {
	client anthropic.Client
	model  string
	retry  *RetryConfig
	logger arbor.ILogger
}

// NewClaudeProvider creates a Claude provider
func NewClaudeProvider(config *common.ClaudeConfig, retry *RetryConfig, logger arbor.ILogger) (*ClaudeProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required (set ANTHROPIC_API_KEY)")
	}

	return &ClaudeProvider{
		client: anthropic.NewClient(option.WithAPIKey(config.APIKey)),
		model:  config.Model,
		retry:  retry,
		logger: logger,
	}, nil
}

var _ interfaces.Generator = (*ClaudeProvider)(nil)

func (p *ClaudeProvider) Name() string { return string(ProviderClaude) }

func (p *ClaudeProvider) Complete(ctx context.Context, req *interfaces.CompletionRequest) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
		Temperature: anthropic.Float(float64(req.Temperature)),
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: req.SystemPrompt},
		}
	}

	resp, err := withRetry(ctx, p.retry, p.logger, p.Name(), func() (*anthropic.Message, error) {
		return p.client.Messages.New(ctx, params)
	})
	if err != nil {
		return "", common.NewProviderError(p.Name(), "complete", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return "", common.NewProviderError(p.Name(), "complete", fmt.Errorf("empty response"))
	}

	return strings.TrimSpace(text.String()), nil
}
