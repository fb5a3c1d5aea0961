package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/interfaces"
)

// ProviderType represents the AI provider type
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderGemini ProviderType = "gemini"
	ProviderClaude ProviderType = "claude"
)

// ProviderFactory builds the configured embedder and generator, sharing one
// client per provider when both roles use the same backend.
type ProviderFactory struct {
	config *common.Config
	logger arbor.ILogger
	retry  *RetryConfig

	openai *OpenAIProvider
	gemini *GeminiProvider
	claude *ClaudeProvider
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(config *common.Config, logger arbor.ILogger) *ProviderFactory {
	return &ProviderFactory{
		config: config,
		logger: logger,
		retry:  NewRetryConfig(config.LLM.MaxRetries),
	}
}

// NewEmbedder returns the embedder selected by llm.embed_provider
func (f *ProviderFactory) NewEmbedder(ctx context.Context) (interfaces.Embedder, error) {
	provider := ProviderType(f.config.LLM.EmbedProvider)
	f.logger.Debug().Str("provider", string(provider)).Msg("Creating embedding provider")

	var (
		embedder interfaces.Embedder
		err      error
	)
	switch provider {
	case ProviderOpenAI:
		embedder, err = asEmbedder(f.openAI())
	case ProviderGemini:
		embedder, err = asEmbedder(f.geminiProvider(ctx))
	default:
		return nil, fmt.Errorf("unsupported embed provider: %s", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s embedder: %w", provider, err)
	}
	return embedder, nil
}

// NewGenerator returns the generator selected by llm.chat_provider
func (f *ProviderFactory) NewGenerator(ctx context.Context) (interfaces.Generator, error) {
	provider := ProviderType(f.config.LLM.ChatProvider)
	f.logger.Debug().Str("provider", string(provider)).Msg("Creating answer provider")

	var (
		generator interfaces.Generator
		err       error
	)
	switch provider {
	case ProviderOpenAI:
		generator, err = asGenerator(f.openAI())
	case ProviderGemini:
		generator, err = asGenerator(f.geminiProvider(ctx))
	case ProviderClaude:
		generator, err = asGenerator(f.claudeProvider())
	default:
		return nil, fmt.Errorf("unsupported chat provider: %s", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s generator: %w", provider, err)
	}
	return generator, nil
}

func (f *ProviderFactory) openAI() (*OpenAIProvider, error) {
	if f.openai == nil {
		p, err := NewOpenAIProvider(&f.config.OpenAI, f.retry, f.logger)
		if err != nil {
			return nil, err
		}
		f.openai = p
	}
	return f.openai, nil
}

func (f *ProviderFactory) geminiProvider(ctx context.Context) (*GeminiProvider, error) {
	if f.gemini == nil {
		p, err := NewGeminiProvider(ctx, &f.config.Gemini, f.retry, f.logger)
		if err != nil {
			return nil, err
		}
		f.gemini = p
	}
	return f.gemini, nil
}

func (f *ProviderFactory) claudeProvider() (*ClaudeProvider, error) {
	if f.claude == nil {
		p, err := NewClaudeProvider(&f.config.Claude, f.retry, f.logger)
		if err != nil {
			return nil, err
		}
		f.claude = p
	}
	return f.claude, nil
}

// asEmbedder keeps a failed constructor from yielding a non-nil interface around a nil pointer
func asEmbedder(p interfaces.Embedder, err error) (interfaces.Embedder, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}

func asGenerator(p interfaces.Generator, err error) (interfaces.Generator, error) {
	if err != nil {
		return nil, err
	}
	return p, nil
}
