package interfaces

import (
	"context"
)

// Embedder maps text to fixed-length vectors
type Embedder interface {
	// Embed returns one vector per input, in input order
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// MaxInputTokens is the largest input the provider accepts
	MaxInputTokens() int
	Name() string
}

// CompletionRequest is a single-turn generation request
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float32
}

// Generator produces natural-language completions
type Generator interface {
	Complete(ctx context.Context, req *CompletionRequest) (string, error)
	Name() string
}

// Tokenizer splits text on the same boundaries as the embedding provider
type Tokenizer interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// EmbeddingService embeds text after truncating it to the provider's token budget
type EmbeddingService interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	MaxInputTokens() int
}
