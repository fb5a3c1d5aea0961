package embeddings

import (
	"fmt"
	"strings"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
	"github.com/ternarybob/blograg/internal/interfaces"
)

// DefaultEncoding is the BPE scheme of OpenAI's text-embedding-3 models
const DefaultEncoding = "cl100k_base"

// TiktokenTokenizer implements interfaces.Tokenizer with an embedded BPE table
type TiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenTokenizer loads the named encoding from the bundled offline tables
func NewTiktokenTokenizer(encoding string) (*TiktokenTokenizer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}

	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())

	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer %s: %w", encoding, err)
	}
	return &TiktokenTokenizer{enc: enc}, nil
}

func (t *TiktokenTokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

func (t *TiktokenTokenizer) Decode(tokens []int) string {
	return t.enc.Decode(tokens)
}

// Truncate cuts text to at most maxTokens tokens on token boundaries.
// Text already within budget is returned unchanged.
func Truncate(tokenizer interfaces.Tokenizer, text string, maxTokens int) string {
	if maxTokens <= 0 || text == "" {
		return text
	}

	tokens := tokenizer.Encode(text)
	if len(tokens) <= maxTokens {
		return text
	}

	// A cut can land inside a multi-byte rune; drop the dangling bytes
	return strings.ToValidUTF8(tokenizer.Decode(tokens[:maxTokens]), "")
}
