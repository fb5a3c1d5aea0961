package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "hello", TruncateRunes("hello world", 5))
	assert.Equal(t, "short", TruncateRunes("short", 300))
	assert.Equal(t, "", TruncateRunes("anything", 0))
	assert.Equal(t, "héll", TruncateRunes("héllo", 4))
	assert.Equal(t, "日本", TruncateRunes("日本語", 2))
}

func TestNewReference(t *testing.T) {
	score := 0.87
	result := RetrievalResult{
		Payload: Payload{
			URL:           "https://example.com/blog/a",
			Title:         "A",
			DatePublished: "2024-01-01T00:00:00",
			Author:        "Jane",
			Description:   "About A",
			Text:          strings.Repeat("x", 500),
		},
		Score: &score,
	}

	ref := NewReference(result, 300)

	assert.Equal(t, "A", ref.Title)
	assert.Equal(t, "https://example.com/blog/a", ref.URL)
	assert.Equal(t, &score, ref.Score)
	assert.Len(t, ref.Snippet, 300)
	assert.Equal(t, "2024-01-01T00:00:00", ref.DatePublished)
	assert.Equal(t, "Jane", ref.Author)
	assert.Equal(t, "About A", ref.Description)
}

func TestIntentIsDateOrdered(t *testing.T) {
	assert.True(t, IntentLatestFirst.IsDateOrdered())
	assert.True(t, IntentOldestFirst.IsDateOrdered())
	assert.False(t, IntentSemantic.IsDateOrdered())
}
