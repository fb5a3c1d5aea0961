package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/blograg/internal/models"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		question string
		want     models.Intent
	}{
		{"What are the latest posts?", models.IntentLatestFirst},
		{"Show me the NEWEST article", models.IntentLatestFirst},
		{"What is the most recent post about React?", models.IntentLatestFirst},
		{"Show me the oldest articles", models.IntentOldestFirst},
		{"What was the first blog post?", models.IntentOldestFirst},
		{"Tell me about FastAPI", models.IntentSemantic},
		{"How do I validate schemas in Node?", models.IntentSemantic},
		{"", models.IntentSemantic},
		// Latest rules are checked first
		{"Is the latest post newer than the first one?", models.IntentLatestFirst},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyIntent(tt.question))
		})
	}
}
