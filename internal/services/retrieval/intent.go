package retrieval

import (
	"regexp"

	"github.com/ternarybob/blograg/internal/models"
)

// intentRules are checked in order; the first matching pattern decides the intent
var intentRules = []struct {
	pattern *regexp.Regexp
	intent  models.Intent
}{
	{regexp.MustCompile(`(?i)latest|newest|most recent`), models.IntentLatestFirst},
	{regexp.MustCompile(`(?i)oldest|first`), models.IntentOldestFirst},
}

// ClassifyIntent decides whether a question asks for chronological ordering
// or is answered by semantic search.
func ClassifyIntent(question string) models.Intent {
	for _, rule := range intentRules {
		if rule.pattern.MatchString(question) {
			return rule.intent
		}
	}
	return models.IntentSemantic
}
