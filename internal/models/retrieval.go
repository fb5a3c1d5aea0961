package models

// Intent is the retrieval strategy derived from a question
type Intent string

const (
	IntentLatestFirst Intent = "latest_first"
	IntentOldestFirst Intent = "oldest_first"
	IntentSemantic    Intent = "semantic"
)

// IsDateOrdered reports whether the intent is answered by chronological ordering
func (i Intent) IsDateOrdered() bool {
	return i == IntentLatestFirst || i == IntentOldestFirst
}

// RetrievalResult is a payload plus its similarity score.
// Score is nil for date-ordered results.
type RetrievalResult struct {
	Payload
	Score *float64 `json:"score"`
}

// ToResult wraps a payload as a retrieval result
func (p Payload) ToResult(score *float64) RetrievalResult {
	return RetrievalResult{Payload: p, Score: score}
}
