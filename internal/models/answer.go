package models

// Reference is one cited article in an answer response
type Reference struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Score         *float64 `json:"score"`
	Snippet       string   `json:"snippet"`
	DatePublished string   `json:"date_published"`
	Author        string   `json:"author"`
	Description   string   `json:"description"`
}

// Answer is the grounded response to a question
type Answer struct {
	Question   string      `json:"question"`
	Answer     string      `json:"answer"`
	Intent     Intent      `json:"intent"`
	References []Reference `json:"references"`
}

// NewReference builds a reference from a retrieval result, keeping the first snippetChars runes of text
func NewReference(r RetrievalResult, snippetChars int) Reference {
	return Reference{
		Title:         r.Title,
		URL:           r.URL,
		Score:         r.Score,
		Snippet:       TruncateRunes(r.Text, snippetChars),
		DatePublished: r.DatePublished,
		Author:        r.Author,
		Description:   r.Description,
	}
}

// TruncateRunes returns the first n runes of s
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
