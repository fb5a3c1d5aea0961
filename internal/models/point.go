package models

import (
	"time"
)

// Payload is the denormalized article copy stored alongside each vector
type Payload struct {
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	DatePublished string   `json:"date_published"`
	DateModified  string   `json:"date_modified"`
	Author        string   `json:"author"`
	Description   string   `json:"description"`
	Tags          []string `json:"tags"`
	Text          string   `json:"text"`
}

// Point is one vector index entry
type Point struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload Payload   `json:"payload"`
}

// SearchHit is a nearest-neighbour match returned by a vector index
type SearchHit struct {
	ID      string
	Score   float64
	Payload Payload
}

// ArticlePayload projects an article onto the payload stored in the vector index
func ArticlePayload(a *Article) Payload {
	p := Payload{
		URL:           a.URL,
		Title:         a.Title,
		DatePublished: a.PublishedString(),
		Author:        a.Author,
		Description:   a.Description,
		Tags:          append([]string{}, a.Tags...),
		Text:          a.Text,
	}
	if a.DateModified != nil {
		p.DateModified = a.DateModified.UTC().Format(PayloadDateLayout)
	}
	return p
}

var payloadDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	PayloadDateLayout,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParsePayloadDate parses a stored publish date
func ParsePayloadDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range payloadDateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
