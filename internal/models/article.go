package models

import (
	"strings"
	"time"
)

// PayloadDateLayout is the layout used for dates stored in point payloads
const PayloadDateLayout = "2006-01-02T15:04:05"

// Article is a scraped blog post keyed by its URL
type Article struct {
	URL              string     `json:"url"`
	Title            string     `json:"title"`
	Author           string     `json:"author"`
	Description      string     `json:"description"`
	DatePublished    *time.Time `json:"date_published,omitempty"`
	DatePublishedRaw string     `json:"date_published_raw,omitempty"` // Source value when it could not be parsed
	DateModified     *time.Time `json:"date_modified,omitempty"`
	Tags             []string   `json:"tags"`
	Text             string     `json:"text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PublishedString renders the publish date the way it is stored in payloads.
// A date that could not be parsed at ingest is passed through as-is.
func (a *Article) PublishedString() string {
	if a.DatePublished != nil {
		return a.DatePublished.UTC().Format(PayloadDateLayout)
	}
	return a.DatePublishedRaw
}

// CompositeText joins the fields that are embedded for an article, one per line
func (a *Article) CompositeText() string {
	return strings.Join([]string{
		a.Title,
		a.Author,
		a.PublishedString(),
		a.Description,
		strings.Join(a.Tags, " "),
		a.Text,
	}, "\n")
}
