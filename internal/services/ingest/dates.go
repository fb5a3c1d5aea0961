package ingest

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// NormalizeDate parses a free-form date. Zone-less values are read as UTC.
// When the value cannot be parsed the trimmed input is returned as raw so it
// can still be stored.
func NormalizeDate(value string) (parsed *time.Time, raw string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ""
	}
	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return nil, value
	}
	return &t, ""
}
