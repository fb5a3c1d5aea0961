package ingest

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
)

// SitemapNamespace is the namespace of sitemaps.org urlset and sitemapindex documents
const SitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// maxSitemapDepth bounds how far nested sitemap indexes are followed
const maxSitemapDepth = 2

type sitemapDocument struct {
	XMLName  xml.Name
	URLs     []sitemapLoc `xml:"url"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// ParseSitemap decodes a urlset or sitemapindex document. It returns the page
// locations of a urlset and the child sitemap locations of an index.
func ParseSitemap(data []byte) (pages []string, children []string, err error) {
	var doc sitemapDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to parse sitemap: %w", err)
	}
	if doc.XMLName.Space != "" && doc.XMLName.Space != SitemapNamespace {
		return nil, nil, fmt.Errorf("unexpected sitemap namespace: %s", doc.XMLName.Space)
	}

	switch doc.XMLName.Local {
	case "urlset":
		for _, u := range doc.URLs {
			if loc := strings.TrimSpace(u.Loc); loc != "" {
				pages = append(pages, loc)
			}
		}
	case "sitemapindex":
		for _, sm := range doc.Sitemaps {
			if loc := strings.TrimSpace(sm.Loc); loc != "" {
				children = append(children, loc)
			}
		}
	default:
		return nil, nil, fmt.Errorf("unexpected sitemap root element: %s", doc.XMLName.Local)
	}
	return pages, children, nil
}

// FetchSitemap returns the page URLs listed by the sitemap at sitemapURL that
// contain pathFilter, in document order and without duplicates. Sitemap
// indexes are followed.
func (s *Scraper) FetchSitemap(ctx context.Context, sitemapURL, pathFilter string) ([]string, error) {
	seen := make(map[string]bool)
	var urls []string
	if err := s.collectSitemap(ctx, sitemapURL, pathFilter, 0, seen, &urls); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("sitemap", sitemapURL).
		Str("filter", pathFilter).
		Int("urls", len(urls)).
		Msg("Sitemap fetched")
	return urls, nil
}

func (s *Scraper) collectSitemap(ctx context.Context, sitemapURL, pathFilter string, depth int, seen map[string]bool, urls *[]string) error {
	body, err := s.fetch(ctx, sitemapURL)
	if err != nil {
		return fmt.Errorf("failed to fetch sitemap %s: %w", sitemapURL, err)
	}

	pages, children, err := ParseSitemap(body)
	if err != nil {
		return err
	}

	for _, page := range pages {
		if pathFilter != "" && !strings.Contains(page, pathFilter) {
			continue
		}
		if seen[page] {
			continue
		}
		seen[page] = true
		*urls = append(*urls, page)
	}

	if depth >= maxSitemapDepth {
		if len(children) > 0 {
			s.logger.Warn().Str("sitemap", sitemapURL).Int("children", len(children)).Msg("Sitemap index nested too deep, skipping children")
		}
		return nil
	}
	for _, child := range children {
		if err := s.collectSitemap(ctx, child, pathFilter, depth+1, seen, urls); err != nil {
			return err
		}
	}
	return nil
}
