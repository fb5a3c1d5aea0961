package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/httpclient"
	"github.com/ternarybob/blograg/internal/models"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

// maxPageBytes caps how much of a response body is read
const maxPageBytes = 10 << 20

// bodySelectors are tried in order; the first present element supplies the article text
var bodySelectors = []string{"article", "main", "body"}

// Scraper fetches sitemaps and blog pages, one request per delay interval
type Scraper struct {
	client  *http.Client
	limiter *rate.Limiter
	logger  arbor.ILogger
}

// NewScraper creates a scraper from the [ingest] config section
func NewScraper(config *common.IngestConfig, logger arbor.ILogger) (*Scraper, error) {
	delay, err := common.ParseDuration(config.RequestDelay, 200*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("invalid ingest.request_delay: %w", err)
	}
	timeout, err := common.ParseDuration(config.RequestTimeout, 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid ingest.request_timeout: %w", err)
	}

	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}

	return &Scraper{
		client:  httpclient.NewClientWithUserAgent(timeout, config.UserAgent),
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}, nil
}

func (s *Scraper) fetch(ctx context.Context, url string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
}

// ScrapeArticle fetches one blog page and extracts its article fields
func (s *Scraper) ScrapeArticle(ctx context.Context, url string) (*models.Article, error) {
	body, err := s.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}

	article, err := ParseArticle(url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("url", url).
		Str("title", article.Title).
		Int("text_length", len(article.Text)).
		Msg("Scraped article")
	return article, nil
}

// ParseArticle extracts an article from an HTML page. Metadata comes from the
// first JSON-LD object that carries datePublished.
func ParseArticle(url string, r io.Reader) (*models.Article, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML for %s: %w", url, err)
	}

	article := &models.Article{
		URL:   url,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	if meta := findArticleMetadata(doc); meta != nil {
		article.DatePublished, article.DatePublishedRaw = NormalizeDate(stringValue(meta["datePublished"]))
		article.DateModified, _ = NormalizeDate(stringValue(meta["dateModified"]))
		article.Author = authorName(meta["author"])
		article.Description = strings.TrimSpace(stringValue(meta["description"]))
		article.Tags = keywordList(meta["keywords"])
	}

	if article.Description == "" {
		article.Description = strings.TrimSpace(doc.Find("meta[name='description']").AttrOr("content", ""))
	}
	if len(article.Tags) == 0 {
		article.Tags = metaTags(doc)
	}

	for _, selector := range bodySelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			article.Text = extractText(sel)
			break
		}
	}

	return article, nil
}

// findArticleMetadata returns the first JSON-LD node with a datePublished key.
// Top-level arrays and @graph containers are searched too.
func findArticleMetadata(doc *goquery.Document) map[string]any {
	var found map[string]any
	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(sel.Text()), &data); err != nil {
			return true
		}
		found = findDatedNode(data)
		return found == nil
	})
	return found
}

func findDatedNode(data any) map[string]any {
	switch v := data.(type) {
	case map[string]any:
		if _, ok := v["datePublished"]; ok {
			return v
		}
		if graph, ok := v["@graph"]; ok {
			return findDatedNode(graph)
		}
	case []any:
		for _, item := range v {
			if node := findDatedNode(item); node != nil {
				return node
			}
		}
	}
	return nil
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// authorName handles author given as a Person object, a plain string, or a list of either
func authorName(v any) string {
	switch a := v.(type) {
	case string:
		return strings.TrimSpace(a)
	case map[string]any:
		return strings.TrimSpace(stringValue(a["name"]))
	case []any:
		var names []string
		for _, item := range a {
			if name := authorName(item); name != "" {
				names = append(names, name)
			}
		}
		return strings.Join(names, ", ")
	}
	return ""
}

// keywordList accepts a comma separated string or an array of strings
func keywordList(v any) []string {
	var raw []string
	switch k := v.(type) {
	case string:
		raw = strings.Split(k, ",")
	case []any:
		for _, item := range k {
			raw = append(raw, stringValue(item))
		}
	}
	return uniqueTags(raw)
}

func metaTags(doc *goquery.Document) []string {
	var raw []string
	doc.Find("meta[property='article:tag']").Each(func(_ int, sel *goquery.Selection) {
		raw = append(raw, sel.AttrOr("content", ""))
	})
	if keywords, ok := doc.Find("meta[name='keywords']").Attr("content"); ok {
		raw = append(raw, strings.Split(keywords, ",")...)
	}
	return uniqueTags(raw)
}

func uniqueTags(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	tags := make([]string, 0, len(raw))
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

// extractText joins the visible text nodes under sel with single spaces
func extractText(sel *goquery.Selection) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				parts = append(parts, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}
