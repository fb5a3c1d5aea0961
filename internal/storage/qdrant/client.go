package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/httpclient"
	"github.com/ternarybob/blograg/internal/interfaces"
	"github.com/ternarybob/blograg/internal/models"
)

// scrollPageSize bounds a single scroll request; Scroll pages until its limit
const scrollPageSize = 256

var errNotFound = errors.New("not found")

// Client is a minimal Qdrant REST client implementing interfaces.VectorIndex
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  arbor.ILogger
}

// NewClient creates a Qdrant client from config
func NewClient(config *common.QdrantConfig, logger arbor.ILogger) (*Client, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("qdrant url is required")
	}
	if _, err := url.Parse(config.URL); err != nil {
		return nil, fmt.Errorf("invalid qdrant url: %w", err)
	}

	timeout, err := common.ParseDuration(config.Timeout, 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid qdrant timeout: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(config.URL, "/"),
		apiKey:  config.APIKey,
		http:    httpclient.NewDefaultHTTPClient(timeout),
		logger:  logger,
	}, nil
}

var _ interfaces.VectorIndex = (*Client)(nil)

type collectionInfo struct {
	Result struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size     int    `json:"size"`
					Distance string `json:"distance"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

func (c *Client) CollectionExists(ctx context.Context, collection string) (bool, error) {
	err := c.do(ctx, http.MethodGet, c.collectionPath(collection), nil, nil)
	if errors.Is(err, errNotFound) {
		return false, nil
	}
	if err != nil {
		return false, common.NewIndexError(collection, "get collection", err)
	}
	return true, nil
}

func (c *Client) CreateCollection(ctx context.Context, collection string, dimension int, distance string) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": distance,
		},
	}

	err := c.do(ctx, http.MethodPut, c.collectionPath(collection), body, nil)
	var statusErr *statusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusConflict {
		// Created concurrently by another indexing run
		c.logger.Debug().Str("collection", collection).Msg("Collection already exists")
		return nil
	}
	if err != nil {
		return common.NewIndexError(collection, "create collection", err)
	}

	c.logger.Info().Str("collection", collection).Int("dimension", dimension).Msg("Created Qdrant collection")
	return nil
}

func (c *Client) CollectionDimension(ctx context.Context, collection string) (int, error) {
	var info collectionInfo
	if err := c.do(ctx, http.MethodGet, c.collectionPath(collection), nil, &info); err != nil {
		return 0, common.NewIndexError(collection, "get collection", err)
	}
	return info.Result.Config.Params.Vectors.Size, nil
}

type pointStruct struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload models.Payload `json:"payload"`
}

func (c *Client) Upsert(ctx context.Context, collection string, points []models.Point) error {
	body := struct {
		Points []pointStruct `json:"points"`
	}{Points: make([]pointStruct, len(points))}

	for i, p := range points {
		body.Points[i] = pointStruct{ID: p.ID, Vector: p.Vector, Payload: p.Payload}
	}

	if err := c.do(ctx, http.MethodPut, c.collectionPath(collection)+"/points?wait=true", body, nil); err != nil {
		return common.NewIndexError(collection, "upsert", err)
	}
	return nil
}

type scoredPoint struct {
	ID      any            `json:"id"`
	Score   float64        `json:"score"`
	Payload models.Payload `json:"payload"`
}

func (c *Client) Search(ctx context.Context, collection string, vector []float32, limit int) ([]models.SearchHit, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}

	var resp struct {
		Result []scoredPoint `json:"result"`
	}
	if err := c.do(ctx, http.MethodPost, c.collectionPath(collection)+"/points/search", body, &resp); err != nil {
		return nil, common.NewIndexError(collection, "search", err)
	}

	hits := make([]models.SearchHit, len(resp.Result))
	for i, r := range resp.Result {
		hits[i] = models.SearchHit{
			ID:      fmt.Sprint(r.ID),
			Score:   r.Score,
			Payload: r.Payload,
		}
	}
	return hits, nil
}

func (c *Client) Scroll(ctx context.Context, collection string, limit int) ([]models.Payload, error) {
	var payloads []models.Payload
	var offset any

	for {
		pageSize := scrollPageSize
		if limit > 0 && limit-len(payloads) < pageSize {
			pageSize = limit - len(payloads)
		}
		if pageSize <= 0 {
			break
		}

		body := map[string]any{
			"limit":        pageSize,
			"with_payload": true,
			"with_vector":  false,
		}
		if offset != nil {
			body["offset"] = offset
		}

		var resp struct {
			Result struct {
				Points         []scoredPoint `json:"points"`
				NextPageOffset any           `json:"next_page_offset"`
			} `json:"result"`
		}
		if err := c.do(ctx, http.MethodPost, c.collectionPath(collection)+"/points/scroll", body, &resp); err != nil {
			return nil, common.NewIndexError(collection, "scroll", err)
		}

		for _, p := range resp.Result.Points {
			payloads = append(payloads, p.Payload)
		}

		offset = resp.Result.NextPageOffset
		if offset == nil || len(resp.Result.Points) == 0 {
			break
		}
	}

	if payloads == nil {
		payloads = []models.Payload{}
	}
	return payloads, nil
}

func (c *Client) collectionPath(collection string) string {
	return "/collections/" + url.PathEscape(collection)
}

type statusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant %s %s failed: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("qdrant %s %s: %w", method, path, errNotFound)
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &statusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode qdrant response: %w", err)
		}
	}
	return nil
}
