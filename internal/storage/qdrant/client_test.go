package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
	"github.com/ternarybob/blograg/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&common.QdrantConfig{URL: server.URL + "/", APIKey: "secret"}, arbor.NewLogger())
	require.NoError(t, err)
	return client
}

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient(&common.QdrantConfig{}, arbor.NewLogger())
	assert.Error(t, err)

	_, err = NewClient(&common.QdrantConfig{URL: "http://localhost:6333", Timeout: "soon"}, arbor.NewLogger())
	assert.Error(t, err)
}

func TestCollectionExists(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		switch r.URL.Path {
		case "/collections/blog_articles":
			w.Write([]byte(`{"result":{"config":{"params":{"vectors":{"size":1536,"distance":"Cosine"}}}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status":{"error":"Not found"}}`))
		}
	})
	ctx := context.Background()

	exists, err := client.CollectionExists(ctx, "blog_articles")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = client.CollectionExists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)

	dim, err := client.CollectionDimension(ctx, "blog_articles")
	require.NoError(t, err)
	assert.Equal(t, 1536, dim)
}

func TestCollectionExists_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.CollectionExists(context.Background(), "blog_articles")
	assert.True(t, common.IsIndexError(err))
}

func TestCreateCollection(t *testing.T) {
	var body map[string]map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"result":true}`))
	})

	require.NoError(t, client.CreateCollection(context.Background(), "blog_articles", 1536, "Cosine"))
	assert.Equal(t, float64(1536), body["vectors"]["size"])
	assert.Equal(t, "Cosine", body["vectors"]["distance"])
}

func TestCreateCollection_ConflictIsNoop(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	assert.NoError(t, client.CreateCollection(context.Background(), "blog_articles", 3, "Cosine"))
}

func TestUpsertAndSearch(t *testing.T) {
	var upserted struct {
		Points []pointStruct `json:"points"`
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/collections/blog_articles/points":
			assert.Equal(t, "true", r.URL.Query().Get("wait"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&upserted))
			w.Write([]byte(`{"result":{"status":"completed"}}`))
		case "/collections/blog_articles/points/search":
			w.Write([]byte(`{"result":[{"id":"abc","score":0.93,"payload":{"url":"https://example.com/blog/a","title":"A","tags":["go"]}}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	ctx := context.Background()

	err := client.Upsert(ctx, "blog_articles", []models.Point{
		{ID: "abc", Vector: []float32{0.1, 0.2}, Payload: models.Payload{URL: "https://example.com/blog/a"}},
	})
	require.NoError(t, err)
	require.Len(t, upserted.Points, 1)
	assert.Equal(t, "abc", upserted.Points[0].ID)

	hits, err := client.Search(ctx, "blog_articles", []float32{0.1, 0.2}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "abc", hits[0].ID)
	assert.InDelta(t, 0.93, hits[0].Score, 1e-9)
	assert.Equal(t, "A", hits[0].Payload.Title)
	assert.Equal(t, []string{"go"}, hits[0].Payload.Tags)
}

func TestScroll_Pages(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		calls++
		if _, ok := body["offset"]; !ok {
			w.Write([]byte(`{"result":{"points":[{"id":1,"payload":{"title":"one"}},{"id":2,"payload":{"title":"two"}}],"next_page_offset":3}}`))
			return
		}
		assert.Equal(t, float64(3), body["offset"])
		w.Write([]byte(`{"result":{"points":[{"id":3,"payload":{"title":"three"}}],"next_page_offset":null}}`))
	})

	payloads, err := client.Scroll(context.Background(), "blog_articles", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, payloads, 3)
	assert.Equal(t, "three", payloads[2].Title)
}

func TestScroll_Limit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(1), body["limit"])
		w.Write([]byte(`{"result":{"points":[{"id":1,"payload":{"title":"one"}}],"next_page_offset":2}}`))
	})

	payloads, err := client.Scroll(context.Background(), "blog_articles", 1)
	require.NoError(t, err)
	assert.Len(t, payloads, 1)
}
