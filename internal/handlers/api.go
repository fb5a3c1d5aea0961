package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
)

type APIHandler struct {
	articles   ArticleCounter
	index      CollectionChecker
	scheduler  SchedulerStatusProvider
	collection string
	logger     arbor.ILogger
}

func NewAPIHandler(
	articles ArticleCounter,
	index CollectionChecker,
	scheduler SchedulerStatusProvider,
	collection string,
	logger arbor.ILogger,
) *APIHandler {
	return &APIHandler{
		articles:   articles,
		index:      index,
		scheduler:  scheduler,
		collection: collection,
		logger:     logger,
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.GetVersion(),
		"build":      common.GetBuild(),
		"git_commit": common.GetGitCommit(),
	})
}

// HealthHandler reports store and index reachability. An unreachable
// dependency turns the response into a 503 with status "degraded".
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ctx := r.Context()
	response := map[string]interface{}{
		"status":     "ok",
		"collection": h.collection,
	}
	statusCode := http.StatusOK

	if h.articles != nil {
		count, err := h.articles.Count(ctx)
		if err != nil {
			h.logger.Warn().Err(err).Msg("Health check: article store unavailable")
			response["status"] = "degraded"
			response["article_store_error"] = err.Error()
			statusCode = http.StatusServiceUnavailable
		} else {
			response["articles"] = count
		}
	}

	if h.index != nil {
		exists, err := h.index.CollectionExists(ctx, h.collection)
		if err != nil {
			h.logger.Warn().Err(err).Msg("Health check: vector index unavailable")
			response["status"] = "degraded"
			response["vector_index_error"] = err.Error()
			statusCode = http.StatusServiceUnavailable
		} else {
			response["collection_exists"] = exists
		}
	}

	if h.scheduler != nil {
		response["scheduler"] = h.scheduler.GetStatus()
	}

	WriteJSON(w, statusCode, response)
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"status": "error",
		"error":  "Not Found",
		"path":   r.URL.Path,
	})
}
