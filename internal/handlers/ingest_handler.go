package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/interfaces"
	"github.com/ternarybob/blograg/internal/services/ingest"
)

// IngestHandler starts and reports sitemap ingest jobs
type IngestHandler struct {
	ingestService interfaces.IngestService
	logger        arbor.ILogger
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(ingestService interfaces.IngestService, logger arbor.ILogger) *IngestHandler {
	return &IngestHandler{
		ingestService: ingestService,
		logger:        logger,
	}
}

// StartHandler handles POST /ingest. The run continues in the background.
func (h *IngestHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	job, err := h.ingestService.Start(r.Context(), ingest.TriggerAPI)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to start ingest")
		return
	}

	WriteStarted(w, job.ID)
}

// GetJobHandler handles GET /ingest/{id}
func (h *IngestHandler) GetJobHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	job, err := h.ingestService.GetJob(r.Context(), id)
	if err != nil {
		WriteServiceError(w, h.logger, err, "Failed to get ingest job")
		return
	}

	WriteJSON(w, http.StatusOK, job)
}
