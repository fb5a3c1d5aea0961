package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/blograg/internal/common"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteStarted writes the 202 response for an accepted background job.
func WriteStarted(w http.ResponseWriter, jobID string) error {
	return WriteJSON(w, http.StatusAccepted, map[string]string{
		"status": "started",
		"job_id": jobID,
	})
}

// StatusForError maps a service error onto an HTTP status code.
func StatusForError(err error) int {
	switch {
	case common.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case common.IsProviderError(err):
		return http.StatusBadGateway
	case common.IsIndexError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError logs err and writes it with the status from StatusForError.
func WriteServiceError(w http.ResponseWriter, logger arbor.ILogger, err error, message string) {
	status := StatusForError(err)
	if logger != nil {
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Int("status", status).Msg(message)
		} else {
			logger.Warn().Err(err).Int("status", status).Msg(message)
		}
	}
	WriteError(w, status, err.Error())
}
