package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Ingest
	mux.HandleFunc("/ingest", s.app.IngestHandler.StartHandler)        // POST - start sitemap ingest + re-index
	mux.HandleFunc("/ingest/{id}", s.app.IngestHandler.GetJobHandler) // GET - ingest job record

	// Question answering
	mux.HandleFunc("/answer", s.app.AnswerHandler.AnswerHandler)

	// System
	mux.HandleFunc("/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/version", s.app.APIHandler.VersionHandler)

	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}
