// Package httpapi exposes the service's operational surface over HTTP:
// liveness, readiness with last detection-run detail, and Prometheus metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/geodesylab/slowslip/internal/pipeline"
)

// StatusSource supplies the latest detection-cycle snapshot.
type StatusSource interface {
	Status() pipeline.Status
}

// readyResponse is the /readyz body. Run fields are present only once a
// catalog has been published.
type readyResponse struct {
	Status        string     `json:"status"`
	Reason        string     `json:"reason,omitempty"`
	LastRun       *time.Time `json:"last_run,omitempty"`
	Stations      int        `json:"stations,omitempty"`
	CatalogEvents int        `json:"catalog_events,omitempty"`
	Warnings      int        `json:"warnings,omitempty"`
}

// Server serves /healthz, /readyz, and /metrics.
type Server struct {
	httpServer *http.Server
	source     StatusSource
	logger     *slog.Logger
}

// NewServer wires the routes onto a plain ServeMux.
func NewServer(addr string, source StatusSource, logger *slog.Logger) *Server {
	s := &Server{source: source, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleReady reports readiness plus the last run's detection summary, so an
// operator hitting the probe sees what the service actually produced.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	status := s.source.Status()
	if !status.Ready {
		s.writeJSON(w, http.StatusServiceUnavailable, readyResponse{
			Status: "not ready",
			Reason: "no catalog published yet",
		})
		return
	}
	s.writeJSON(w, http.StatusOK, readyResponse{
		Status:        "ready",
		LastRun:       &status.LastRun,
		Stations:      status.Stations,
		CatalogEvents: status.CatalogEvents,
		Warnings:      status.Warnings,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encoding http response", "error", err)
	}
}
