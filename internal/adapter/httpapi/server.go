// Package httpapi exposes the screening pipeline over HTTP: a screening
// endpoint for on-demand runs plus health, readiness, and metrics routes.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/parcel-screening/internal/domain"
	"github.com/couchcryptid/parcel-screening/internal/pipeline"
)

// Screener runs a screening batch. Implemented by *pipeline.Pipeline.
type Screener interface {
	Run(ctx context.Context, programKey string, j domain.Jurisdiction) (*pipeline.Outcome, error)
	CheckReadiness(ctx context.Context) error
}

// Server exposes the screening API plus health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	screener   Screener
	logger     *slog.Logger
}

// NewServer creates the HTTP server with all routes wired.
func NewServer(addr string, screener Screener, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:        addr,
			Handler:     mux,
			ReadTimeout: 10 * time.Second,
			// Screening runs can take a while against live sources.
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		screener: screener,
		logger:   logger,
	}

	mux.HandleFunc("POST /screenings", s.handleScreening)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

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

type screeningRequest struct {
	Program string `json:"program"`
	County  string `json:"county"`
	State   string `json:"state"`
}

func (s *Server) handleScreening(w http.ResponseWriter, r *http.Request) {
	var req screeningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	req.Program = strings.TrimSpace(req.Program)
	req.County = strings.TrimSpace(req.County)
	req.State = strings.TrimSpace(req.State)
	if req.Program == "" || req.County == "" || req.State == "" {
		writeError(w, http.StatusBadRequest, "program, county, and state are required")
		return
	}

	outcome, err := s.screener.Run(r.Context(), req.Program, domain.Jurisdiction{
		County: req.County,
		State:  req.State,
	})
	if err != nil {
		s.writeRunError(w, req.Program, err)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// writeRunError maps pipeline failures onto HTTP statuses: unknown program is
// the caller's mistake, upstream source failures are a bad gateway.
func (s *Server) writeRunError(w http.ResponseWriter, program string, err error) {
	var notFound *domain.NotFoundError
	var sourceErr *domain.DataSourceError

	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &sourceErr):
		s.logger.Error("screening failed on upstream source", "program", program, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, pipeline.ErrNoProcessableRecords):
		s.logger.Error("screening produced no processable records", "program", program)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("screening failed", "program", program, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.screener.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
