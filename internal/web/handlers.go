package web

import (
	"context"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/talent/internal/core"
)

// handleDashboard renders the main page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Statistics(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	page, err := s.service.List(r.Context(), core.ListParams{})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.renderComponent(w, r, http.StatusOK,
		Layout("Candidates", Dashboard(stats, s.service.ExpectedFormat(), page)))
}

// handleCandidateTable renders the table fragment the dashboard reloads
// after each upload.
func (s *Server) handleCandidateTable(w http.ResponseWriter, r *http.Request) {
	p, err := s.parseListParams(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	page, err := s.service.List(r.Context(), p)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.renderComponent(w, r, http.StatusOK, CandidateTable(page))
}

// handleInfo describes the API.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"message": "Candidate intake API",
		"version": apiVersion,
		"health":  "/api/health",
		"format":  "/api/candidates/format",
	})
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string                   `json:"status"`
	Database  string                   `json:"database"`
	Uploads   core.UploadLimiterStatus `json:"uploads"`
	Timestamp time.Time                `json:"timestamp"`
}

// handleHealth reports whether the database answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    "ok",
		Database:  "up",
		Uploads:   s.service.UploadLimiterStatus(),
		Timestamp: time.Now().UTC(),
	}
	status := http.StatusOK

	if err := s.service.Health(ctx); err != nil {
		logFor(r).Error("health check failed", "error", err)
		resp.Status, resp.Database = "unavailable", "down"
		status = http.StatusServiceUnavailable
	}
	writeJSONStatus(w, status, resp)
}

// renderComponent writes c as HTML with status.
func (s *Server) renderComponent(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logFor(r).Error("render component", "error", err)
	}
}
