// Package server exposes time entries and the HTML report over HTTP.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Tiliavir/cwr/internal/config"
	"github.com/Tiliavir/cwr/internal/logging"
	"github.com/Tiliavir/cwr/internal/model"
	"github.com/Tiliavir/cwr/internal/pipeline"
	"github.com/Tiliavir/cwr/internal/render"
	"github.com/Tiliavir/cwr/internal/timecalc"
	"github.com/Tiliavir/cwr/internal/transform"
)

// Server handles HTTP requests
type Server struct {
	Router *chi.Mux
	source pipeline.Source
	report config.ReportConfig
}

// NewServer wires the routes for entries fetched from src.
func NewServer(src pipeline.Source, report config.ReportConfig) *Server {
	s := &Server{source: src, report: report}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: logging.Log, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/health", s.healthCheck)
	r.Get("/time-entries", s.getTimeEntries)
	r.Get("/report.html", s.getReport)

	s.Router = r
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "cwr",
	})
}

// getTimeEntries returns the raw entries between startDate and endDate.
// Upstream failures produce an empty list.
func (s *Server) getTimeEntries(w http.ResponseWriter, r *http.Request) {
	entries, ok := s.fetch(w, r)
	if !ok {
		return
	}
	if entries == nil {
		entries = []model.RawEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// getReport renders the HTML report for startDate to endDate.
func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	entries, ok := s.fetch(w, r)
	if !ok {
		return
	}
	html, err := render.HTML(transform.NormalizeAll(entries), render.Meta{
		Vendor:      s.report.Vendor,
		Customer:    s.report.Customer,
		AccountID:   s.report.AccountID,
		GeneratedAt: time.Now().In(timecalc.Auckland()),
	})
	if err != nil {
		logging.Log.Errorf("rendering report: %v", err)
		http.Error(w, "Error rendering report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(html)
}

func (s *Server) fetch(w http.ResponseWriter, r *http.Request) ([]model.RawEntry, bool) {
	from, to, err := parseRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return nil, false
	}
	entries, err := pipeline.Fetch(r.Context(), s.source, from, to, s.report.AccountID)
	if err != nil {
		http.Error(w, "Request cancelled", http.StatusServiceUnavailable)
		return nil, false
	}
	return entries, true
}

// parseRange reads startDate and endDate as ISO timestamps or plain dates
// and converts them to the report zone.
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	from, err := parseParam(r, "startDate")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseParam(r, "endDate")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("endDate is before startDate")
	}
	return from, to, nil
}

func parseParam(r *http.Request, name string) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, fmt.Errorf("missing %s", name)
	}
	if t, ok := timecalc.ParseUTC(v); ok {
		return timecalc.InReportZone(t), nil
	}
	if t, err := timecalc.ParseDate(v, timecalc.Auckland()); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid %s %q", name, v)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Log.Errorf("encoding response: %v", err)
	}
}
