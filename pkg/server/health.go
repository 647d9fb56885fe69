package server

import (
	"net/http"
	"time"

	ephemerrors "github.com/NVIDIA/k8s-ephem/pkg/errors"
	"github.com/NVIDIA/k8s-ephem/pkg/serializer"
)

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	serializer.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
	})
}

// handleReady handles GET /ready. The server is ready once a report exists.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.ready() {
		serializer.RespondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "not_ready",
			Timestamp: time.Now().UTC(),
			Reason:    "no query has completed yet",
		})
		return
	}

	serializer.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC(),
	})
}

// handleReport handles GET /v1/report
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if s.source == nil {
		WriteError(w, r, http.StatusServiceUnavailable, ephemerrors.ErrCodeUnavailable,
			"no report available yet", true, nil)
		return
	}

	results, at, ok := s.source.Latest()
	if !ok {
		WriteError(w, r, http.StatusServiceUnavailable, ephemerrors.ErrCodeUnavailable,
			"no report available yet", true, nil)
		return
	}

	w.Header().Set("Last-Modified", at.UTC().Format(http.TimeFormat))
	serializer.RespondJSON(w, http.StatusOK, ReportResponse{
		Timestamp: at.UTC(),
		NodeCount: len(results),
		Nodes:     results,
	})
}
