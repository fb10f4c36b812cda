package api

import (
	"net/http"

	"github.com/vytor/vocabquiz/internal/logger"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.ResultsService.GetStats(r.Context(), profileFromContext(r.Context()).ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.ResultsService.ListResults(r.Context(), profileFromContext(r.Context()).ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleResetHistory(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	if err := s.ResultsService.ResetHistory(r.Context(), profile.ID); err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("history reset for %s", profile.Username)
	w.WriteHeader(http.StatusNoContent)
}
