package api

import (
	"net/http"

	"github.com/vytor/vocabquiz/internal/models"
)

func (s *Server) handleWords(w http.ResponseWriter, r *http.Request) {
	difficulty := models.Difficulty(r.URL.Query().Get("difficulty"))
	if difficulty == "" {
		difficulty = models.DifficultyAll
	}

	words, err := s.QuizService.Words(r.Context(), difficulty)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"words": words})
}
