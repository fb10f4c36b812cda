package api

import (
	"net/http"
	"strconv"

	"github.com/vytor/vocabquiz/internal/logger"
	"github.com/vytor/vocabquiz/internal/models"
)

func (s *Server) handleStartQuiz(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var req models.StartQuizRequest
	if err := decodeJSON(r, &req, true); err != nil {
		handleError(w, r, err)
		return
	}

	view, err := s.QuizService.Start(r.Context(), profile.ID, req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, view)
}

func (s *Server) handleCurrentQuiz(w http.ResponseWriter, r *http.Request) {
	view, err := s.QuizService.Current(r.Context(), profileFromContext(r.Context()).ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var req models.AnswerRequest
	if err := decodeJSON(r, &req, false); err != nil {
		handleError(w, r, err)
		return
	}

	view, err := s.QuizService.Answer(r.Context(), profile.ID, *req.Index, req.Answer)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	view, err := s.QuizService.Next(r.Context(), profileFromContext(r.Context()).ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

// handleFinish closes the session and saves the result through the queue.
// By default it waits for the save; ?detach=true answers as soon as the save
// is queued. A failed save is logged and reported as saved=false.
func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	log := logger.FromContext(r.Context())

	detach, _ := strconv.ParseBool(r.URL.Query().Get("detach"))

	completed, err := s.QuizService.Finish(r.Context(), profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	resp := models.FinishResponse{Summary: completed.Summary}

	pending, err := s.ResultQueue.EnqueueResult(r.Context(), profile.ID, *completed)
	if err != nil {
		log.Error("failed to queue result for session %s: %v", completed.Summary.SessionID, err)
		writeJSON(w, r, http.StatusOK, resp)
		return
	}

	if detach {
		resp.Detached = true
		writeJSON(w, r, http.StatusAccepted, resp)
		return
	}

	result, err := pending.Wait(r.Context())
	if err != nil {
		log.Error("result for session %s not saved: %v", completed.Summary.SessionID, err)
		writeJSON(w, r, http.StatusOK, resp)
		return
	}

	resp.Saved = true
	resp.Result = result
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleResetQuiz(w http.ResponseWriter, r *http.Request) {
	if err := s.QuizService.Reset(r.Context(), profileFromContext(r.Context()).ID); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
