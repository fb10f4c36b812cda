package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(timeoutMiddleware(30 * time.Second))
	r.Use(s.identityMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Get("/profiles", s.handleProfiles)
	r.Post("/profiles", s.handleCreateProfile)
	r.Post("/profiles/{id}/select", s.handleSelectProfile)
	r.Post("/profiles/{id}/delete", s.handleDeleteProfile)

	r.Route("/api", func(r chi.Router) {
		r.Get("/words", s.handleWords)

		r.Group(func(r chi.Router) {
			r.Use(requireProfile)

			r.Get("/quiz", s.handleCurrentQuiz)
			r.Post("/quiz", s.handleStartQuiz)
			r.Delete("/quiz", s.handleResetQuiz)
			r.Post("/quiz/answer", s.handleAnswer)
			r.Post("/quiz/next", s.handleNext)
			r.Post("/quiz/finish", s.handleFinish)

			r.Get("/stats", s.handleStats)
			r.Get("/results", s.handleResults)
			r.Delete("/history", s.handleResetHistory)
		})
	})
	return r
}
