package api

import (
	"context"

	"github.com/vytor/vocabquiz/internal/jobs"
	"github.com/vytor/vocabquiz/internal/services"
)

// TokenVerifier resolves a bearer token to the subject it was issued for.
type TokenVerifier interface {
	Subject(token string) (string, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	ProfileService services.ProfileService
	QuizService    services.QuizService
	ResultsService services.ResultsService
	ResultQueue    jobs.ResultQueue
	// Verifier is optional; without it bearer tokens are rejected and only
	// the profile cookie identifies a user.
	Verifier    TokenVerifier
	DB          Pinger
	CORSOrigins []string
}
