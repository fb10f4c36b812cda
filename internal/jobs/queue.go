package jobs

import (
	"context"

	"github.com/vytor/vocabquiz/internal/models"
)

// ResultQueue provides an abstraction for saving quiz results in the background
type ResultQueue interface {
	// EnqueueResult schedules the result save and returns a handle the caller
	// may wait on or drop.
	EnqueueResult(ctx context.Context, userID int64, completed models.CompletedQuiz) (*Pending, error)
}

// ResultSaver persists a finished quiz.
type ResultSaver interface {
	SaveResult(ctx context.Context, userID int64, completed models.CompletedQuiz) (*models.TestResult, error)
}
