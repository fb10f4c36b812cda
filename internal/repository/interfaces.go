package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/vocabquiz/internal/models"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a quiz session's result was already saved.
	ErrDuplicate = errors.New("duplicate")
)

// ProfileRepository handles profile data access. Upsert and List only see
// local profiles; token-bound profiles are reached through UpsertExternal or
// by id.
type ProfileRepository interface {
	Get(ctx context.Context, id int64) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Upsert(ctx context.Context, username string) (*models.Profile, error)
	UpsertExternal(ctx context.Context, subject string) (*models.Profile, error)
	Delete(ctx context.Context, id int64) error
}

// ResultRepository handles quiz results and the per-user statistics built
// from them.
type ResultRepository interface {
	// Record inserts result, folds it into the user's statistics and prunes the
	// user's history to keep rows, all in one transaction.
	Record(ctx context.Context, result models.TestResult, keep int) (*models.TestResult, *models.UserStatistics, error)
	List(ctx context.Context, userID int64, limit int) ([]models.TestResult, error)
	GetStats(ctx context.Context, userID int64) (*models.UserStatistics, error)
	// ResetHistory deletes the user's results and zeroes their statistics.
	ResetHistory(ctx context.Context, userID int64, at time.Time) error
	// PruneAll trims every user's history to keep rows.
	PruneAll(ctx context.Context, keep int) (int64, error)
}

// SessionRepository is the key-value store for in-progress quiz sessions.
// Get returns (nil, nil) for a missing key.
type SessionRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Remove(ctx context.Context, key string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
