package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vytor/vocabquiz/internal/db"
	"github.com/vytor/vocabquiz/internal/logger"
	"github.com/vytor/vocabquiz/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The single connection keeps the in-memory database alive until the test ends.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// QuietContext returns a context whose logger drops everything.
func QuietContext() context.Context {
	return logger.NewContext(context.Background(), logger.Discard())
}

// VocabPool builds a small catalog with n items of each difficulty.
func VocabPool(n int) []models.VocabItem {
	var pool []models.VocabItem
	for _, d := range []models.Difficulty{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard} {
		for i := 0; i < n; i++ {
			pool = append(pool, models.VocabItem{
				Word:       string(d) + "-" + string(rune('a'+i)),
				Meaning:    "meaning of " + string(d) + "-" + string(rune('a'+i)),
				Example:    "example",
				Difficulty: d,
			})
		}
	}
	return pool
}
