// Package stats holds the arithmetic behind per-user quiz statistics.
package stats

import (
	"math"
	"time"

	"github.com/vytor/vocabquiz/internal/models"
)

// Percentage returns part/whole*100, or 0 when whole is 0.
func Percentage(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// ElapsedSeconds is the whole number of seconds between start and end,
// rounded half away from zero. A clock going backwards yields 0.
func ElapsedSeconds(start, end time.Time) int {
	secs := math.Round(end.Sub(start).Seconds())
	if secs < 0 {
		return 0
	}
	return int(secs)
}

// Fold adds one completed quiz to prev and recomputes the derived ratios.
// A zero-valued prev stands for a user with no history.
func Fold(prev models.UserStatistics, score, totalQuestions int, at time.Time) models.UserStatistics {
	next := prev
	next.TotalTests++
	next.TotalQuestions += totalQuestions
	next.CorrectAnswers += score
	next.AccuracyPercentage = Percentage(next.CorrectAnswers, next.TotalQuestions)
	next.AverageScore = average(next.CorrectAnswers, next.TotalTests)
	if score > next.BestScore {
		next.BestScore = score
	}
	if next.CreatedAt.IsZero() {
		next.CreatedAt = at
	}
	next.UpdatedAt = at
	return next
}

// Zero returns the statistics of a user whose history was reset.
func Zero(userID int64, at time.Time) models.UserStatistics {
	return models.UserStatistics{UserID: userID, CreatedAt: at, UpdatedAt: at}
}

func average(sum, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
