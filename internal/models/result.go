package models

import "time"

// TestResult is one row of the append-only quiz history.
type TestResult struct {
	ID               int64      `json:"id" db:"id"`
	UserID           int64      `json:"user_id" db:"user_id"`
	SessionID        string     `json:"session_id" db:"session_id"`
	Score            int        `json:"score" db:"score"`
	TotalQuestions   int        `json:"total_questions" db:"total_questions"`
	Difficulty       Difficulty `json:"difficulty" db:"difficulty"`
	TimeTakenSeconds int        `json:"time_taken_seconds" db:"time_taken_seconds"`
	Answers          string     `json:"answers" db:"answers"` // JSON-encoded map of index -> Answer
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// UserStatistics is the running aggregate over all of a user's quizzes.
type UserStatistics struct {
	UserID             int64     `json:"user_id" db:"user_id"`
	TotalTests         int       `json:"total_tests" db:"total_tests"`
	TotalQuestions     int       `json:"total_questions" db:"total_questions"`
	CorrectAnswers     int       `json:"correct_answers" db:"correct_answers"`
	AccuracyPercentage float64   `json:"accuracy_percentage" db:"accuracy_percentage"`
	AverageScore       float64   `json:"average_score" db:"average_score"`
	BestScore          int       `json:"best_score" db:"best_score"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}
