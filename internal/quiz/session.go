package quiz

import (
	"errors"
	"fmt"
	"time"

	"github.com/vytor/vocabquiz/internal/models"
	"github.com/vytor/vocabquiz/internal/stats"
)

// State is the lifecycle position of a quiz session. It is derived from the
// session contents, never stored.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInProgress    State = "in_progress"
	StateCompleted     State = "completed"
)

var (
	ErrIndexOutOfRange = errors.New("question index out of range")
	ErrEmptySession    = errors.New("session has no questions")
)

// NewSession builds a fresh session over items, starting at the first question.
func NewSession(id string, items []models.VocabItem, difficulty models.Difficulty, now time.Time) models.QuizSession {
	return models.QuizSession{
		ID:            id,
		Difficulty:    difficulty,
		CurrentIndex:  0,
		Score:         0,
		SelectedItems: append([]models.VocabItem(nil), items...),
		Answers:       map[int]models.Answer{},
		Options:       map[int][]string{},
		StartTime:     now,
	}
}

// StateOf reports the state of s; a nil session is uninitialized.
func StateOf(s *models.QuizSession) State {
	if s == nil {
		return StateUninitialized
	}
	if IsCompleted(*s) {
		return StateCompleted
	}
	return StateInProgress
}

// IsCompleted is true once the last question is current and has an answer.
func IsCompleted(s models.QuizSession) bool {
	last := len(s.SelectedItems) - 1
	if last < 0 || s.CurrentIndex != last {
		return false
	}
	_, answered := s.Answers[last]
	return answered
}

// RecordAnswer stores the answer for index, replacing any earlier one.
//
// The score grows by one only when the answer is correct and the index had no
// answer before. Re-recording never changes the score in either direction.
func RecordAnswer(s *models.QuizSession, index int, selected string, correct bool) error {
	if index < 0 || index >= len(s.SelectedItems) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(s.SelectedItems))
	}
	if s.Answers == nil {
		s.Answers = map[int]models.Answer{}
	}
	_, seen := s.Answers[index]
	s.Answers[index] = models.Answer{SelectedAnswer: selected, Correct: correct}
	if correct && !seen {
		s.Score++
	}
	return nil
}

// Advance moves to the next question. At the last question it does nothing
// and reports false.
func Advance(s *models.QuizSession) bool {
	if s.CurrentIndex >= len(s.SelectedItems)-1 {
		return false
	}
	s.CurrentIndex++
	return true
}

// SetOptions pins the option list shown for index so reloads see the same choices.
func SetOptions(s *models.QuizSession, index int, options []string) error {
	if index < 0 || index >= len(s.SelectedItems) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(s.SelectedItems))
	}
	if s.Options == nil {
		s.Options = map[int][]string{}
	}
	s.Options[index] = options
	return nil
}

// Summarize computes the score percentage and elapsed time of s at end.
func Summarize(s models.QuizSession, end time.Time) models.QuizSummary {
	return models.QuizSummary{
		SessionID:        s.ID,
		Score:            s.Score,
		TotalQuestions:   s.TotalQuestions(),
		Percentage:       stats.Percentage(s.Score, s.TotalQuestions()),
		TimeTakenSeconds: stats.ElapsedSeconds(s.StartTime, end),
		Difficulty:       s.Difficulty,
	}
}
