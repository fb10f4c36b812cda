package models

import (
	"strconv"
	"time"
)

// Answer is what the user picked for one question.
type Answer struct {
	SelectedAnswer string `json:"selected_answer"`
	Correct        bool   `json:"correct"`
}

// QuizSession is the running state of one quiz attempt. It is serialized
// as-is into the session store.
type QuizSession struct {
	ID            string           `json:"id"`
	Difficulty    Difficulty       `json:"difficulty"`
	CurrentIndex  int              `json:"current_index"`
	Score         int              `json:"score"`
	SelectedItems []VocabItem      `json:"selected_items"`
	Answers       map[int]Answer   `json:"answers"`
	Options       map[int][]string `json:"options,omitempty"`
	StartTime     time.Time        `json:"start_time"`
}

// TotalQuestions is the fixed length of the session.
func (s QuizSession) TotalQuestions() int {
	return len(s.SelectedItems)
}

// SessionKey is the session store key for a user.
func SessionKey(userID int64) string {
	return "quiz_session:" + strconv.FormatInt(userID, 10)
}

// Question is a quiz item as presented to the user: the meaning stays hidden
// until the question is answered.
type Question struct {
	Word    string   `json:"word"`
	Example string   `json:"example"`
	Options []string `json:"options"`
}

// AnswerView describes a recorded answer including the expected meaning.
type AnswerView struct {
	SelectedAnswer string `json:"selected_answer"`
	Correct        bool   `json:"correct"`
	CorrectAnswer  string `json:"correct_answer"`
}

// QuizView is the client-facing snapshot of a session.
type QuizView struct {
	SessionID  string      `json:"session_id"`
	State      string      `json:"state"`
	Difficulty Difficulty  `json:"difficulty"`
	Index      int         `json:"index"`
	Total      int         `json:"total"`
	Score      int         `json:"score"`
	StartTime  time.Time   `json:"start_time"`
	Question   *Question   `json:"question,omitempty"`
	Answer     *AnswerView `json:"answer,omitempty"`
}

// QuizSummary is the outcome shown when a quiz is finished.
type QuizSummary struct {
	SessionID        string     `json:"session_id"`
	Score            int        `json:"score"`
	TotalQuestions   int        `json:"total_questions"`
	Percentage       float64    `json:"percentage"`
	TimeTakenSeconds int        `json:"time_taken_seconds"`
	Difficulty       Difficulty `json:"difficulty"`
}

// CompletedQuiz is a finished session handed over for result persistence.
type CompletedQuiz struct {
	Session QuizSession `json:"-"`
	EndTime time.Time   `json:"-"`
	Summary QuizSummary `json:"summary"`
}

// FinishResponse reports a finished quiz. Saved is false when the result was
// detached or could not be persisted; the session is closed either way.
type FinishResponse struct {
	Summary  QuizSummary `json:"summary"`
	Saved    bool        `json:"saved"`
	Detached bool        `json:"detached,omitempty"`
	Result   *TestResult `json:"result,omitempty"`
}
