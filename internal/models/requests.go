package models

// StartQuizRequest is the body of a quiz start call. Zero values pick the
// configured defaults.
type StartQuizRequest struct {
	Count      int        `json:"count" validate:"omitempty,min=1"`
	Difficulty Difficulty `json:"difficulty" validate:"omitempty,oneof=easy medium hard all"`
}

// AnswerRequest records an answer for the question at Index.
type AnswerRequest struct {
	Index  *int   `json:"index" validate:"required,min=0"`
	Answer string `json:"answer" validate:"required"`
}

// CreateProfileRequest creates (or reuses) a local profile.
type CreateProfileRequest struct {
	Username string `json:"username" validate:"required,max=64"`
}
