package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/vocabquiz/internal/errors"
	"github.com/vytor/vocabquiz/internal/validator"
)

type sample struct {
	Count      int    `json:"count" validate:"omitempty,min=1,max=50"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=easy medium hard all"`
	Index      *int   `json:"index" validate:"required,min=0"`
}

func TestValidateStruct_Valid(t *testing.T) {
	idx := 0
	assert.NoError(t, validator.ValidateStruct(sample{Count: 5, Difficulty: "all", Index: &idx}))
	assert.NoError(t, validator.ValidateStruct(sample{Index: &idx}))
}

func TestValidateStruct_ReportsJSONFieldName(t *testing.T) {
	idx := 1
	err := validator.ValidateStruct(sample{Count: 51, Index: &idx})
	require.Error(t, err)

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeValidation, appErr.Code)
	assert.Contains(t, appErr.Message, "count")
	assert.Contains(t, appErr.Message, "at most 50")
}

func TestValidateStruct_OneOf(t *testing.T) {
	idx := 1
	err := validator.ValidateStruct(sample{Difficulty: "expert", Index: &idx})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "difficulty")
	assert.Contains(t, err.Error(), "easy medium hard all")
}

func TestValidateStruct_Required(t *testing.T) {
	err := validator.ValidateStruct(sample{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index")
	assert.Contains(t, err.Error(), "is required")
}
