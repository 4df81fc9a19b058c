package errors

import (
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("total_marks", "must be greater than or equal to 0", -1.0)

	assert.Equal(t, "total_marks", err.Field)
	assert.Equal(t, "must be greater than or equal to 0", err.Message)
	assert.Equal(t, -1.0, err.Value)
	assert.Equal(t, "validation error on field 'total_marks': must be greater than or equal to 0", err.Error())
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs = append(errs, *NewValidationError("question_type", "is required", nil))
	assert.Equal(t, "validation failed: question_type is required", errs.Error())

	errs = append(errs, *NewValidationError("answers", "is required", nil))
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("question_type", "is required", "required", "")

	assert.Equal(t, "required", err.Rule)
	assert.Equal(t, "question_type", err.Field)
}

func TestToValidationErrors(t *testing.T) {
	type request struct {
		QuestionType string  `validate:"required"`
		TotalMarks   float64 `validate:"gte=0"`
	}

	validate := validator.New()
	err := validate.Struct(request{TotalMarks: -2})
	require.Error(t, err)

	errs := ToValidationErrors(fmt.Errorf("grade answer: %w", err))
	require.Len(t, errs, 2)
	assert.Equal(t, "QuestionType", errs[0].Field)
	assert.Equal(t, "is required", errs[0].Message)
	assert.Equal(t, "required", errs[0].Rule)
	assert.Equal(t, "must be greater than or equal to 0", errs[1].Message)

	assert.Empty(t, ToValidationErrors(fmt.Errorf("plain error")))
}
