package validator

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/grading-service/internal/models"
)

type gradeRequest struct {
	QuestionType string  `json:"question_type" validate:"question_type"`
	TotalMarks   float64 `json:"total_marks" validate:"finite_marks"`
}

func TestValidator_ValidateStruct(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		req     gradeRequest
		wantErr []string
	}{
		{name: "valid", req: gradeRequest{QuestionType: "single-choice", TotalMarks: 2}},
		{name: "unknown type is accepted", req: gradeRequest{QuestionType: "essay-v2", TotalMarks: 0}},
		{name: "blank type", req: gradeRequest{QuestionType: "  ", TotalMarks: 1}, wantErr: []string{"question_type"}},
		{name: "negative marks", req: gradeRequest{QuestionType: "short-answer", TotalMarks: -1}, wantErr: []string{"total_marks"}},
		{name: "infinite marks", req: gradeRequest{QuestionType: "short-answer", TotalMarks: math.Inf(1)}, wantErr: []string{"total_marks"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.req)
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}

			var errs ValidationErrors
			require.ErrorAs(t, err, &errs)
			fields := make([]string, 0, len(errs))
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tt.wantErr, fields)
		})
	}
}

func TestQuestionValidator_Lint(t *testing.T) {
	v := NewQuestionValidator()

	tests := []struct {
		name       string
		qt         models.QuestionType
		data       models.QuestionData
		wantErrors bool
		contains   string
	}{
		{
			name: "clean single choice",
			qt:   models.SingleChoice,
			data: models.QuestionData{"question": "Q", "options": []any{"A", "B"}, "correctAnswer": 1},
		},
		{
			name:       "correct answer out of range",
			qt:         models.SingleChoice,
			data:       models.QuestionData{"question": "Q", "options": []any{"A", "B"}, "correctAnswer": 5},
			wantErrors: true, contains: "does not match any option",
		},
		{
			name:       "missing options",
			qt:         models.MultipleChoice,
			data:       models.QuestionData{"question": "Q", "correctAnswers": []any{0}},
			wantErrors: true, contains: "no options",
		},
		{
			name:       "duplicate matching items",
			qt:         models.DragDrop,
			data:       models.QuestionData{"question": "Q", "type": "matching", "leftItems": []any{"a", "a"}, "rightItems": []any{"1", "2"}, "correctPairs": map[string]any{"a": "1"}},
			wantErrors: true, contains: "must be unique",
		},
		{
			name:       "pair names unknown item",
			qt:         models.DragDrop,
			data:       models.QuestionData{"question": "Q", "leftItems": []any{"a"}, "rightItems": []any{"1"}, "correctPairs": map[string]any{"a": "9"}},
			wantErrors: true, contains: "unknown item",
		},
		{
			name:     "short answer without keywords",
			qt:       models.ShortAnswer,
			data:     models.QuestionData{"question": "Q"},
			contains: "manual review",
		},
		{
			name: "case study without marks",
			qt:   models.CaseStudy,
			data: models.QuestionData{"question": "Q", "subQuestions": []any{
				map[string]any{"questionType": "single-choice", "options": []any{"A", "B"}, "correctAnswer": 0},
			}},
			wantErrors: true, contains: "never be answered correctly",
		},
		{
			name:       "unsupported type",
			qt:         "essay-v2",
			data:       models.QuestionData{},
			wantErrors: true, contains: "unsupported question type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := v.Lint(tt.qt, tt.data)

			assert.Equal(t, tt.wantErrors, HasErrors(issues))
			if tt.contains == "" {
				assert.Empty(t, issues)
				return
			}
			var messages []string
			for _, issue := range issues {
				messages = append(messages, issue.Message)
			}
			assert.Contains(t, strings.Join(messages, "\n"), tt.contains)
		})
	}
}
