package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/grading-service/internal/models"
	"github.com/SAP-F-2025/grading-service/internal/repositories"
	"github.com/SAP-F-2025/grading-service/internal/services"
	"github.com/SAP-F-2025/grading-service/internal/utils"
	"github.com/SAP-F-2025/grading-service/internal/validator"
)

// MockGradingService is a mock implementation of services.GradingService
type MockGradingService struct {
	mock.Mock
}

func (m *MockGradingService) GradeAnswer(ctx context.Context, req *services.GradeAnswerRequest) (*services.GradingResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.GradingResult), args.Error(1)
}

func (m *MockGradingService) GradeAttempt(ctx context.Context, req *services.GradeAttemptRequest) (*services.AttemptGradingResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AttemptGradingResult), args.Error(1)
}

func (m *MockGradingService) CalculateScore(ctx context.Context, questionType string, content, answer json.RawMessage, marks float64) (*models.GradedAnswer, error) {
	args := m.Called(ctx, questionType, content, answer, marks)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GradedAnswer), args.Error(1)
}

func (m *MockGradingService) GetGradedAnswer(ctx context.Context, attemptID, questionID uint) (*services.GradingResult, error) {
	args := m.Called(ctx, attemptID, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.GradingResult), args.Error(1)
}

func (m *MockGradingService) ListAttemptAnswers(ctx context.Context, attemptID uint, filters repositories.GradedAnswerFilters) (*services.AttemptGradingResult, error) {
	args := m.Called(ctx, attemptID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AttemptGradingResult), args.Error(1)
}

func newTestRouter(svc services.GradingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewRouter(NewHandlerManager(svc, validator.New(), logger), logger)
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(new(MockGradingService))

	w := doRequest(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"grading-service"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(utils.RequestIDHeader))
}

func TestRequestIDIsPropagated(t *testing.T) {
	router := newTestRouter(new(MockGradingService))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(utils.RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get(utils.RequestIDHeader))
}

func TestGradingHandler_CalculateScore(t *testing.T) {
	svc := new(MockGradingService)
	router := newTestRouter(svc)

	graded := &models.GradedAnswer{IsCorrect: true, PointsEarned: 2}
	svc.On("CalculateScore", mock.Anything, "single-choice",
		json.RawMessage(`{"options":["A","B"],"correct_answer":"B"}`),
		json.RawMessage(`"B"`), 2.0).Return(graded, nil)

	w := doRequest(t, router, http.MethodPost, "/api/v1/grading/calculate-score?question_type=single-choice",
		`{"question_content":{"options":["A","B"],"correct_answer":"B"},"student_answer":"B","total_marks":2}`)

	require.Equal(t, http.StatusOK, w.Code)
	var got models.GradedAnswer
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.IsCorrect)
	assert.Equal(t, 2.0, got.PointsEarned)
	svc.AssertExpectations(t)
}

func TestGradingHandler_CalculateScore_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{
			name: "missing question type",
			path: "/api/v1/grading/calculate-score",
			body: `{"student_answer":"B","total_marks":1}`,
		},
		{
			name: "malformed body",
			path: "/api/v1/grading/calculate-score?question_type=single-choice",
			body: `{"student_answer":`,
		},
		{
			name: "negative marks",
			path: "/api/v1/grading/calculate-score?question_type=single-choice",
			body: `{"student_answer":"B","total_marks":-1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockGradingService)
			router := newTestRouter(svc)

			w := doRequest(t, router, http.MethodPost, tt.path, tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "CalculateScore", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestGradingHandler_GradeAnswer(t *testing.T) {
	svc := new(MockGradingService)
	router := newTestRouter(svc)

	result := &services.GradingResult{
		AttemptID:    7,
		QuestionID:   3,
		Status:       models.GradingStatusAutoGraded,
		GradedAnswer: models.GradedAnswer{IsCorrect: true, PointsEarned: 1},
	}
	svc.On("GradeAnswer", mock.Anything, mock.MatchedBy(func(req *services.GradeAnswerRequest) bool {
		return req.AttemptID == 7 && req.QuestionID == 3 && req.QuestionType == "single-choice"
	})).Return(result, nil)

	w := doRequest(t, router, http.MethodPost, "/api/v1/grading/answers", map[string]interface{}{
		"attempt_id":     7,
		"question_id":    3,
		"question_type":  "single-choice",
		"question_data":  map[string]interface{}{"options": []string{"A", "B"}, "correct_answer": "A"},
		"student_answer": "A",
		"total_marks":    1,
	})

	require.Equal(t, http.StatusOK, w.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "auto_graded", got["status"])
	assert.Equal(t, true, got["isCorrect"])
	svc.AssertExpectations(t)
}

func TestGradingHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:           "validation errors",
			err:            services.ValidationErrors{{Field: "attempt_id", Message: "attempt_id is required"}},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Validation failed",
		},
		{
			name:           "business rule",
			err:            services.NewBusinessRuleError("max_answers", "too many answers", nil),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedMsg:    "too many answers",
		},
		{
			name:           "invalid marks",
			err:            fmt.Errorf("grade answer: %w", services.ErrInvalidMarks),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "not found",
			err:            services.ErrGradedAnswerNotFound,
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "Graded answer not found",
		},
		{
			name:           "canceled",
			err:            fmt.Errorf("save: %w", context.Canceled),
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "unexpected",
			err:            fmt.Errorf("failed to save graded answer: %w", assert.AnError),
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockGradingService)
			router := newTestRouter(svc)
			svc.On("GradeAnswer", mock.Anything, mock.Anything).Return(nil, tt.err)

			w := doRequest(t, router, http.MethodPost, "/api/v1/grading/answers",
				`{"attempt_id":1,"question_id":1,"question_type":"short-answer","student_answer":"x","total_marks":1}`)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, decodeError(t, w).Message)
			}
		})
	}
}

func TestGradingHandler_GradeAttempt(t *testing.T) {
	svc := new(MockGradingService)
	router := newTestRouter(svc)

	summary := &services.AttemptGradingResult{AttemptID: 9, Score: 3, MaxScore: 4, Percentage: 75}
	svc.On("GradeAttempt", mock.Anything, mock.MatchedBy(func(req *services.GradeAttemptRequest) bool {
		return req.AttemptID == 9 && len(req.Answers) == 2
	})).Return(summary, nil)

	w := doRequest(t, router, http.MethodPost, "/api/v1/grading/attempts/9",
		`{"answers":[{"question_id":1,"question_type":"single-choice","student_answer":"A","total_marks":2},
		{"question_id":2,"question_type":"short-answer","student_answer":"B","total_marks":2}]}`)

	require.Equal(t, http.StatusOK, w.Code)
	var got services.AttemptGradingResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 75.0, got.Percentage)
	svc.AssertExpectations(t)
}

func TestGradingHandler_InvalidPathParams(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"non numeric attempt", http.MethodPost, "/api/v1/grading/attempts/abc"},
		{"zero attempt", http.MethodGet, "/api/v1/grading/attempts/0/answers"},
		{"negative question", http.MethodGet, "/api/v1/grading/attempts/1/answers/-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockGradingService)
			router := newTestRouter(svc)

			w := doRequest(t, router, tt.method, tt.path, `{"answers":[]}`)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, svc.Calls)
		})
	}
}

func TestGradingHandler_ListAttemptAnswers(t *testing.T) {
	svc := new(MockGradingService)
	router := newTestRouter(svc)

	pending := models.GradingStatusPendingReview
	expectedFilters := repositories.GradedAnswerFilters{Status: &pending, Limit: maxPageSize, Offset: 5}
	svc.On("ListAttemptAnswers", mock.Anything, uint(4), expectedFilters).
		Return(&services.AttemptGradingResult{AttemptID: 4, PendingReview: 1}, nil)

	w := doRequest(t, router, http.MethodGet,
		"/api/v1/grading/attempts/4/answers?status=pending_review&limit=1000&offset=5", nil)

	require.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestGradingHandler_GetGradedAnswer(t *testing.T) {
	svc := new(MockGradingService)
	router := newTestRouter(svc)

	svc.On("GetGradedAnswer", mock.Anything, uint(4), uint(12)).
		Return(&services.GradingResult{AttemptID: 4, QuestionID: 12, Status: models.GradingStatusFailed}, nil)
	svc.On("GetGradedAnswer", mock.Anything, uint(4), uint(13)).
		Return(nil, services.ErrGradedAnswerNotFound)

	w := doRequest(t, router, http.MethodGet, "/api/v1/grading/attempts/4/answers/12", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"failed"`)

	w = doRequest(t, router, http.MethodGet, "/api/v1/grading/attempts/4/answers/13", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGradingHandler_LintQuestion(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		gradable       bool
		issueFields    []string
	}{
		{
			name:           "gradable single choice",
			body:           `{"question_type":"single-choice","question_data":{"question":"Pick B","options":["A","B"],"correct_answer":"B"}}`,
			expectedStatus: http.StatusOK,
			gradable:       true,
		},
		{
			name:           "unsupported type",
			body:           `{"question_type":"essay","question_data":{}}`,
			expectedStatus: http.StatusOK,
			gradable:       false,
			issueFields:    []string{"question_type"},
		},
		{
			name:           "blank type",
			body:           `{"question_type":"  ","question_data":{}}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(new(MockGradingService))

			w := doRequest(t, router, http.MethodPost, "/api/v1/grading/questions/lint", tt.body)

			require.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusOK {
				return
			}
			var resp LintQuestionResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.gradable, resp.Gradable)
			fields := make([]string, 0, len(resp.Issues))
			for _, issue := range resp.Issues {
				fields = append(fields, issue.Field)
			}
			assert.ElementsMatch(t, tt.issueFields, fields)
		})
	}
}
