package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/grading-service/internal/models"
	"github.com/SAP-F-2025/grading-service/internal/services"
	"github.com/SAP-F-2025/grading-service/internal/utils"
	"github.com/SAP-F-2025/grading-service/internal/validator"
)

type GradingHandler struct {
	BaseHandler
	gradingService services.GradingService
	validator      *validator.Validator
}

type CalculateScoreRequest struct {
	QuestionContent json.RawMessage `json:"question_content"`
	StudentAnswer   json.RawMessage `json:"student_answer"`
	TotalMarks      float64         `json:"total_marks" validate:"finite_marks"`
}

type GradeAttemptAnswersRequest struct {
	Answers []services.AnswerInput `json:"answers"`
}

type LintQuestionRequest struct {
	QuestionType string              `json:"question_type" validate:"question_type"`
	QuestionData models.QuestionData `json:"question_data"`
}

type LintQuestionResponse struct {
	Gradable bool                      `json:"gradable"`
	Issues   []validator.QuestionIssue `json:"issues"`
}

func NewGradingHandler(
	gradingService services.GradingService,
	validator *validator.Validator,
	logger utils.Logger,
) *GradingHandler {
	return &GradingHandler{
		BaseHandler:    NewBaseHandler(logger),
		gradingService: gradingService,
		validator:      validator,
	}
}

// CalculateScore grades an answer without recording it
// @Summary Calculate score
// @Description Grades a student answer against a question definition without saving it
// @Tags grading
// @Accept json
// @Produce json
// @Param question_type query string true "Question type"
// @Param request body CalculateScoreRequest true "Question content, student answer and marks"
// @Success 200 {object} models.GradedAnswer
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /grading/calculate-score [post]
func (h *GradingHandler) CalculateScore(c *gin.Context) {
	questionType := c.Query("question_type")
	if questionType == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Question type is required",
		})
		return
	}

	h.LogRequest(c, "Calculating score", "question_type", questionType)

	var body CalculateScoreRequest
	if !h.bindAndValidate(c, &body) {
		return
	}

	result, err := h.gradingService.CalculateScore(h.requestContext(c), questionType,
		body.QuestionContent, body.StudentAnswer, body.TotalMarks)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GradeAnswer grades one answer and records the result
// @Summary Grade answer
// @Description Grades a student answer and stores the graded record for the attempt
// @Tags grading
// @Accept json
// @Produce json
// @Param request body services.GradeAnswerRequest true "Answer to grade"
// @Success 200 {object} services.GradingResult
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /grading/answers [post]
func (h *GradingHandler) GradeAnswer(c *gin.Context) {
	var req services.GradeAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return
	}

	h.LogRequest(c, "Grading answer", "attempt_id", req.AttemptID, "question_id", req.QuestionID)

	result, err := h.gradingService.GradeAnswer(h.requestContext(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GradeAttempt grades every answer of an attempt
// @Summary Grade attempt
// @Description Grades all answers of an assessment attempt concurrently and stores the results
// @Tags grading
// @Accept json
// @Produce json
// @Param attempt_id path uint true "Attempt ID"
// @Param request body GradeAttemptAnswersRequest true "Answers to grade"
// @Success 200 {object} services.AttemptGradingResult
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /grading/attempts/{attempt_id} [post]
func (h *GradingHandler) GradeAttempt(c *gin.Context) {
	attemptID := parseIDParam(c, "attempt_id")
	if attemptID == 0 {
		return
	}

	var body GradeAttemptAnswersRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return
	}

	h.LogRequest(c, "Grading attempt", "attempt_id", attemptID, "answers", len(body.Answers))

	result, err := h.gradingService.GradeAttempt(h.requestContext(c), &services.GradeAttemptRequest{
		AttemptID: attemptID,
		Answers:   body.Answers,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListAttemptAnswers returns the recorded results of an attempt
// @Summary List graded answers
// @Description Lists graded answers of an attempt with score totals
// @Tags grading
// @Produce json
// @Param attempt_id path uint true "Attempt ID"
// @Param status query string false "Filter by grading status"
// @Param question_type query string false "Filter by question type"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} services.AttemptGradingResult
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /grading/attempts/{attempt_id}/answers [get]
func (h *GradingHandler) ListAttemptAnswers(c *gin.Context) {
	attemptID := parseIDParam(c, "attempt_id")
	if attemptID == 0 {
		return
	}

	result, err := h.gradingService.ListAttemptAnswers(h.requestContext(c), attemptID, parseGradedAnswerFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetGradedAnswer returns one recorded result
// @Summary Get graded answer
// @Tags grading
// @Produce json
// @Param attempt_id path uint true "Attempt ID"
// @Param question_id path uint true "Question ID"
// @Success 200 {object} services.GradingResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /grading/attempts/{attempt_id}/answers/{question_id} [get]
func (h *GradingHandler) GetGradedAnswer(c *gin.Context) {
	attemptID := parseIDParam(c, "attempt_id")
	if attemptID == 0 {
		return
	}
	questionID := parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	result, err := h.gradingService.GetGradedAnswer(h.requestContext(c), attemptID, questionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// LintQuestion reports problems that would stop a question from grading automatically
// @Summary Lint question definition
// @Tags grading
// @Accept json
// @Produce json
// @Param request body LintQuestionRequest true "Question definition"
// @Success 200 {object} LintQuestionResponse
// @Failure 400 {object} ErrorResponse
// @Router /grading/questions/lint [post]
func (h *GradingHandler) LintQuestion(c *gin.Context) {
	var req LintQuestionRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	issues := h.validator.Question().Lint(models.QuestionType(req.QuestionType), req.QuestionData)
	if issues == nil {
		issues = []validator.QuestionIssue{}
	}

	c.JSON(http.StatusOK, LintQuestionResponse{
		Gradable: !validator.HasErrors(issues),
		Issues:   issues,
	})
}

// Helper methods

func (h *GradingHandler) bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", nil, err.Error())
		return false
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.handleServiceError(c, err)
		return false
	}
	return true
}

func (h *GradingHandler) requestContext(c *gin.Context) context.Context {
	return services.WithRequestID(c.Request.Context(), c.GetString(utils.RequestIDKey))
}

func (h *GradingHandler) handleServiceError(c *gin.Context, err error) {
	// Handle custom error types first
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrGradedAnswerNotFound), errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Graded answer not found",
		})
	case errors.Is(err, services.ErrInvalidMarks), errors.Is(err, services.ErrInvalidQuestionType):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.LogWarn(c, "Request canceled", "error", err)
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "Request canceled",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
