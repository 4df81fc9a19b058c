package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/grading-service/internal/models"
	"github.com/SAP-F-2025/grading-service/internal/repositories"
)

const maxPageSize = 200

// parseIDParam writes a 400 and returns 0 when the path parameter is not a positive id.
func parseIDParam(c *gin.Context, param string) uint {
	idStr := strings.TrimSpace(c.Param(param))
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		details := "ID must be a positive integer"
		if err != nil {
			details = err.Error()
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: details,
		})
		return 0
	}
	return uint(id)
}

func parseGradedAnswerFilters(c *gin.Context) repositories.GradedAnswerFilters {
	var filters repositories.GradedAnswerFilters

	if status := c.Query("status"); status != "" {
		s := models.GradingStatus(status)
		filters.Status = &s
	}
	if questionType := c.Query("question_type"); questionType != "" {
		qt := models.QuestionType(questionType)
		filters.QuestionType = &qt
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filters.Limit = min(limit, maxPageSize)
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		filters.Offset = offset
	}

	return filters
}
