package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/grading-service/internal/services"
	"github.com/SAP-F-2025/grading-service/internal/utils"
	"github.com/SAP-F-2025/grading-service/internal/validator"
)

type HandlerManager struct {
	gradingHandler *GradingHandler
}

func NewHandlerManager(
	gradingService services.GradingService,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		gradingHandler: NewGradingHandler(gradingService, validator, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	{
		grading := v1.Group("/grading")
		{
			grading.POST("/calculate-score", hm.gradingHandler.CalculateScore)
			grading.POST("/answers", hm.gradingHandler.GradeAnswer)
			grading.POST("/questions/lint", hm.gradingHandler.LintQuestion)

			grading.POST("/attempts/:attempt_id", hm.gradingHandler.GradeAttempt)
			grading.GET("/attempts/:attempt_id/answers", hm.gradingHandler.ListAttemptAnswers)
			grading.GET("/attempts/:attempt_id/answers/:question_id", hm.gradingHandler.GetGradedAnswer)
		}
	}
}

// NewRouter builds the gin engine with the shared middleware and all routes
func NewRouter(hm *HandlerManager, logger utils.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.RequestID())
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(utils.ContextLogger(logger))

	hm.SetupRoutes(router)
	return router
}
