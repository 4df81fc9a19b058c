package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/grading-service/internal/cache"
	"github.com/SAP-F-2025/grading-service/internal/config"
	"github.com/SAP-F-2025/grading-service/internal/handlers"
	"github.com/SAP-F-2025/grading-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/grading-service/internal/services"
	"github.com/SAP-F-2025/grading-service/internal/utils"
	"github.com/SAP-F-2025/grading-service/internal/validator"
	"github.com/SAP-F-2025/grading-service/pkg"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("Grading service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := pkg.MigrateDatabase(db); err != nil {
		return err
	}

	var answerCache *cache.GradedAnswerCache
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, running without graded answer cache", "error", err)
	} else {
		defer redisClient.Close()
		answerCache = cache.NewGradedAnswerCache(cache.NewRedisCache(redisClient, logger), cfg.Grading.CacheTTL)
	}

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", "error", err)
		}
	}()

	v := validator.New()
	gradingService := services.NewGradingService(
		postgres.NewGradedAnswerPostgreSQL(db),
		answerCache,
		publisher,
		logger,
		v,
		cfg.Grading.Workers,
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	appLogger := utils.NewSlogLogger(logger)
	router := handlers.NewRouter(handlers.NewHandlerManager(gradingService, v, appLogger), appLogger)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Grading service is starting", "addr", server.Addr, "workers", cfg.Grading.Workers)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("HTTP server exited properly")
	return nil
}
