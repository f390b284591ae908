package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dira-directory/backend/internal/models"
	"dira-directory/backend/pkg/config"
	"dira-directory/backend/pkg/di"
	"dira-directory/backend/pkg/logger"
	"dira-directory/backend/pkg/router"
	"dira-directory/backend/shared/observability"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		stdlog.Println("No .env file found")
	}

	cfg := config.New()

	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"

	log := logger.New(logConfig)
	logger.SetGlobal(log)

	log.Info("Starting directory backend", "env", cfg.Server.Env, "version", os.Getenv("APP_VERSION"))

	// Observability is optional; the service runs fine without a collector
	shutdownTracing, err := observability.SetupTracing("dira-directory")
	if err != nil {
		log.Warn("tracing disabled", "error", err.Error())
	}
	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		if err := observability.SetupPrometheusMetrics(addr); err != nil {
			log.Warn("metrics endpoint disabled", "error", err.Error())
		}
	}

	db, err := config.NewDB()
	if err != nil {
		log.LogError(err, "Failed to initialize database")
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Opportunity{},
		&models.UserFeedback{},
		&models.FeedbackAnalytics{},
		&models.Chat{},
		&models.ChatMessage{},
		&models.ChatUsage{},
	); err != nil {
		log.LogError(err, "Failed to migrate database")
		os.Exit(1)
	}

	container, err := di.New(db, cfg, log)
	if err != nil {
		log.LogError(err, "Failed to initialize dependency container")
		os.Exit(1)
	}

	r := router.New(container)
	r.SetupRoutes()

	if schemaPath := os.Getenv("OPENAPI_SCHEMA_PATH"); schemaPath != "" {
		r.AddOpenAPIValidation(schemaPath)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r.Engine,
		ReadTimeout:  cfg.Server.Timeout,
		// Streaming chat responses can run much longer than normal requests
		WriteTimeout: cfg.AI.Timeout + 30*time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.LogError(err, "Server forced to shutdown")
	}

	if shutdownTracing != nil {
		if err := shutdownTracing(ctx); err != nil {
			log.Warn("tracing shutdown failed", "error", err.Error())
		}
	}

	log.Info("Server exited gracefully")
}
