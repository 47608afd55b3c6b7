package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio-contact/config"
	_ "portfolio-contact/docs" // Important for Swagger
	"portfolio-contact/internal/app"
	v1 "portfolio-contact/internal/delivery/http/v1"
	"portfolio-contact/pkg/logger"
)

// @title           Portfolio Contact API
// @version         1.0
// @description     Contact form backend: validation, abuse filtering and email/Telegram delivery.
// @host            localhost:8080
// @BasePath        /v1
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	zapLogger, err := logger.NewZap(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	logger.Log.Info("Starting contact backend", "port", cfg.Port, "env", cfg.Environment)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 3. Wire the pipeline
	ctx := context.Background()
	application := app.New(ctx, cfg, zapLogger)
	if !application.Email.IsConfigured() && !application.Telegram.IsConfigured() {
		logger.Log.Warn("No delivery channel configured - every submission will fail")
	}

	// 4. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ContactUC: application.Contact,
		HealthUC:  application.Health,
		Config:    cfg,
		Logger:    zapLogger,
	})

	// 5. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	// Drain detached Telegram sends before releasing Redis and Postgres
	drained := make(chan struct{})
	go func() {
		application.Close()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(15 * time.Second):
		zapLogger.Warn("Timed out waiting for pending notifications")
	}

	logger.Log.Info("Server exiting")
}
