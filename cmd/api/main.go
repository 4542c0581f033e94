// Command api is the Scoracle Fans wizard API server.
//
// Usage:
//
//	scoracle-fans-api
//	SESSION_BACKEND=redis API_PORT=8080 scoracle-fans-api

// @title Scoracle Fans API
// @version 1.0.0
// @description Fan profile wizard: personal data, interests, OCR-based identity document checks, social and esports profiles, and a dashboard summary.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Scoracle
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/scoracle-fans/internal/analytics"
	"github.com/albapepper/scoracle-fans/internal/api"
	"github.com/albapepper/scoracle-fans/internal/api/handler"
	"github.com/albapepper/scoracle-fans/internal/catalog"
	"github.com/albapepper/scoracle-fans/internal/config"
	"github.com/albapepper/scoracle-fans/internal/maintenance"
	"github.com/albapepper/scoracle-fans/internal/metrics"
	"github.com/albapepper/scoracle-fans/internal/ocr"
	"github.com/albapepper/scoracle-fans/internal/ocr/tesseract"
	"github.com/albapepper/scoracle-fans/internal/session"
	"github.com/albapepper/scoracle-fans/internal/wizard"

	_ "github.com/albapepper/scoracle-fans/docs" // swagger docs
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		logger.Error("Failed to load option catalog", "file", cfg.CatalogFile, "error", err)
		os.Exit(1)
	}

	store, closeStore, err := session.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open session store", "backend", cfg.SessionBackend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	reg := metrics.New()

	// OCR pipeline: preprocessing + Tesseract, fail-soft
	opts := []ocr.Option{
		ocr.WithLanguages(cfg.OCRLanguages...),
		ocr.WithObserver(reg),
	}
	if cfg.OCRBreakerEnabled {
		opts = append(opts, ocr.WithBreaker("tesseract"))
	}
	extractor := ocr.NewExtractor(tesseract.New(), logger, opts...)
	logger.Info("OCR initialized", "languages", extractor.Languages(), "breaker", cfg.OCRBreakerEnabled)

	seed := uint64(time.Now().UnixNano())
	scorer := analytics.NewSimulated(cat, seed)
	machine := wizard.NewMachine(extractor, scorer, cat, logger).WithObserver(reg)

	// Expired session sweep for stores that do not expire keys themselves
	if sweeper, ok := store.(session.Sweeper); ok {
		mcfg := maintenance.DefaultConfig()
		mcfg.SweepInterval = cfg.SweepInterval
		go maintenance.Start(ctx, sweeper, reg, mcfg, logger)
	}

	h, err := handler.New(handler.Deps{
		Store:      store,
		Machine:    machine,
		Scorer:     scorer,
		Summarizer: analytics.NewSummarizer(seed + 1),
		Catalog:    cat,
		Config:     cfg,
		Logger:     logger,
		Created:    reg.SessionsCreated,
	})
	if err != nil {
		logger.Error("Failed to build handlers", "error", err)
		os.Exit(1)
	}

	// Create router
	router := api.NewRouter(h, reg, cfg)

	// Create HTTP server. WriteTimeout leaves room for OCR on large uploads.
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Scoracle Fans API",
			"addr", addr,
			"environment", cfg.Environment,
			"sessions", store.Backend(),
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
