// invoiced is the HTTP extraction service. It accepts raw invoice text
// over the REST API, runs the extraction pipeline, and optionally
// persists results to Postgres when DB_URL is configured.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/16mlwood-afk/invoice-parser-sub002/internal/common"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/pipeline"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/server"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/store"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/validate"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st store.Store
	if cfg.Database.DSN != "" {
		pg, err := store.OpenPostgres(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("database connection failed", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("schema setup failed", "error", err)
			os.Exit(1)
		}
		st = pg
	} else {
		logger.Info("DB_URL not set, result persistence disabled")
	}

	policy := validate.PolicyFromFloats(
		cfg.Pipeline.PassTolerance,
		cfg.Pipeline.WarnTolerance,
		cfg.Pipeline.SuspiciousPrice,
		cfg.Pipeline.CorruptedPrice,
		cfg.Pipeline.OCRMergeThreshold,
	)
	proc := pipeline.NewProcessor(policy, logger)
	queue := pipeline.NewQueue(proc, logger,
		pipeline.WithWorkers(cfg.Pipeline.Workers),
		pipeline.WithQueueSize(cfg.Pipeline.QueueSize),
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	server.SetupRoutes(router, server.NewHandler(proc, queue, st, logger))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.Server.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	queue.Shutdown(shutdownCtx)
	logger.Info("stopped")
}
