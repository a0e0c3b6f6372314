package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/bookrec/internal/config"
	dbRedis "github.com/kailas-cloud/bookrec/internal/db/redis"
	logpkg "github.com/kailas-cloud/bookrec/internal/logger"
	"github.com/kailas-cloud/bookrec/internal/metrics"
	"github.com/kailas-cloud/bookrec/internal/source"
	chiTransport "github.com/kailas-cloud/bookrec/internal/transport/chi"
	healthuc "github.com/kailas-cloud/bookrec/internal/usecase/health"
	"github.com/kailas-cloud/bookrec/internal/usecase/pipeline"
	"github.com/kailas-cloud/bookrec/internal/usecase/recommend"
	"github.com/kailas-cloud/bookrec/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting bookrec API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("source_driver", cfg.Source.Driver),
	)

	ctx := context.Background()

	// Redis is only needed when the tables live there.
	var store *dbRedis.Store
	if cfg.Source.Driver == config.DriverRedis {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database", zap.Strings("db_addrs", cfg.Database.Addrs))
	}

	var srcStore source.Store
	if store != nil {
		srcStore = store
	}
	src, err := source.New(sourceConfig(cfg), srcStore, logger)
	if err != nil {
		logger.Fatal("Failed to create source", zap.Error(err))
	}

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()
	recorder := metrics.Recorder{}

	// The snapshot is built once; a failed build never serves traffic.
	snap, report, err := pipeline.New(pipelineConfig(cfg), recorder, logger).Run(ctx, src)
	if err != nil {
		logger.Fatal("Failed to build recommendation snapshot", zap.Error(err))
	}
	if report.Index.SurvivingTitles < 2 {
		logger.Warn("Similarity index is degenerate, every recommend query will return not found",
			zap.Int("index_titles", report.Index.SurvivingTitles),
		)
	}

	recSvc := recommend.New(snap, cfg.Pipeline.DefaultK, recorder, logger)

	// Pass nil interface (not typed nil pointer!) when Redis is not in use.
	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(recSvc, pinger)

	server := chiTransport.NewServer(recSvc, healthSvc, cfg.Pipeline.MaxK, logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys:           cfg.Auth.APIKeys,
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
		CORSMaxAge:        time.Duration(cfg.CORS.MaxAgeSec) * time.Second,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
