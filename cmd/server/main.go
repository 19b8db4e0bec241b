// Command server runs the flood-susceptibility validation service: an HTTP
// API that samples a susceptibility raster at flood / non-flood observation
// points and returns the ROC curve and AUC of the model.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/flood-validation-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/flood-validation-service/internal/adapter/kafka"
	"github.com/couchcryptid/flood-validation-service/internal/config"
	"github.com/couchcryptid/flood-validation-service/internal/observability"
	"github.com/couchcryptid/flood-validation-service/internal/pipeline"
	"github.com/couchcryptid/flood-validation-service/internal/raster"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store := raster.NewCachedStore(raster.FileStore{}, cfg.RasterCacheSize, metrics)

	// Report publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var publisher pipeline.Publisher
	var closePublisher func() error
	if cfg.KafkaEnabled {
		kp := kafkaadapter.NewPublisher(cfg, logger)
		publisher = kp
		closePublisher = kp.Close
		logger.Info("report publishing enabled", "topic", cfg.KafkaReportTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("report publishing disabled")
	}

	validator := pipeline.New(store, publisher, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, validator, cfg.DataDir, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if closePublisher != nil {
		if err := closePublisher(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
