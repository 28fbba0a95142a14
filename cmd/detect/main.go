package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/geodesylab/slowslip/internal/adapter/httpapi"
	kafkaadapter "github.com/geodesylab/slowslip/internal/adapter/kafka"
	"github.com/geodesylab/slowslip/internal/adapter/posfile"
	"github.com/geodesylab/slowslip/internal/config"
	"github.com/geodesylab/slowslip/internal/detect"
	"github.com/geodesylab/slowslip/internal/observability"
	"github.com/geodesylab/slowslip/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	detector, err := detect.New(detectParams(cfg), detect.NewScoreCache(), logger)
	if err != nil {
		logger.Error("invalid detection parameters", "error", err)
		os.Exit(1)
	}

	loader := posfile.NewLoader(cfg.DataDir, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)

	p := pipeline.New(loader, detector, writer, logger, metrics, cfg.DetectInterval)

	srv := httpapi.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start detection pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// detectParams maps service configuration onto detection parameters.
func detectParams(cfg *config.Config) detect.Params {
	params := detect.DefaultParams(cfg.WindowHalfWidth, cfg.PropThresh)
	params.NeighborDistanceKm = cfg.NeighborDistanceKm
	params.MinStations = cfg.MinStations
	params.ScoreSign = cfg.ScoreSign
	params.MinDurationDays = cfg.MinDurationDays
	params.CorroborationFrac = cfg.CorroborationFrac
	params.ReverseNeighborFrac = cfg.ReverseNeighborFrac
	params.Component = cfg.Component
	switch cfg.ReverseNeighborMode {
	case "exclude":
		params.Inference = detect.InferenceExclude
	case "inherit":
		params.Inference = detect.InferenceInherit
	}
	return params
}
