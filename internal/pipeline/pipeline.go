package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/geodesylab/slowslip/internal/detect"
	"github.com/geodesylab/slowslip/internal/domain"
	"github.com/geodesylab/slowslip/internal/observability"
)

// NetworkLoader produces the station network for a detection run.
type NetworkLoader interface {
	LoadNetwork(ctx context.Context) (*domain.Network, error)
}

// CatalogPublisher delivers a finished catalog downstream.
type CatalogPublisher interface {
	PublishCatalog(ctx context.Context, catalog domain.Catalog) error
}

// Status is a snapshot of the most recent completed detection cycle. Ready is
// false until the first catalog has been published.
type Status struct {
	Ready         bool
	LastRun       time.Time
	Stations      int
	CatalogEvents int
	Warnings      int
}

// Pipeline orchestrates the load-detect-publish cycle. Daily coordinate
// solutions arrive in bulk once a day, so the cycle repeats on a fixed
// interval rather than streaming.
type Pipeline struct {
	loader    NetworkLoader
	detector  *detect.Detector
	publisher CatalogPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	interval  time.Duration

	mu     sync.Mutex
	status Status
}

// New creates a Pipeline. A non-positive interval means run once and return.
func New(loader NetworkLoader, detector *detect.Detector, publisher CatalogPublisher, logger *slog.Logger, metrics *observability.Metrics, interval time.Duration) *Pipeline {
	return &Pipeline{
		loader:    loader,
		detector:  detector,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		interval:  interval,
	}
}

// Status returns the last completed cycle's snapshot.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// CheckReadiness returns nil once at least one catalog has been published.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.Status().Ready {
		return errors.New("no catalog published yet")
	}
	return nil
}

// Run executes detection cycles until the context is cancelled. A failed cycle
// is logged and retried at the next interval; it never kills the service.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "interval", p.interval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	if err := p.runOnce(ctx); err != nil && ctx.Err() == nil {
		p.logger.Error("detection cycle failed", "error", err)
	}
	if p.interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := p.runOnce(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("detection cycle failed", "error", err)
			}
		}
	}
}

// runOnce performs one load-detect-publish cycle.
func (p *Pipeline) runOnce(ctx context.Context) error {
	start := time.Now()
	p.metrics.RunsTotal.Inc()

	net, err := p.loader.LoadNetwork(ctx)
	if err != nil {
		p.metrics.RunErrors.Inc()
		return err
	}
	p.metrics.StationsLoaded.Set(float64(len(net.Stations)))

	result, err := p.detector.Run(net)
	if err != nil {
		p.metrics.RunErrors.Inc()
		return err
	}
	p.observe(result)

	if err := p.publisher.PublishCatalog(ctx, result.Catalog); err != nil {
		p.metrics.RunErrors.Inc()
		return err
	}
	p.metrics.CatalogsPublished.Inc()
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())

	p.mu.Lock()
	p.status = Status{
		Ready:         true,
		LastRun:       start.UTC(),
		Stations:      len(net.Stations),
		CatalogEvents: len(result.Catalog.Events),
		Warnings:      len(result.Warnings),
	}
	p.mu.Unlock()

	p.logger.Info("catalog published",
		"events", len(result.Catalog.Events),
		"stations", len(net.Stations),
		"warnings", len(result.Warnings),
		"duration", time.Since(start),
	)
	return nil
}

// observe translates a detection result into metrics.
func (p *Pipeline) observe(result *detect.Result) {
	eventCount := 0
	for _, stationEvents := range result.Events {
		eventCount += len(stationEvents)
	}
	p.metrics.StationEvents.Set(float64(eventCount))
	p.metrics.CatalogEvents.Set(float64(len(result.Catalog.Events)))

	for _, w := range result.Warnings {
		var degenerate *detect.DegenerateThresholdError
		var singular *detect.SingularFitError
		var shape *detect.InputShapeError
		switch {
		case errors.As(w, &degenerate):
			p.metrics.DegenerateThresholds.Inc()
		case errors.As(w, &singular), errors.As(w, &shape):
			p.metrics.FitFailures.Inc()
		}
	}
}
