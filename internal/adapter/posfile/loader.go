// Package posfile loads station networks from the bulk JSON fixtures produced
// by the daily solution provider (and by cmd/genmock for tests). One file per
// network: a shared epoch calendar plus dense per-station series.
package posfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/geodesylab/slowslip/internal/domain"
)

// NetworkFile is the on-disk network fixture format.
type NetworkFile struct {
	Epochs   []time.Time   `json:"epochs"`
	Stations []StationFile `json:"stations"`
}

// StationFile is one station's series in the fixture. Observed marks days with
// a valid solution; position and sigma arrays hold zeros elsewhere.
type StationFile struct {
	Name       string    `json:"name"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	Observed   []bool    `json:"observed"`
	East       []float64 `json:"east"`
	EastSigma  []float64 `json:"east_sigma"`
	North      []float64 `json:"north"`
	NorthSigma []float64 `json:"north_sigma"`
}

// Loader reads the network fixture from a data directory.
// It implements pipeline.NetworkLoader.
type Loader struct {
	path   string
	logger *slog.Logger
}

// NewLoader creates a loader for dir/network.json.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	return &Loader{path: filepath.Join(dir, "network.json"), logger: logger}
}

// LoadNetwork reads and decodes the fixture into a validated domain network.
func (l *Loader) LoadNetwork(_ context.Context) (*domain.Network, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read network fixture: %w", err)
	}
	var file NetworkFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode network fixture %s: %w", l.path, err)
	}

	net, err := file.ToNetwork()
	if err != nil {
		return nil, err
	}
	l.logger.Info("network loaded", "path", l.path, "stations", len(net.Stations), "days", net.Days())
	return net, nil
}

// ToNetwork converts the fixture into a domain network, deriving per-station
// day arrays from the shared calendar and the observed mask.
func (f *NetworkFile) ToNetwork() (*domain.Network, error) {
	net := &domain.Network{
		Epochs:   f.Epochs,
		Stations: make([]domain.Station, len(f.Stations)),
	}
	for i, sf := range f.Stations {
		if len(sf.Observed) != len(f.Epochs) {
			return nil, fmt.Errorf("station %s: observed mask length %d, calendar %d days", sf.Name, len(sf.Observed), len(f.Epochs))
		}
		days := make([]time.Time, len(f.Epochs))
		for d, obs := range sf.Observed {
			if obs {
				days[d] = f.Epochs[d]
			}
		}
		net.Stations[i] = domain.Station{
			Name:       sf.Name,
			Lat:        sf.Lat,
			Lon:        sf.Lon,
			Days:       days,
			East:       sf.East,
			EastSigma:  sf.EastSigma,
			North:      sf.North,
			NorthSigma: sf.NorthSigma,
		}
	}
	if err := net.Validate(); err != nil {
		return nil, err
	}
	return net, nil
}
