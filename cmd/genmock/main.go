// Command genmock generates a synthetic GNSS network fixture with injected
// slow slip transients of known onset, duration, and magnitude. It writes the
// posfile network format consumed by cmd/detect and cmd/validate, so the full
// detection chain can be exercised against ground truth.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/network.json \
//	  -stations 16 -days 365 -seed 42
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/geodesylab/slowslip/internal/adapter/posfile"
)

// Network centered on southern Vancouver Island, where episodic tremor and
// slip recurs every 13-16 months.
const (
	centerLat = 48.4
	centerLon = -123.4
	// gridStep spaces stations roughly 28 km apart in latitude.
	gridStep = 0.25
)

// transient describes one injected slow slip event.
type transient struct {
	onset     int     // day index of onset
	duration  int     // days
	magnitude float64 // mm of eastward motion (negative = trenchward reversal)
	jitter    int     // max per-station onset offset in days
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/network.json", "output path for the network fixture")
	stations := flag.Int("stations", 16, "number of stations in the synthetic network")
	days := flag.Int("days", 365, "length of the daily calendar")
	seed := flag.Int64("seed", 42, "random seed for reproducible fixtures")
	start := flag.String("start", "2023-01-01", "calendar start date (YYYY-MM-DD)")
	flag.Parse()

	startDate, err := time.Parse("2006-01-02", *start)
	if err != nil {
		return fmt.Errorf("invalid -start: %w", err)
	}

	rng := rand.New(rand.NewSource(*seed))

	events := []transient{
		{onset: 100, duration: 21, magnitude: -6.0, jitter: 3},
		{onset: 250, duration: 14, magnitude: -4.5, jitter: 3},
	}

	file := generate(rng, *stations, *days, startDate, events)

	if err := writeJSON(*out, file); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote fixture: %s (%d stations, %d days)", *out, *stations, *days)
	for _, ev := range events {
		log.Printf("injected transient: onset day %d, %d days, %.1f mm east", ev.onset, ev.duration, ev.magnitude)
	}
	return nil
}

// generate builds the synthetic network. Every station carries white noise and
// a small secular trend; stations participating in a transient add a linear
// ramp of the event's magnitude over its duration, with per-station onset
// jitter mimicking along-strike propagation.
func generate(rng *rand.Rand, stations, days int, start time.Time, events []transient) *posfile.NetworkFile {
	file := &posfile.NetworkFile{
		Epochs:   make([]time.Time, days),
		Stations: make([]posfile.StationFile, stations),
	}
	for d := 0; d < days; d++ {
		file.Epochs[d] = start.AddDate(0, 0, d)
	}

	for i := 0; i < stations; i++ {
		sf := posfile.StationFile{
			Name:       fmt.Sprintf("SY%02d", i),
			Lat:        centerLat + float64(i/4)*gridStep + rng.Float64()*0.05,
			Lon:        centerLon + float64(i%4)*gridStep + rng.Float64()*0.05,
			Observed:   make([]bool, days),
			East:       make([]float64, days),
			EastSigma:  make([]float64, days),
			North:      make([]float64, days),
			NorthSigma: make([]float64, days),
		}

		// A late-installed station exercises the operational-window bounds.
		installed := 0
		if i == stations-1 {
			installed = 150
		}

		// Per-station onset offsets, fixed for the whole series.
		offsets := make([]int, len(events))
		for k, ev := range events {
			offsets[k] = rng.Intn(2*ev.jitter+1) - ev.jitter
		}

		secular := (rng.Float64() - 0.5) * 0.01 // mm/day interseismic drift

		for d := 0; d < days; d++ {
			if d < installed || rng.Float64() < 0.02 {
				continue // outage or pre-installation gap
			}
			sf.Observed[d] = true

			east := secular*float64(d) + rng.NormFloat64()*1.2
			north := rng.NormFloat64() * 1.2
			for k, ev := range events {
				onset := ev.onset + offsets[k]
				switch {
				case d >= onset+ev.duration:
					east += ev.magnitude
				case d >= onset:
					east += ev.magnitude * float64(d-onset) / float64(ev.duration)
				}
			}

			sf.East[d] = east
			sf.North[d] = north
			sf.EastSigma[d] = 1.5 + rng.Float64()*0.5
			sf.NorthSigma[d] = 1.5 + rng.Float64()*0.5
		}
		file.Stations[i] = sf
	}
	return file
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
