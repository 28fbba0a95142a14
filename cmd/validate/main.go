// Command validate runs the detection pipeline over a network fixture and
// checks the structural invariants of its output: per-station event duration
// floors, spike ordering and midpoint placement, catalog non-overlap, minimum
// participation, and displacement sanity. It exits non-zero when any phase
// fails, making it suitable for CI over generated fixtures.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -data data \
//	  -half-width 5 -prop-thresh 0.02 -min-stations 4 -neighbor-km 100
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/geodesylab/slowslip/internal/adapter/posfile"
	"github.com/geodesylab/slowslip/internal/detect"
	"github.com/geodesylab/slowslip/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data", "data", "directory containing network.json")
	halfWidth := flag.Int("half-width", 5, "slope window half-width in days")
	propThresh := flag.Float64("prop-thresh", 0.02, "negative-score percentile proportion")
	minStations := flag.Int("min-stations", 4, "minimum felt stations per catalog event")
	neighborKm := flag.Float64("neighbor-km", 100, "neighbor distance threshold in km")
	flag.Parse()

	if code := run(*dataDir, *halfWidth, *propThresh, *minStations, *neighborKm); code != 0 {
		os.Exit(code)
	}
}

func run(dataDir string, halfWidth int, propThresh float64, minStations int, neighborKm float64) int {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	loader := posfile.NewLoader(dataDir, logger)
	net, err := loader.LoadNetwork(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "load network: %v\n", err)
		return 1
	}

	params := detect.DefaultParams(halfWidth, propThresh)
	params.MinStations = minStations
	params.NeighborDistanceKm = neighborKm
	detector, err := detect.New(params, nil, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "detector: %v\n", err)
		return 1
	}

	result, err := detector.Run(net)
	if err != nil {
		fmt.Fprintf(os.Stderr, "detection run: %v\n", err)
		return 1
	}

	phases := []*phase{
		checkEvents(result, params.MinDurationDays),
		checkSpikes(result, net, minStations),
		checkDeterminism(detector, net, result),
		checkDisplacements(result),
	}

	failed := 0
	for _, p := range phases {
		if p.passed() {
			fmt.Printf("PASS %s\n", p.name)
			continue
		}
		failed++
		fmt.Printf("FAIL %s\n", p.name)
		for _, e := range p.errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	fmt.Printf("%d/%d phases passed (%d catalog events, %d warnings)\n",
		len(phases)-failed, len(phases), len(result.Catalog.Events), len(result.Warnings))
	if failed > 0 {
		return 1
	}
	return 0
}

func checkEvents(result *detect.Result, minDuration int) *phase {
	p := &phase{name: "per-station events"}
	for i, stationEvents := range result.Events {
		for _, ev := range stationEvents {
			if ev.Duration < minDuration {
				p.errorf("station %d: event at day %d has duration %d < %d", i, ev.StartDay, ev.Duration, minDuration)
			}
			if ev.Duration != ev.EndDay-ev.StartDay+1 {
				p.errorf("station %d: event at day %d has inconsistent duration", i, ev.StartDay)
			}
		}
	}
	return p
}

func checkSpikes(result *detect.Result, net *domain.Network, minStations int) *phase {
	p := &phase{name: "catalog spikes"}
	for k, s := range result.Spikes {
		if s.Begin > s.Day || s.Day > s.End {
			p.errorf("spike %d: day %d outside [%d, %d]", k, s.Day, s.Begin, s.End)
		}
		if want := s.Begin + (s.End-s.Begin+1)/2; s.Day != want {
			p.errorf("spike %d: day %d, want midpoint %d", k, s.Day, want)
		}
		if len(s.Felt) < minStations {
			p.errorf("spike %d: felt by %d stations, minimum %d", k, len(s.Felt), minStations)
		}
		if s.End >= net.Days() {
			p.errorf("spike %d: end %d beyond calendar", k, s.End)
		}
		if k > 0 && s.Begin < result.Spikes[k-1].End {
			p.errorf("spike %d: begins at %d before previous spike ends at %d", k, s.Begin, result.Spikes[k-1].End)
		}
		if k > 0 && s.Day <= result.Spikes[k-1].Day {
			p.errorf("spike %d: not ordered by day", k)
		}
	}
	return p
}

// checkDeterminism re-runs detection and requires an identical spike list:
// the merge passes must be idempotent and the whole run reproducible.
func checkDeterminism(detector *detect.Detector, net *domain.Network, first *detect.Result) *phase {
	p := &phase{name: "determinism"}
	second, err := detector.Run(net)
	if err != nil {
		p.errorf("second run failed: %v", err)
		return p
	}
	if len(second.Spikes) != len(first.Spikes) {
		p.errorf("spike count changed between runs: %d vs %d", len(first.Spikes), len(second.Spikes))
		return p
	}
	for k := range first.Spikes {
		a, b := first.Spikes[k], second.Spikes[k]
		if a.Begin != b.Begin || a.End != b.End || a.Day != b.Day {
			p.errorf("spike %d changed between runs", k)
		}
	}
	return p
}

func checkDisplacements(result *detect.Result) *phase {
	p := &phase{name: "displacements"}
	for key, d := range result.Displacements {
		if d.EastOK && (math.IsNaN(d.East) || d.EastSigma <= 0) {
			p.errorf("station %d spike %d: invalid east estimate", key[0], key[1])
		}
		if d.NorthOK && (math.IsNaN(d.North) || d.NorthSigma <= 0) {
			p.errorf("station %d spike %d: invalid north estimate", key[0], key[1])
		}
	}
	return p
}
