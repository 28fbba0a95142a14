package detect

import (
	"log/slog"

	"github.com/geodesylab/slowslip/internal/domain"
)

// Params configures one detection run. WindowHalfWidth and PropThresh have no
// sensible defaults and must be set; the rest default via DefaultParams. The
// corroboration and inference fractions are hand-tuned operational constants
// with no derivation; they are exposed here rather than hard-coded so network
// operators can retune them.
type Params struct {
	// WindowHalfWidth is the slope-scoring window half-width in days, also
	// used as the temporal corroboration tolerance between stations.
	WindowHalfWidth int
	// PropThresh is the proportion (0,1) of the most negative slope scores
	// used as the per-station detection threshold.
	PropThresh float64
	// NeighborDistanceKm is the maximum distance for two stations to be
	// considered neighbors.
	NeighborDistanceKm float64
	// MinStations is the minimum felt-station count for a catalog spike.
	MinStations int
	// ScoreSign is multiplied into raw slope scores before thresholding,
	// absorbing sign-convention differences between solution providers.
	ScoreSign float64
	// MinDurationDays is the shortest per-station event retained.
	MinDurationDays int
	// CorroborationFrac is the fraction of a station's neighbors that must
	// corroborate an event for it to survive filtering.
	CorroborationFrac float64
	// ReverseNeighborFrac is the fraction of felt neighbors above which a
	// non-detecting station is handled per Inference.
	ReverseNeighborFrac float64
	// Inference selects the reverse-neighbor treatment.
	Inference InferenceMode
	// Component selects the position component driving detection.
	Component string
	// Distance is the geodetic distance capability.
	Distance domain.DistanceFunc
}

// Detection component choices.
const (
	ComponentEast  = "east"
	ComponentNorth = "north"
)

// DefaultParams returns Params with operational defaults for the required
// window half-width and threshold proportion.
func DefaultParams(halfWidth int, propThresh float64) Params {
	return Params{
		WindowHalfWidth:     halfWidth,
		PropThresh:          propThresh,
		NeighborDistanceKm:  100,
		MinStations:         10,
		ScoreSign:           1,
		MinDurationDays:     10,
		CorroborationFrac:   0.1,
		ReverseNeighborFrac: 1.0 / 3.0,
		Inference:           InferenceOff,
		Component:           ComponentEast,
		Distance:            domain.EllipsoidalDistance,
	}
}

// Validate fails fast on parameters that would corrupt a run.
func (p *Params) Validate() error {
	switch {
	case p.WindowHalfWidth <= 0:
		return &ConfigError{Param: "WindowHalfWidth", Reason: "must be positive"}
	case p.PropThresh <= 0 || p.PropThresh >= 1:
		return &ConfigError{Param: "PropThresh", Reason: "must be in (0,1)"}
	case p.NeighborDistanceKm <= 0:
		return &ConfigError{Param: "NeighborDistanceKm", Reason: "must be positive"}
	case p.MinStations < minConcurrent:
		return &ConfigError{Param: "MinStations", Reason: "must be at least 2"}
	case p.ScoreSign != 1 && p.ScoreSign != -1:
		return &ConfigError{Param: "ScoreSign", Reason: "must be 1 or -1"}
	case p.MinDurationDays <= 0:
		return &ConfigError{Param: "MinDurationDays", Reason: "must be positive"}
	case p.CorroborationFrac <= 0 || p.CorroborationFrac > 1:
		return &ConfigError{Param: "CorroborationFrac", Reason: "must be in (0,1]"}
	case p.ReverseNeighborFrac <= 0 || p.ReverseNeighborFrac >= 1:
		return &ConfigError{Param: "ReverseNeighborFrac", Reason: "must be in (0,1)"}
	case p.Component != ComponentEast && p.Component != ComponentNorth:
		return &ConfigError{Param: "Component", Reason: "must be east or north"}
	case p.Distance == nil:
		return &ConfigError{Param: "Distance", Reason: "is required"}
	}
	return nil
}

// Result is the immutable product of one detection run. Each field is the
// complete output of its stage; nothing is mutated after Run returns.
type Result struct {
	Scores        *ScoreSet
	Thresholds    map[int]float64
	Events        [][]domain.PerStationEvent
	Coverage      [][]bool
	Spikes        []domain.Spike
	Assignments   []domain.Assignment
	NeighborFelt  [][]int
	Displacements map[[2]int]domain.Displacement
	Catalog       domain.Catalog
	// Warnings collects per-station and per-fit failures that degraded
	// locally without aborting the run.
	Warnings []error
}

// Detector runs the detection pipeline over a network.
type Detector struct {
	params Params
	cache  *ScoreCache
	logger *slog.Logger
}

// New validates the parameters and creates a Detector. Pass a nil cache to
// recompute slope scores on every run.
func New(params Params, cache *ScoreCache, logger *slog.Logger) (*Detector, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Detector{params: params, cache: cache, logger: logger}, nil
}

// Run executes the full pipeline: slope scoring, thresholding, segmentation,
// neighbor filtering, spike aggregation, cataloging, and displacement
// estimation. Per-station and per-fit failures degrade to "no detection" or
// "no estimate" and are collected on the Result.
func (d *Detector) Run(net *domain.Network) (*Result, error) {
	if err := net.Validate(); err != nil {
		return nil, err
	}
	p := d.params
	days := net.Days()

	var scores *ScoreSet
	if d.cache != nil {
		scores = d.cache.Scores(net, p.WindowHalfWidth)
	} else {
		scores = ComputeScores(net, p.WindowHalfWidth)
	}
	componentScores := scores.East
	if p.Component == ComponentNorth {
		componentScores = scores.North
	}

	names := make([]string, len(net.Stations))
	firstDays := make([]int, len(net.Stations))
	for i := range net.Stations {
		names[i] = net.Stations[i].Name
		firstDays[i] = net.Stations[i].FirstDay()
	}

	graph := BuildNeighborGraph(net.Stations, p.Distance, p.NeighborDistanceKm)

	thresholds, warnings := EstimateThresholds(componentScores, names, p.PropThresh)
	for _, w := range warnings {
		d.logger.Warn("no detection threshold, station yields no events", "error", w)
	}

	events := SegmentAll(componentScores, thresholds, p.ScoreSign, p.MinDurationDays)
	events = FilterByNeighbors(events, graph, firstDays, p.WindowHalfWidth, p.CorroborationFrac)
	coverage := CoverageMask(events, days)

	spikes := DetectSpikes(coverage, days, p.WindowHalfWidth, p.MinStations)
	d.logger.Info("spikes cataloged", "count", len(spikes))

	assignments, neighborFelt := CatalogAssignments(net, spikes, events, graph, p.Inference, p.ReverseNeighborFrac)

	displacements, fitErrs := EstimateDisplacements(net, assignments)
	for _, err := range fitErrs {
		d.logger.Warn("displacement estimate unavailable", "error", err)
	}
	warnings = append(warnings, fitErrs...)

	return &Result{
		Scores:        scores,
		Thresholds:    thresholds,
		Events:        events,
		Coverage:      coverage,
		Spikes:        spikes,
		Assignments:   assignments,
		NeighborFelt:  neighborFelt,
		Displacements: displacements,
		Catalog:       buildCatalog(net, spikes, assignments, displacements),
		Warnings:      warnings,
	}, nil
}

// buildCatalog assembles the serializable catalog from the run's spikes,
// assignments, and fitted displacements.
func buildCatalog(net *domain.Network, spikes []domain.Spike, assignments []domain.Assignment, displacements map[[2]int]domain.Displacement) domain.Catalog {
	events := make([]domain.CatalogEvent, len(spikes))
	for k, s := range spikes {
		events[k] = domain.CatalogEvent{
			Begin: net.Epochs[s.Begin],
			End:   net.Epochs[s.End],
			Day:   net.Epochs[s.Day],
		}
	}
	for _, a := range assignments {
		s := &net.Stations[a.Station]
		est := domain.StationEstimate{
			Station:      s.Name,
			Start:        net.Epochs[a.StartDay],
			DurationDays: a.Duration,
			Inherited:    a.Inherited,
		}
		if disp, ok := displacements[[2]int{a.Station, a.Spike}]; ok {
			if disp.EastOK {
				est.East = &domain.Motion{DisplacementMM: disp.East, SigmaMM: disp.EastSigma}
			}
			if disp.NorthOK {
				est.North = &domain.Motion{DisplacementMM: disp.North, SigmaMM: disp.NorthSigma}
			}
		}
		events[a.Spike].Stations = append(events[a.Spike].Stations, est)
	}
	return domain.NewCatalog(events)
}
