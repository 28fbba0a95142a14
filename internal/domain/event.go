package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// PerStationEvent is a contiguous run of anomalous-slope days at one station.
// Duration is inclusive: EndDay - StartDay + 1.
type PerStationEvent struct {
	Station  int
	StartDay int
	EndDay   int
	Duration int
}

// Spike is a network-level candidate event: an interval during which multiple
// stations are simultaneously inside their own detected events. Day is the
// interval midpoint. Felt lists the indices of stations whose detection mask
// overlaps [Begin, End] by at least one day.
type Spike struct {
	Begin int
	End   int
	Day   int
	Felt  []int
}

// Assignment binds a felt station to a catalog spike with the date span used
// for displacement estimation. Inherited marks spans adopted from the nearest
// felt neighbor rather than the station's own detection.
type Assignment struct {
	Station   int
	Spike     int
	StartDay  int
	Duration  int
	Inherited bool
}

// Displacement holds the fitted east/north displacement over an event and its
// one-sigma uncertainty. A component's OK flag is false when no estimate could
// be produced (too few observations or a singular fit); its values are then
// meaningless and must not be read.
type Displacement struct {
	East       float64
	EastSigma  float64
	EastOK     bool
	North      float64
	NorthSigma float64
	NorthOK    bool
}

// Motion is the serialized form of one component's displacement estimate.
type Motion struct {
	DisplacementMM float64 `json:"displacement_mm"`
	SigmaMM        float64 `json:"sigma_mm"`
}

// StationEstimate is one station's contribution to a catalog event.
type StationEstimate struct {
	Station      string    `json:"station"`
	Start        time.Time `json:"start"`
	DurationDays int       `json:"duration_days"`
	Inherited    bool      `json:"inherited,omitempty"`
	East         *Motion   `json:"east,omitempty"`
	North        *Motion   `json:"north,omitempty"`
}

// CatalogEvent is a finalized network-wide slow slip event.
type CatalogEvent struct {
	ID       string            `json:"id"`
	Begin    time.Time         `json:"begin"`
	End      time.Time         `json:"end"`
	Day      time.Time         `json:"day"`
	Stations []StationEstimate `json:"stations"`
}

// ComputeID produces a deterministic ID from the event's date span and
// participating stations. Deterministic IDs enable idempotent upserts
// downstream and replay safety: re-detecting over the same input yields the
// same ID.
func (e *CatalogEvent) ComputeID() string {
	names := make([]string, len(e.Stations))
	for i := range e.Stations {
		names[i] = e.Stations[i].Station
	}
	input := fmt.Sprintf("%s|%s|%s",
		e.Begin.Format("2006-01-02"), e.End.Format("2006-01-02"), strings.Join(names, ","))
	hash := sha256.Sum256([]byte(input))
	return "sse-" + hex.EncodeToString(hash[:8])
}

// Catalog is the result of one detection run over a network.
type Catalog struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Events      []CatalogEvent `json:"events"`
}

// NewCatalog stamps a catalog with the package clock and computes event IDs
// for any events missing one.
func NewCatalog(events []CatalogEvent) Catalog {
	for i := range events {
		if events[i].ID == "" {
			events[i].ID = events[i].ComputeID()
		}
	}
	return Catalog{GeneratedAt: clock.Now().UTC(), Events: events}
}
