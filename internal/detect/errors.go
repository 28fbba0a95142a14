package detect

import (
	"errors"
	"fmt"
)

// ErrNoNegativeScores marks a station whose slope-score distribution contains
// no negative values, so no detection threshold exists for it.
var ErrNoNegativeScores = errors.New("no negative slope scores")

// DegenerateThresholdError reports a station for which no percentile threshold
// could be derived. The station contributes no events; the run continues.
type DegenerateThresholdError struct {
	Station string
}

func (e *DegenerateThresholdError) Error() string {
	return fmt.Sprintf("station %s: %v", e.Station, ErrNoNegativeScores)
}

func (e *DegenerateThresholdError) Unwrap() error { return ErrNoNegativeScores }

// InputShapeError reports an operation that required more observations than a
// station could supply, or mismatched series dimensions. Local to the affected
// station/event.
type InputShapeError struct {
	Station string
	Reason  string
}

func (e *InputShapeError) Error() string {
	return fmt.Sprintf("station %s: %s", e.Station, e.Reason)
}

// SingularFitError reports a weighted design matrix that was singular or
// near-singular for one (station, event) fit. The displacement is left
// unreported; the run continues.
type SingularFitError struct {
	Station   string
	Spike     int
	Component string
}

func (e *SingularFitError) Error() string {
	return fmt.Sprintf("station %s spike %d %s: singular weighted design matrix", e.Station, e.Spike, e.Component)
}

// ConfigError reports invalid detection parameters. Fatal: no per-station work
// begins after one is returned.
type ConfigError struct {
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("detect config: %s %s", e.Param, e.Reason)
}
