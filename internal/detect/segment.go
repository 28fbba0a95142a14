package detect

import (
	"math"

	"github.com/geodesylab/slowslip/internal/domain"
)

// boolRuns extracts maximal runs of true values via forward difference on the
// sequence padded with false at both ends: a run starts on a 0→1 transition
// and ends on the following 1→0 transition. Returned pairs are inclusive
// [start, end] indices.
func boolRuns(mask []bool) [][2]int {
	var runs [][2]int
	start := -1
	for d := 0; d <= len(mask); d++ {
		inside := d < len(mask) && mask[d]
		switch {
		case inside && start < 0:
			start = d
		case !inside && start >= 0:
			runs = append(runs, [2]int{start, d - 1})
			start = -1
		}
	}
	return runs
}

// SegmentEvents converts one station's score series into discrete events. A
// day is anomalous iff scoreSign*score < threshold; maximal anomalous runs
// shorter than minDuration days are discarded entirely, not truncated.
func SegmentEvents(station int, scores []float64, threshold, scoreSign float64, minDuration int) []domain.PerStationEvent {
	mask := make([]bool, len(scores))
	for d, s := range scores {
		mask[d] = !math.IsNaN(s) && scoreSign*s < threshold
	}

	var events []domain.PerStationEvent
	for _, run := range boolRuns(mask) {
		duration := run[1] - run[0] + 1
		if duration < minDuration {
			continue
		}
		events = append(events, domain.PerStationEvent{
			Station:  station,
			StartDay: run[0],
			EndDay:   run[1],
			Duration: duration,
		})
	}
	return events
}

// SegmentAll runs segmentation for every station with a defined threshold.
// Stations absent from the threshold map yield no events.
func SegmentAll(scores [][]float64, thresholds map[int]float64, scoreSign float64, minDuration int) [][]domain.PerStationEvent {
	events := make([][]domain.PerStationEvent, len(scores))
	for i := range scores {
		t, ok := thresholds[i]
		if !ok {
			continue
		}
		events[i] = SegmentEvents(i, scores[i], t, scoreSign, minDuration)
	}
	return events
}
