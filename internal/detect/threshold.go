package detect

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const thresholdBins = 100

// estimateThreshold derives a station's detection threshold from the
// distribution of its strictly negative slope scores: a 100-bin histogram is
// accumulated from the most negative end and the threshold is the upper edge
// of the first bin where the cumulative proportion exceeds prop.
//
// Returns ErrNoNegativeScores when the station has no negative scores; such a
// station can never trigger a detection and must be skipped by callers.
func estimateThreshold(scores []float64, prop float64) (float64, error) {
	var negatives []float64
	for _, s := range scores {
		if !math.IsNaN(s) && s < 0 {
			negatives = append(negatives, s)
		}
	}
	if len(negatives) == 0 {
		return 0, ErrNoNegativeScores
	}

	low := floats.Min(negatives)
	high := floats.Max(negatives)
	if low == high {
		// Single-valued distribution: the only score is its own percentile.
		return low, nil
	}

	width := (high - low) / thresholdBins
	counts := make([]int, thresholdBins)
	for _, s := range negatives {
		bin := int((s - low) / width)
		if bin >= thresholdBins {
			bin = thresholdBins - 1
		}
		counts[bin]++
	}

	total := float64(len(negatives))
	cumulative := 0
	for bin, c := range counts {
		cumulative += c
		if float64(cumulative)/total > prop {
			return low + width*float64(bin+1), nil
		}
	}
	return high, nil
}

// EstimateThresholds computes per-station thresholds over a station-major
// score matrix. Stations without negative scores are absent from the returned
// map; their errors are reported in order alongside it.
func EstimateThresholds(scores [][]float64, stationNames []string, prop float64) (map[int]float64, []error) {
	thresholds := make(map[int]float64, len(scores))
	var errs []error
	for i, stationScores := range scores {
		t, err := estimateThreshold(stationScores, prop)
		if err != nil {
			errs = append(errs, &DegenerateThresholdError{Station: stationNames[i]})
			continue
		}
		thresholds[i] = t
	}
	return thresholds, errs
}
