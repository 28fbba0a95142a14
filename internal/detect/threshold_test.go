package detect

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateThreshold_PercentileOfNegatives(t *testing.T) {
	// 10 deep scores at -10 and 190 shallow ones at -1: the deep cluster is
	// exactly the most negative 5%, so any prop below 0.05 cuts just above it.
	scores := make([]float64, 0, 200)
	for i := 0; i < 10; i++ {
		scores = append(scores, -10)
	}
	for i := 0; i < 190; i++ {
		scores = append(scores, -1)
	}

	threshold, err := estimateThreshold(scores, 0.04)
	require.NoError(t, err)

	// Upper edge of the first bin: -10 + (9/100).
	assert.InDelta(t, -9.91, threshold, 1e-9)
}

func TestEstimateThreshold_IgnoresPositivesAndNaN(t *testing.T) {
	scores := []float64{5, 2, math.NaN(), -3, -3, 0}
	threshold, err := estimateThreshold(scores, 0.5)
	require.NoError(t, err)
	assert.Equal(t, -3.0, threshold) // single-valued negative distribution
}

func TestEstimateThreshold_NoNegatives(t *testing.T) {
	_, err := estimateThreshold([]float64{0, 1, 2, math.NaN()}, 0.1)
	require.ErrorIs(t, err, ErrNoNegativeScores)
}

func TestEstimateThresholds_DegenerateStationAbsent(t *testing.T) {
	scores := [][]float64{
		{-1, -2, -3},
		{1, 2, 3}, // never negative
	}
	thresholds, errs := EstimateThresholds(scores, []string{"AAAA", "BBBB"}, 0.5)

	assert.Contains(t, thresholds, 0)
	assert.NotContains(t, thresholds, 1)

	require.Len(t, errs, 1)
	var degenerate *DegenerateThresholdError
	require.ErrorAs(t, errs[0], &degenerate)
	assert.Equal(t, "BBBB", degenerate.Station)
	assert.ErrorIs(t, errs[0], ErrNoNegativeScores)
}
