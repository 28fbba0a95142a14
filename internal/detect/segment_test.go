package detect

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geodesylab/slowslip/internal/domain"
)

func TestBoolRuns(t *testing.T) {
	tests := []struct {
		name string
		mask []bool
		want [][2]int
	}{
		{"empty", nil, nil},
		{"all false", []bool{false, false, false}, nil},
		{"all true", []bool{true, true, true}, [][2]int{{0, 2}}},
		{"single day", []bool{false, true, false}, [][2]int{{1, 1}}},
		{"run at start", []bool{true, true, false}, [][2]int{{0, 1}}},
		{"run at end", []bool{false, true, true}, [][2]int{{1, 2}}},
		{"two runs", []bool{true, false, true, true}, [][2]int{{0, 0}, {2, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, boolRuns(tt.mask))
		})
	}
}

func TestSegmentEvents_DurationFloor(t *testing.T) {
	// One run of exactly minDuration and one a day shorter.
	scores := make([]float64, 60)
	for d := 5; d < 15; d++ { // 10 days
		scores[d] = -1
	}
	for d := 30; d < 39; d++ { // 9 days
		scores[d] = -1
	}

	events := SegmentEvents(0, scores, -0.5, 1, 10)
	require.Len(t, events, 1)
	assert.Equal(t, 5, events[0].StartDay)
	assert.Equal(t, 14, events[0].EndDay)
	assert.Equal(t, 10, events[0].Duration)
}

func TestSegmentEvents_ScoreSign(t *testing.T) {
	scores := make([]float64, 30)
	for d := 0; d < 15; d++ {
		scores[d] = 1 // positive raw score: anomalous only under a flipped sign
	}

	assert.Empty(t, SegmentEvents(0, scores, -0.5, 1, 10))

	events := SegmentEvents(0, scores, -0.5, -1, 10)
	require.Len(t, events, 1)
	assert.Equal(t, 0, events[0].StartDay)
	assert.Equal(t, 15, events[0].Duration)
}

func TestSegmentEvents_NaNNeverAnomalous(t *testing.T) {
	scores := make([]float64, 30)
	for d := 0; d < 20; d++ {
		scores[d] = -1
	}
	scores[10] = math.NaN() // splits the run into two short halves

	events := SegmentEvents(0, scores, -0.5, 1, 10)
	require.Len(t, events, 1)
	assert.Equal(t, 0, events[0].StartDay)
	assert.Equal(t, 9, events[0].EndDay)
}

func TestSegmentAll_SkipsStationsWithoutThreshold(t *testing.T) {
	scores := [][]float64{
		repeatScore(-1, 20),
		repeatScore(-1, 20),
	}
	thresholds := map[int]float64{1: -0.5} // station 0 has no threshold

	events := SegmentAll(scores, thresholds, 1, 10)
	assert.Empty(t, events[0])
	require.Len(t, events[1], 1)
	assert.Equal(t, domain.PerStationEvent{Station: 1, StartDay: 0, EndDay: 19, Duration: 20}, events[1][0])
}

func repeatScore(v float64, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}
