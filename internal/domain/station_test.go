package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesStation(days int, observed ...int) Station {
	epoch := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	s := Station{
		Name:       "ALBH",
		Days:       make([]time.Time, days),
		East:       make([]float64, days),
		EastSigma:  make([]float64, days),
		North:      make([]float64, days),
		NorthSigma: make([]float64, days),
	}
	for _, d := range observed {
		s.Days[d] = epoch.AddDate(0, 0, d)
	}
	return s
}

func TestStation_ObservationWindow(t *testing.T) {
	s := seriesStation(10, 2, 3, 7)

	assert.Equal(t, 2, s.FirstDay())
	assert.Equal(t, 7, s.LastDay())
	assert.True(t, s.Observed(3))
	assert.False(t, s.Observed(4))
	assert.False(t, s.Observed(-1))
	assert.False(t, s.Observed(10))
}

func TestStation_NeverObserved(t *testing.T) {
	s := seriesStation(10)
	assert.Equal(t, -1, s.FirstDay())
	assert.Equal(t, -1, s.LastDay())
}

func TestStation_ObservedCount(t *testing.T) {
	s := seriesStation(10, 2, 3, 7)

	assert.Equal(t, 2, s.ObservedCount(0, 5))  // days 0-4
	assert.Equal(t, 3, s.ObservedCount(0, 10)) // full calendar
	assert.Equal(t, 1, s.ObservedCount(5, 20)) // range clipped at the end
	assert.Equal(t, 0, s.ObservedCount(4, 3))
}

func TestNetwork_Validate(t *testing.T) {
	epoch := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	net := &Network{
		Epochs:   []time.Time{epoch, epoch.AddDate(0, 0, 1)},
		Stations: []Station{seriesStation(2, 0)},
	}
	require.NoError(t, net.Validate())
	assert.Equal(t, 2, net.Days())

	net.Stations = append(net.Stations, seriesStation(3, 0))
	err := net.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "length mismatch")

	empty := &Network{}
	assert.Error(t, empty.Validate())
}
