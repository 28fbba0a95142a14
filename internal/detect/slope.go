package detect

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/geodesylab/slowslip/internal/domain"
)

// ScoreSet holds per-station, per-day slope scores for one window half-width.
// Scores are the local trend (mm/day) of each position component over a
// moving window of 2*HalfWidth+1 days. NaN marks days where fewer than two
// observations fall inside the window.
type ScoreSet struct {
	HalfWidth int
	East      [][]float64
	North     [][]float64
}

// ComputeScores evaluates the moving-window slope score for every station and
// day in the network.
func ComputeScores(net *domain.Network, halfWidth int) *ScoreSet {
	days := net.Days()
	set := &ScoreSet{
		HalfWidth: halfWidth,
		East:      make([][]float64, len(net.Stations)),
		North:     make([][]float64, len(net.Stations)),
	}
	for i := range net.Stations {
		s := &net.Stations[i]
		set.East[i] = slopeSeries(s, s.East, days, halfWidth)
		set.North[i] = slopeSeries(s, s.North, days, halfWidth)
	}
	return set
}

// slopeSeries computes the windowed slope at every day of one component.
func slopeSeries(s *domain.Station, pos []float64, days, halfWidth int) []float64 {
	scores := make([]float64, days)
	x := make([]float64, 0, 2*halfWidth+1)
	y := make([]float64, 0, 2*halfWidth+1)

	for d := 0; d < days; d++ {
		x = x[:0]
		y = y[:0]
		for w := d - halfWidth; w <= d+halfWidth; w++ {
			if w < 0 || w >= days || !s.Observed(w) {
				continue
			}
			x = append(x, float64(w))
			y = append(y, pos[w])
		}
		if len(x) < 2 {
			scores[d] = math.NaN()
			continue
		}
		_, slope := stat.LinearRegression(x, y, nil, false)
		scores[d] = slope
	}
	return scores
}

// ScoreCache memoizes score sets by integer window half-width so repeated
// detection runs over the same network reuse them. The cache is owned by the
// caller and is only valid for the network it was populated from.
type ScoreCache struct {
	mu   sync.Mutex
	sets map[int]*ScoreSet
}

// NewScoreCache returns an empty cache.
func NewScoreCache() *ScoreCache {
	return &ScoreCache{sets: make(map[int]*ScoreSet)}
}

// Scores returns the cached score set for the given half-width, computing and
// storing it on first use.
func (c *ScoreCache) Scores(net *domain.Network, halfWidth int) *ScoreSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	if set, ok := c.sets[halfWidth]; ok {
		return set
	}
	set := ComputeScores(net, halfWidth)
	c.sets[halfWidth] = set
	return set
}
