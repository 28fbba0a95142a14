package detect

import (
	"math"

	"github.com/geodesylab/slowslip/internal/domain"
)

// NeighborGraph is the station adjacency derived from pairwise distances and a
// distance threshold. Two stations are neighbors iff their distance is greater
// than zero (a station is never its own neighbor) and at most the threshold.
type NeighborGraph struct {
	// Dist is the symmetric pairwise distance matrix in kilometers, with the
	// diagonal set to +Inf so self-pairs never qualify.
	Dist [][]float64
	// Neighbors lists, per station, the indices of its neighbors.
	Neighbors [][]int
}

// BuildNeighborGraph computes all pairwise distances with the given capability
// and thresholds them at maxKm.
func BuildNeighborGraph(stations []domain.Station, distance domain.DistanceFunc, maxKm float64) *NeighborGraph {
	n := len(stations)
	g := &NeighborGraph{
		Dist:      make([][]float64, n),
		Neighbors: make([][]int, n),
	}
	for i := 0; i < n; i++ {
		g.Dist[i] = make([]float64, n)
		g.Dist[i][i] = math.Inf(1)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := distance(stations[i].Lat, stations[i].Lon, stations[j].Lat, stations[j].Lon)
			g.Dist[i][j] = d
			g.Dist[j][i] = d
			if d > 0 && d <= maxKm {
				g.Neighbors[i] = append(g.Neighbors[i], j)
				g.Neighbors[j] = append(g.Neighbors[j], i)
			}
		}
	}
	return g
}
