package detect

import (
	"github.com/geodesylab/slowslip/internal/domain"
)

// InferenceMode selects how stations that did not detect a catalog spike, but
// whose neighbors overwhelmingly did, are treated.
type InferenceMode int

const (
	// InferenceOff performs no reverse-neighbor inference.
	InferenceOff InferenceMode = iota
	// InferenceExclude marks such stations as neighbor-felt but keeps them out
	// of displacement estimation.
	InferenceExclude
	// InferenceInherit assigns such stations the nearest felt neighbor's start
	// and duration, reverting when fewer than half the expected observation
	// days are present.
	InferenceInherit
)

// CatalogAssignments maps each station's own events onto the catalog spikes
// and produces the (station, spike) date spans used for displacement
// estimation. A station is felt iff one of its own events starts within
// [Begin, End); a station whose observation window does not contain the
// spike's day is forced to not-felt regardless. With inference enabled, a
// not-felt station where more than frac of its neighbors felt the spike is
// handled per the mode. The second return lists, per spike, stations marked
// neighbor-felt but excluded from estimation.
func CatalogAssignments(net *domain.Network, spikes []domain.Spike, events [][]domain.PerStationEvent, graph *NeighborGraph, mode InferenceMode, frac float64) ([]domain.Assignment, [][]int) {
	firstDays := make([]int, len(net.Stations))
	lastDays := make([]int, len(net.Stations))
	for i := range net.Stations {
		firstDays[i] = net.Stations[i].FirstDay()
		lastDays[i] = net.Stations[i].LastDay()
	}

	var assignments []domain.Assignment
	neighborFelt := make([][]int, len(spikes))

	for k, spike := range spikes {
		felt := make(map[int]domain.PerStationEvent)
		for i := range net.Stations {
			if !inWindow(spike.Day, firstDays[i], lastDays[i]) {
				continue
			}
			if ev, ok := ownEvent(events[i], spike); ok {
				felt[i] = ev
			}
		}

		for i := range net.Stations {
			if ev, ok := felt[i]; ok {
				assignments = append(assignments, domain.Assignment{
					Station:  i,
					Spike:    k,
					StartDay: ev.StartDay,
					Duration: ev.Duration,
				})
			}
		}

		if mode == InferenceOff {
			continue
		}

		for i := range net.Stations {
			if _, ok := felt[i]; ok {
				continue
			}
			if !inWindow(spike.Day, firstDays[i], lastDays[i]) {
				continue
			}
			neighbors := graph.Neighbors[i]
			if len(neighbors) == 0 {
				continue
			}
			feltNeighbors := 0
			for _, j := range neighbors {
				if _, ok := felt[j]; ok {
					feltNeighbors++
				}
			}
			if float64(feltNeighbors) <= frac*float64(len(neighbors)) {
				continue
			}

			if mode == InferenceExclude {
				neighborFelt[k] = append(neighborFelt[k], i)
				continue
			}

			// InferenceInherit: adopt the nearest felt neighbor's span, then
			// require at least half the expected observation days to exist.
			nearest := nearestFelt(i, neighbors, felt, graph)
			if nearest < 0 {
				continue
			}
			ev := felt[nearest]
			if 2*net.Stations[i].ObservedCount(ev.StartDay, ev.Duration) < ev.Duration {
				continue
			}
			assignments = append(assignments, domain.Assignment{
				Station:   i,
				Spike:     k,
				StartDay:  ev.StartDay,
				Duration:  ev.Duration,
				Inherited: true,
			})
		}
	}

	return assignments, neighborFelt
}

// ownEvent returns the station's first event starting within [Begin, End).
func ownEvent(events []domain.PerStationEvent, spike domain.Spike) (domain.PerStationEvent, bool) {
	for _, ev := range events {
		if ev.StartDay >= spike.Begin && ev.StartDay < spike.End {
			return ev, true
		}
	}
	return domain.PerStationEvent{}, false
}

// inWindow reports whether day lies inside a station's operational window.
func inWindow(day, first, last int) bool {
	return first >= 0 && day >= first && day <= last
}

// nearestFelt returns the felt neighbor closest to station i, or -1.
func nearestFelt(i int, neighbors []int, felt map[int]domain.PerStationEvent, graph *NeighborGraph) int {
	nearest := -1
	for _, j := range neighbors {
		if _, ok := felt[j]; !ok {
			continue
		}
		if nearest < 0 || graph.Dist[i][j] < graph.Dist[i][nearest] {
			nearest = j
		}
	}
	return nearest
}
