package detect

import (
	"github.com/geodesylab/slowslip/internal/domain"
)

// FilterByNeighbors suppresses per-station events that no nearby station saw.
// An event at station i survives iff at least max(1, ceil(frac*|N(i)|))
// neighbors have an event starting within ±tolerance days of its start.
// Stations with no neighbors are exempt, as are events that begin before the
// earliest first-operational day among the station's neighbors (a station
// cannot be contradicted by neighbors that were not yet installed).
//
// Single-station anomalies — equipment noise, monument instability, local
// hydrology — rarely reproduce across stations tens of kilometers apart.
func FilterByNeighbors(events [][]domain.PerStationEvent, graph *NeighborGraph, firstDays []int, tolerance int, frac float64) [][]domain.PerStationEvent {
	filtered := make([][]domain.PerStationEvent, len(events))
	for i, stationEvents := range events {
		neighbors := graph.Neighbors[i]
		if len(neighbors) == 0 {
			filtered[i] = stationEvents
			continue
		}

		required := ceilFrac(len(neighbors), frac)
		earliest := earliestFirstDay(neighbors, firstDays)

		for _, ev := range stationEvents {
			if earliest >= 0 && ev.StartDay < earliest {
				filtered[i] = append(filtered[i], ev)
				continue
			}
			if corroborators(ev.StartDay, neighbors, events, tolerance) >= required {
				filtered[i] = append(filtered[i], ev)
			}
		}
	}
	return filtered
}

// corroborators counts neighbors with an event start within ±tolerance days of t.
func corroborators(t int, neighbors []int, events [][]domain.PerStationEvent, tolerance int) int {
	count := 0
	for _, j := range neighbors {
		for _, ev := range events[j] {
			if ev.StartDay >= t-tolerance && ev.StartDay <= t+tolerance {
				count++
				break
			}
		}
	}
	return count
}

// earliestFirstDay returns the smallest first-operational day among the given
// stations, ignoring stations that never produced a solution. Returns -1 when
// none of them did.
func earliestFirstDay(stations []int, firstDays []int) int {
	earliest := -1
	for _, j := range stations {
		fd := firstDays[j]
		if fd < 0 {
			continue
		}
		if earliest < 0 || fd < earliest {
			earliest = fd
		}
	}
	return earliest
}

func ceilFrac(n int, frac float64) int {
	required := int(frac * float64(n))
	if float64(required) < frac*float64(n) {
		required++
	}
	if required < 1 {
		required = 1
	}
	return required
}

// CoverageMask expands per-station events into a station × day boolean matrix
// marking days inside an event.
func CoverageMask(events [][]domain.PerStationEvent, days int) [][]bool {
	mask := make([][]bool, len(events))
	for i, stationEvents := range events {
		mask[i] = make([]bool, days)
		for _, ev := range stationEvents {
			for d := ev.StartDay; d <= ev.EndDay && d < days; d++ {
				mask[i][d] = true
			}
		}
	}
	return mask
}
