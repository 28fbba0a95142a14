package detect

import (
	"github.com/geodesylab/slowslip/internal/domain"
)

// minConcurrent is the station count a day must reach to qualify for a spike.
// Two stations mid-event is the weakest possible multi-station signal; the
// configured minimum participation is applied later, after close spikes have
// been merged.
const minConcurrent = 2

// DetectSpikes aggregates the filtered per-station coverage into network-wide
// spikes: maximal runs of days on which at least two stations are mid-event.
// Temporally close spikes (gap between midpoints ≤ 2*halfWidth) are merged,
// spikes felt by fewer than minStations stations are dropped, and spikes left
// overlapping by that removal are merged again. Felt-station sets are
// recomputed after every structural change — they are not transitive under
// merges, so unioning the previous sets would credit the wrong stations.
func DetectSpikes(coverage [][]bool, days, halfWidth, minStations int) []domain.Spike {
	qualifying := make([]bool, days)
	for d := 0; d < days; d++ {
		count := 0
		for i := range coverage {
			if coverage[i][d] {
				count++
			}
		}
		qualifying[d] = count >= minConcurrent
	}

	var spikes []domain.Spike
	for _, run := range boolRuns(qualifying) {
		spikes = append(spikes, newSpike(run[0], run[1]))
	}

	spikes = mergeClose(spikes, 2*halfWidth)
	refeltAll(spikes, coverage)

	kept := spikes[:0]
	for _, s := range spikes {
		if len(s.Felt) >= minStations {
			kept = append(kept, s)
		}
	}
	spikes = kept

	spikes = mergeOverlapping(spikes)
	refeltAll(spikes, coverage)
	return spikes
}

// newSpike builds a spike over [begin, end] with its midpoint day.
func newSpike(begin, end int) domain.Spike {
	return domain.Spike{Begin: begin, End: end, Day: begin + (end-begin+1)/2}
}

// mergeClose collapses maximal runs of spikes whose consecutive midpoints are
// at most maxGap days apart, keeping the first begin and the last end.
func mergeClose(spikes []domain.Spike, maxGap int) []domain.Spike {
	if len(spikes) == 0 {
		return spikes
	}
	merged := make([]domain.Spike, 0, len(spikes))
	begin, end := spikes[0].Begin, spikes[0].End
	prevDay := spikes[0].Day
	for _, s := range spikes[1:] {
		if s.Day-prevDay <= maxGap {
			end = s.End
		} else {
			merged = append(merged, newSpike(begin, end))
			begin, end = s.Begin, s.End
		}
		prevDay = s.Day
	}
	merged = append(merged, newSpike(begin, end))
	return merged
}

// mergeOverlapping folds any spike beginning before the previous surviving
// spike's end into that spike. Overlap can only appear after interior spikes
// are removed by the participation filter.
func mergeOverlapping(spikes []domain.Spike) []domain.Spike {
	if len(spikes) == 0 {
		return spikes
	}
	merged := []domain.Spike{newSpike(spikes[0].Begin, spikes[0].End)}
	for _, s := range spikes[1:] {
		last := &merged[len(merged)-1]
		if s.Begin < last.End {
			if s.End > last.End {
				*last = newSpike(last.Begin, s.End)
			}
			continue
		}
		merged = append(merged, newSpike(s.Begin, s.End))
	}
	return merged
}

// refeltAll recomputes every spike's felt-station set: any station whose
// coverage overlaps [Begin, End] by at least one day is credited.
func refeltAll(spikes []domain.Spike, coverage [][]bool) {
	for k := range spikes {
		spikes[k].Felt = feltStations(spikes[k], coverage)
	}
}

func feltStations(s domain.Spike, coverage [][]bool) []int {
	var felt []int
	for i := range coverage {
		for d := s.Begin; d <= s.End && d < len(coverage[i]); d++ {
			if coverage[i][d] {
				felt = append(felt, i)
				break
			}
		}
	}
	return felt
}
