package domain

import (
	"fmt"
	"time"
)

// Station holds one station's daily coordinate solutions, day-indexed against
// the owning Network's calendar. A zero time in Days marks a day with no
// solution; the position and sigma arrays hold zeros on those days.
type Station struct {
	Name string
	Lat  float64
	Lon  float64

	Days       []time.Time
	East       []float64 // mm east offset
	EastSigma  []float64 // mm, one sigma
	North      []float64 // mm north offset
	NorthSigma []float64 // mm, one sigma
}

// Observed reports whether the station has a coordinate solution on the given day.
func (s *Station) Observed(day int) bool {
	return day >= 0 && day < len(s.Days) && !s.Days[day].IsZero()
}

// FirstDay returns the index of the station's first day with a valid solution,
// or -1 if the station never produced one.
func (s *Station) FirstDay() int {
	for d := range s.Days {
		if !s.Days[d].IsZero() {
			return d
		}
	}
	return -1
}

// LastDay returns the index of the station's last day with a valid solution,
// or -1 if the station never produced one.
func (s *Station) LastDay() int {
	for d := len(s.Days) - 1; d >= 0; d-- {
		if !s.Days[d].IsZero() {
			return d
		}
	}
	return -1
}

// ObservedCount returns the number of days with valid solutions in the
// half-open day range [start, start+n).
func (s *Station) ObservedCount(start, n int) int {
	count := 0
	for d := start; d < start+n && d < len(s.Days); d++ {
		if d >= 0 && !s.Days[d].IsZero() {
			count++
		}
	}
	return count
}

// Network is a set of stations sharing one daily calendar. All station arrays
// have the same length as Epochs.
type Network struct {
	Epochs   []time.Time
	Stations []Station
}

// Days returns the length of the shared calendar.
func (n *Network) Days() int { return len(n.Epochs) }

// Validate checks that every station's arrays match the calendar length.
func (n *Network) Validate() error {
	days := len(n.Epochs)
	if days == 0 {
		return fmt.Errorf("network: empty calendar")
	}
	for i := range n.Stations {
		s := &n.Stations[i]
		if len(s.Days) != days || len(s.East) != days || len(s.EastSigma) != days ||
			len(s.North) != days || len(s.NorthSigma) != days {
			return fmt.Errorf("network: station %s: series length mismatch (calendar %d days)", s.Name, days)
		}
	}
	return nil
}
