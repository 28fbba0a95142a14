package domain

import "github.com/jonboulle/clockwork"

// clock stamps Catalog.GeneratedAt. Detection over fixed input is otherwise
// fully deterministic; keeping the one wall-clock read swappable preserves
// that in tests.
var clock = clockwork.NewRealClock()

// SetClock replaces the time source. Pass nil to restore the real clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
