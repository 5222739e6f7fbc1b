package domain

import "github.com/jonboulle/clockwork"

// clock stamps ProcessedAt on enriched orders. Tests freeze it via SetClock.
var clock = clockwork.NewRealClock()

// SetClock replaces the enrichment time source. Pass nil to restore real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	clock = c
}
