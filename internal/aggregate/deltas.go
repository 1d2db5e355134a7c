package aggregate

import "github.com/tstirrat/wow-threat-sub000/internal/threat"

// threatRowKey identifies one (source, enemy) row in the per-actor threat
// table.
type threatRowKey struct {
	sourceID       int64
	targetID       int64
	targetInstance int
}

// threatDeltaTracker recovers a ThreatChange's true contribution to its
// (source, enemy) row. A set-operator change reports Amount as the
// post-multiply total rather than a delta, so summing Amount directly
// overcounts; tracking the last total seen per row and diffing against the
// new Total works for both add and set changes.
type threatDeltaTracker struct {
	totals map[threatRowKey]float64
}

func newThreatDeltaTracker() *threatDeltaTracker {
	return &threatDeltaTracker{totals: make(map[threatRowKey]float64)}
}

func (t *threatDeltaTracker) delta(ch threat.ThreatChange) float64 {
	key := threatRowKey{ch.SourceID, ch.TargetID, ch.TargetInstance}
	prev := t.totals[key]
	t.totals[key] = ch.Total
	return ch.Total - prev
}
