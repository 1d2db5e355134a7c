package aggregate

import (
	"math"
	"sort"

	"github.com/tstirrat/wow-threat-sub000/internal/threat"
)

// ModifierCount is one bucket of the applied-modifier histogram: a distinct
// modifier name (Value is the first value seen under that name) plus how
// many times it was folded into a modifiedThreat calculation for the
// focused player.
type ModifierCount struct {
	Name  string
	Value float64
	Count int
}

// PlayerSummary totals a focused player's own threat delta, damage done, and
// heal done inside [windowStart, windowEnd], plus an applied-modifier
// histogram. Pet events are never folded into the player total; pets are
// tracked as separate series.
type PlayerSummary struct {
	ActorID      int64
	ThreatDelta  float64
	DamageDone   int
	HealDone     int
	WindowStart  int64
	WindowEnd    int64
	Modifiers    []ModifierCount
}

// BuildPlayerSummary scans events whose source is actorID and whose
// timestamp falls in [windowStart, windowEnd] (fight-start-relative ms),
// accumulating damage/heal/threat totals and the modifier histogram.
func BuildPlayerSummary(events []threat.AugmentedEvent, actorID int64, fightStartMs, windowStart, windowEnd int64) PlayerSummary {
	summary := PlayerSummary{ActorID: actorID, WindowStart: windowStart, WindowEnd: windowEnd}
	counts := make(map[string]*ModifierCount)
	tracker := newThreatDeltaTracker()

	for _, ae := range events {
		timeMs := timeFromStart(ae.Event.Timestamp, fightStartMs)
		inWindow := ae.Event.SourceID == actorID && timeMs >= windowStart && timeMs <= windowEnd

		// Walk every change touching this actor's rows regardless of window
		// so the running totals the tracker needs stay correct even when a
		// set-operator change lands outside [windowStart, windowEnd].
		for _, ch := range ae.Changes {
			if ch.SourceID != actorID {
				continue
			}
			delta := tracker.delta(ch)
			if inWindow {
				summary.ThreatDelta += delta
			}
		}

		if !inWindow {
			continue
		}

		switch ae.Event.Type {
		case threat.EventDamage:
			summary.DamageDone += ae.Event.Amount
		case threat.EventHeal:
			summary.HealDone += ae.Event.Amount - ae.Event.Overheal
		}

		for _, m := range ae.Calculation.Modifiers {
			key := modifierKey(m)
			c, ok := counts[key]
			if !ok {
				c = &ModifierCount{Name: m.Name, Value: m.Value}
				counts[key] = c
			}
			c.Count++
		}
	}

	summary.Modifiers = sortedModifierCounts(counts)
	return summary
}

func modifierKey(m threat.AppliedModifier) string {
	return m.Name
}

// sortedModifierCounts orders the histogram by descending occurrence count,
// tie-broken by |value-1| descending then name ascending, for deterministic
// output.
func sortedModifierCounts(counts map[string]*ModifierCount) []ModifierCount {
	out := make([]ModifierCount, 0, len(counts))
	for _, c := range counts {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		di, dj := math.Abs(out[i].Value-1), math.Abs(out[j].Value-1)
		if di != dj {
			return di > dj
		}
		return out[i].Name < out[j].Name
	})
	return out
}
