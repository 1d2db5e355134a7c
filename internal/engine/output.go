package engine

import (
	"sort"

	"github.com/tstirrat/wow-threat-sub000/internal/threat"
)

// Output is the engine's result for one encounter.
type Output struct {
	AugmentedEvents []threat.AugmentedEvent  `json:"augmentedEvents"`
	EventCounts     map[threat.EventType]int `json:"eventCounts"`
	// InitialAurasByActor is the merged (explicit ∪ processor-inferred) seed
	// set, sorted ascending and deduplicated per actor.
	InitialAurasByActor map[int64][]int64 `json:"initialAurasByActor,omitempty"`
}

// mergeInitialAuras unions explicit with additions and sorts each actor's
// spell id list ascending, deduplicated.
func mergeInitialAuras(explicit map[int64]map[int64]struct{}, additions map[int64]map[int64]struct{}) map[int64][]int64 {
	merged := make(map[int64]map[int64]struct{})
	for actorID, set := range explicit {
		merged[actorID] = cloneSet(set)
	}
	for actorID, set := range additions {
		dst, ok := merged[actorID]
		if !ok {
			dst = make(map[int64]struct{})
			merged[actorID] = dst
		}
		for spellID := range set {
			dst[spellID] = struct{}{}
		}
	}

	out := make(map[int64][]int64, len(merged))
	for actorID, set := range merged {
		spells := make([]int64, 0, len(set))
		for spellID := range set {
			spells = append(spells, spellID)
		}
		sort.Slice(spells, func(i, j int) bool { return spells[i] < spells[j] })
		out[actorID] = spells
	}
	return out
}

func cloneSet(in map[int64]struct{}) map[int64]struct{} {
	out := make(map[int64]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}

// countEventTypes tallies every event by type, except combatantinfo, which
// is an identity-seeding record rather than a user-visible combat event.
func countEventTypes(events []threat.Event) map[threat.EventType]int {
	counts := make(map[threat.EventType]int)
	for _, e := range events {
		if e.Type == threat.EventCombatantInfo {
			continue
		}
		counts[e.Type]++
	}
	return counts
}
