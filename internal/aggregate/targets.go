// Package aggregate builds chart series, state overlay windows, per-ability
// tables, a focused-player summary, and report rankings from the augmented
// event stream.
//
// Grounded on other_examples/pableeee-go-cs-metrics's aggregator package: a
// fixed-order pass over already-annotated per-event records building
// per-player/per-category rollups (sort-then-bucket shape, doc-comment
// register), and its cmd/analyze.go CSV export.
package aggregate

import (
	"sort"

	"github.com/tstirrat/wow-threat-sub000/internal/threat"
)

// TargetOption is one selectable threat-chart target.
type TargetOption struct {
	Ref  threat.Ref
	Name string
	Boss bool
}

// SelectableTargets materializes one TargetOption per distinct enemy
// instance observed as a source, target, or change-target in events, sorted
// bosses first then alphabetically by name.
func SelectableTargets(events []threat.AugmentedEvent, enemies []threat.Enemy) []TargetOption {
	info := make(map[threat.Ref]threat.Enemy, len(enemies))
	for _, e := range enemies {
		info[e.Ref] = e
	}

	byRef := make(map[threat.Ref]TargetOption)
	observe := func(ref threat.Ref) {
		if ref.IsEnvironment() {
			return
		}
		e, isEnemy := info[ref]
		if !isEnemy {
			return
		}
		if _, seen := byRef[ref]; seen {
			return
		}
		byRef[ref] = TargetOption{Ref: ref, Name: e.Name, Boss: e.Boss}
	}

	for _, ae := range events {
		observe(ae.Event.SourceRef())
		observe(ae.Event.TargetRef())
		for _, ch := range ae.Changes {
			observe(threat.Ref{ID: ch.TargetID, Instance: ch.TargetInstance})
		}
	}

	out := make([]TargetOption, 0, len(byRef))
	for _, opt := range byRef {
		out = append(out, opt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Boss != out[j].Boss {
			return out[i].Boss
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Ref.Instance < out[j].Ref.Instance
	})
	return out
}

// DefaultTarget picks the (id, instance) with the greatest summed positive
// total-delta across all ThreatChange rows, breaking ties by first
// occurrence and falling back to the first valid key if there are no
// changes at all.
func DefaultTarget(events []threat.AugmentedEvent) (threat.Ref, bool) {
	type accum struct {
		sum   float64
		order int
	}
	totals := make(map[threat.Ref]*accum)
	order := 0

	for _, ae := range events {
		for _, ch := range ae.Changes {
			if ch.Amount <= 0 {
				continue
			}
			ref := threat.Ref{ID: ch.TargetID, Instance: ch.TargetInstance}
			a, ok := totals[ref]
			if !ok {
				a = &accum{order: order}
				order++
				totals[ref] = a
			}
			a.sum += ch.Amount
		}
	}

	if len(totals) == 0 {
		return firstValidKey(events)
	}

	var best threat.Ref
	var bestAccum *accum
	for ref, a := range totals {
		if bestAccum == nil || a.sum > bestAccum.sum || (a.sum == bestAccum.sum && a.order < bestAccum.order) {
			best, bestAccum = ref, a
		}
	}
	return best, true
}

func firstValidKey(events []threat.AugmentedEvent) (threat.Ref, bool) {
	for _, ae := range events {
		for _, ch := range ae.Changes {
			return threat.Ref{ID: ch.TargetID, Instance: ch.TargetInstance}, true
		}
	}
	return threat.Ref{}, false
}
