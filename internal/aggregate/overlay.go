package aggregate

import (
	"sort"

	"github.com/tstirrat/wow-threat-sub000/internal/threat"
)

// StateSegment is one non-overlapping visual slice of the overlay track,
// labelled by whichever state was most recently active during it.
type StateSegment struct {
	StartMs int64
	EndMs   int64
	Kind    threat.StateKind
}

// StateWindow is a merged start/end pair for the fixate or invulnerable
// overlay tracks.
type StateWindow struct {
	StartMs int64
	EndMs   int64
}

// Overlays bundles an actor's segment track plus its merged fixate and
// invulnerable windows.
type Overlays struct {
	Segments     []StateSegment
	Fixate       []StateWindow
	Invulnerable []StateWindow
}

type stateTransition struct {
	timeMs int64
	seq    int
	kind   threat.StateKind
	start  bool
}

// BuildOverlays collects actorID's state effects, sorts them by
// (timeMs, sequence), and derives the non-overlapping segment track plus
// merged fixate/invulnerable windows, closing anything left open at
// fightEndMs.
func BuildOverlays(events []threat.AugmentedEvent, actorID int64, fightStartMs, fightEndMs int64) Overlays {
	transitions := collectTransitions(events, actorID, fightStartMs)

	active := newActiveStateTracker()
	builder := newSegmentBuilder()
	var fixateWindows, invulnWindows []StateWindow
	var fixateOpen, invulnOpen *int64

	for _, tr := range transitions {
		if tr.start {
			active.push(tr.kind)
			if tr.kind == threat.StateFixate && fixateOpen == nil {
				t := tr.timeMs
				fixateOpen = &t
			}
			if tr.kind == threat.StateInvulnerable && invulnOpen == nil {
				t := tr.timeMs
				invulnOpen = &t
			}
		} else {
			active.remove(tr.kind)
			if tr.kind == threat.StateFixate && fixateOpen != nil {
				fixateWindows = append(fixateWindows, StateWindow{StartMs: *fixateOpen, EndMs: tr.timeMs})
				fixateOpen = nil
			}
			if tr.kind == threat.StateInvulnerable && invulnOpen != nil {
				invulnWindows = append(invulnWindows, StateWindow{StartMs: *invulnOpen, EndMs: tr.timeMs})
				invulnOpen = nil
			}
		}
		kind, isActive := active.mostRecent()
		builder.observe(tr.timeMs, kind, isActive)
	}

	endMs := timeFromStart(fightEndMs, fightStartMs)
	if fixateOpen != nil {
		fixateWindows = append(fixateWindows, StateWindow{StartMs: *fixateOpen, EndMs: endMs})
	}
	if invulnOpen != nil {
		invulnWindows = append(invulnWindows, StateWindow{StartMs: *invulnOpen, EndMs: endMs})
	}

	return Overlays{Segments: builder.finish(endMs), Fixate: fixateWindows, Invulnerable: invulnWindows}
}

func collectTransitions(events []threat.AugmentedEvent, actorID int64, fightStartMs int64) []stateTransition {
	var transitions []stateTransition
	for _, ae := range events {
		timeMs := timeFromStart(ae.Event.Timestamp, fightStartMs)
		for _, eff := range ae.Calculation.Effects {
			if eff.Kind != threat.EffectState || eff.State.ActorID != actorID {
				continue
			}
			transitions = append(transitions, stateTransition{
				timeMs: timeMs,
				seq:    eff.State.Sequence,
				kind:   eff.State.Kind,
				start:  eff.State.Phase == threat.PhaseStart,
			})
		}
	}
	sort.SliceStable(transitions, func(i, j int) bool {
		if transitions[i].timeMs != transitions[j].timeMs {
			return transitions[i].timeMs < transitions[j].timeMs
		}
		return transitions[i].seq < transitions[j].seq
	})
	return transitions
}

// activeStateTracker maintains the set of currently-active state kinds in
// most-recently-started order, so the most recent addition always labels
// the segment.
type activeStateTracker struct {
	order []threat.StateKind
}

func newActiveStateTracker() *activeStateTracker { return &activeStateTracker{} }

func (a *activeStateTracker) push(kind threat.StateKind) {
	a.remove(kind)
	a.order = append(a.order, kind)
}

func (a *activeStateTracker) remove(kind threat.StateKind) {
	out := a.order[:0]
	for _, k := range a.order {
		if k != kind {
			out = append(out, k)
		}
	}
	a.order = out
}

func (a *activeStateTracker) mostRecent() (threat.StateKind, bool) {
	if len(a.order) == 0 {
		return 0, false
	}
	return a.order[len(a.order)-1], true
}

// segmentBuilder accumulates non-overlapping StateSegment runs as the
// active label changes over time.
type segmentBuilder struct {
	segments []StateSegment
	label    threat.StateKind
	labelled bool
	start    int64
}

func newSegmentBuilder() *segmentBuilder { return &segmentBuilder{} }

func (b *segmentBuilder) observe(timeMs int64, kind threat.StateKind, active bool) {
	if active == b.labelled && (!active || kind == b.label) {
		return
	}
	if b.labelled && timeMs > b.start {
		b.segments = append(b.segments, StateSegment{StartMs: b.start, EndMs: timeMs, Kind: b.label})
	}
	b.labelled = active
	b.label = kind
	b.start = timeMs
}

func (b *segmentBuilder) finish(endMs int64) []StateSegment {
	if b.labelled && endMs > b.start {
		b.segments = append(b.segments, StateSegment{StartMs: b.start, EndMs: endMs, Kind: b.label})
	}
	return b.segments
}
