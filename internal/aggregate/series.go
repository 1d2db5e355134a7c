package aggregate

import (
	"sort"

	"github.com/tstirrat/wow-threat-sub000/internal/threat"
)

// Point is one plotted sample on a chart series.
type Point struct {
	TimestampMs int64
	TimeMs      int64 // ms from fight start, clamped at 0
	TotalThreat float64
	ThreatDelta float64
	Formula     string
	AbilityID   int64
	AbilityName string
	School      uint32
	Modifiers   []threat.AppliedModifier
	Marker      *threat.MarkerKind
}

// ChartSeries is one friendly actor's ordered points against the currently
// selected target.
type ChartSeries struct {
	ActorID int64
	Points  []Point
}

// BuildChartSeries builds one series per friendly player or pet that ever
// changes threat against target, a synthetic zero-threat "encounter start"
// point prepended to each, plus boss-melee/death/invulnerability-start
// markers attached independent of threat delta.
func BuildChartSeries(events []threat.AugmentedEvent, abilityNames map[int64]string, abilitySchools map[int64]uint32, target threat.Ref, fightStartMs int64) map[int64]*ChartSeries {
	series := make(map[int64]*ChartSeries)

	ensure := func(actorID int64) *ChartSeries {
		s, ok := series[actorID]
		if !ok {
			s = &ChartSeries{ActorID: actorID}
			series[actorID] = s
		}
		return s
	}
	prependStart := func(s *ChartSeries) {
		if len(s.Points) == 0 {
			s.Points = append(s.Points, Point{TimeMs: 0})
		}
	}

	for _, ae := range events {
		timeMs := timeFromStart(ae.Event.Timestamp, fightStartMs)

		for _, ch := range ae.Changes {
			if ch.TargetID != target.ID || ch.TargetInstance != target.Instance {
				continue
			}
			s := ensure(ch.SourceID)
			prependStart(s)
			s.Points = append(s.Points, Point{
				TimestampMs: ae.Event.Timestamp,
				TimeMs:      timeMs,
				TotalThreat: ch.Total,
				ThreatDelta: ch.Amount,
				Formula:     ae.Calculation.Formula,
				AbilityID:   ae.Event.AbilityGameID,
				AbilityName: abilityNames[ae.Event.AbilityGameID],
				School:      abilitySchools[ae.Event.AbilityGameID],
				Modifiers:   ae.Calculation.Modifiers,
			})
		}

		for _, eff := range ae.Calculation.Effects {
			switch eff.Kind {
			case threat.EffectEventMarker:
				attachMarker(series, ensure, prependStart, ae, eff.EventMarker.Marker, timeMs)
			case threat.EffectState:
				if eff.State.Kind == threat.StateInvulnerable && eff.State.Phase == threat.PhaseStart {
					s := ensure(eff.State.ActorID)
					prependStart(s)
					s.Points = append(s.Points, Point{TimestampMs: ae.Event.Timestamp, TimeMs: timeMs})
				}
			}
		}
	}

	for _, s := range series {
		sort.SliceStable(s.Points, func(i, j int) bool { return s.Points[i].TimeMs < s.Points[j].TimeMs })
	}
	return series
}

func attachMarker(series map[int64]*ChartSeries, ensure func(int64) *ChartSeries, prependStart func(*ChartSeries), ae threat.AugmentedEvent, marker threat.MarkerKind, timeMs int64) {
	var actorID int64
	switch marker {
	case threat.MarkerBossMelee:
		actorID = ae.Event.TargetID
	case threat.MarkerDeath:
		actorID = ae.Event.TargetID
		if actorID == 0 {
			actorID = ae.Event.SourceID
		}
	default:
		return
	}
	m := marker
	s := ensure(actorID)
	prependStart(s)
	s.Points = append(s.Points, Point{TimestampMs: ae.Event.Timestamp, TimeMs: timeMs, Marker: &m})
}

// timeFromStart computes ms-from-fight-start, clamped at zero for events
// that precede the first timestamp.
func timeFromStart(timestamp, fightStartMs int64) int64 {
	d := timestamp - fightStartMs
	if d < 0 {
		return 0
	}
	return d
}
