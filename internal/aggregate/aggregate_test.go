package aggregate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tstirrat/wow-threat-sub000/internal/threat"
)

const (
	tankID  int64 = 1
	healID  int64 = 2
	bossRef int64 = 100
	addRef  int64 = 101
)

func stateEffect(kind threat.StateKind, phase threat.StatePhase, actorID int64, seq int) threat.Effect {
	e := threat.NewState(kind, phase, 0, actorID)
	e.State.Sequence = seq
	return e
}

func TestSelectableTargetsSortsBossesFirstThenName(t *testing.T) {
	enemies := []threat.Enemy{
		{Ref: threat.Ref{ID: addRef}, Name: "Zealot", Boss: false},
		{Ref: threat.Ref{ID: bossRef}, Name: "Boss", Boss: true},
	}
	events := []threat.AugmentedEvent{
		{Event: threat.Event{SourceID: tankID, TargetID: bossRef}},
		{Event: threat.Event{SourceID: tankID, TargetID: addRef}},
	}
	opts := SelectableTargets(events, enemies)
	require.Len(t, opts, 2)
	assert.Equal(t, "Boss", opts[0].Name)
	assert.Equal(t, "Zealot", opts[1].Name)
}

func TestDefaultTargetPicksGreatestPositiveTotal(t *testing.T) {
	events := []threat.AugmentedEvent{
		{Changes: []threat.ThreatChange{{SourceID: tankID, TargetID: bossRef, Amount: 500}}},
		{Changes: []threat.ThreatChange{{SourceID: tankID, TargetID: addRef, Amount: 800}}},
		{Changes: []threat.ThreatChange{{SourceID: tankID, TargetID: addRef, Amount: -1000}}}, // negative ignored
	}
	ref, ok := DefaultTarget(events)
	require.True(t, ok)
	assert.Equal(t, addRef, ref.ID)
}

func TestBuildChartSeriesPrependsEncounterStartAndAttachesMarkers(t *testing.T) {
	target := threat.Ref{ID: bossRef}
	events := []threat.AugmentedEvent{
		{
			Event:   threat.Event{Timestamp: 1000, TargetID: tankID, Type: threat.EventDamage},
			Calculation: threat.ThreatCalculation{Effects: []threat.Effect{threat.NewEventMarker(threat.MarkerBossMelee)}},
		},
		{
			Event:   threat.Event{Timestamp: 2000, SourceID: tankID, TargetID: bossRef, Type: threat.EventDamage},
			Changes: []threat.ThreatChange{{SourceID: tankID, TargetID: bossRef, Amount: 300, Total: 300}},
		},
	}
	series := BuildChartSeries(events, map[int64]string{}, map[int64]uint32{}, target, 0)

	tankSeries, ok := series[tankID]
	require.True(t, ok)
	require.Len(t, tankSeries.Points, 3) // synthetic start, boss-melee marker, real point
	assert.Equal(t, int64(0), tankSeries.Points[0].TimeMs)
	assert.NotNil(t, tankSeries.Points[1].Marker)
	assert.Equal(t, threat.MarkerBossMelee, *tankSeries.Points[1].Marker)
	assert.Equal(t, float64(300), tankSeries.Points[2].TotalThreat)
}

func TestBuildOverlaysMostRecentlyStartedStateWins(t *testing.T) {
	events := []threat.AugmentedEvent{
		{Event: threat.Event{Timestamp: 0}, Calculation: threat.ThreatCalculation{Effects: []threat.Effect{
			stateEffect(threat.StateFixate, threat.PhaseStart, tankID, 0),
		}}},
		{Event: threat.Event{Timestamp: 1000}, Calculation: threat.ThreatCalculation{Effects: []threat.Effect{
			stateEffect(threat.StateInvulnerable, threat.PhaseStart, tankID, 1),
		}}},
		{Event: threat.Event{Timestamp: 2000}, Calculation: threat.ThreatCalculation{Effects: []threat.Effect{
			stateEffect(threat.StateInvulnerable, threat.PhaseEnd, tankID, 2),
		}}},
	}
	overlays := BuildOverlays(events, tankID, 0, 3000)

	require.Len(t, overlays.Invulnerable, 1)
	assert.Equal(t, int64(1000), overlays.Invulnerable[0].StartMs)
	assert.Equal(t, int64(2000), overlays.Invulnerable[0].EndMs)

	require.Len(t, overlays.Fixate, 1)
	assert.Equal(t, int64(0), overlays.Fixate[0].StartMs)
	assert.Equal(t, int64(3000), overlays.Fixate[0].EndMs) // unterminated: closes at fight end

	require.NotEmpty(t, overlays.Segments)
	// the segment covering [1000,2000) is labelled invulnerable, the most
	// recently started state, even though fixate is still active underneath.
	found := false
	for _, seg := range overlays.Segments {
		if seg.StartMs == 1000 && seg.EndMs == 2000 {
			assert.Equal(t, threat.StateInvulnerable, seg.Kind)
			found = true
		}
	}
	assert.True(t, found)
}

func TestBuildPlayerSummaryExcludesPetsAndBuildsModifierHistogram(t *testing.T) {
	petID := int64(3)
	events := []threat.AugmentedEvent{
		{
			Event:       threat.Event{SourceID: tankID, Type: threat.EventDamage, Amount: 1000},
			Changes:     []threat.ThreatChange{{SourceID: tankID, Amount: 150, Total: 150}},
			Calculation: threat.ThreatCalculation{Modifiers: []threat.AppliedModifier{{Name: "Defensive Stance", Value: 1.3}}},
		},
		{
			Event:   threat.Event{SourceID: petID, Type: threat.EventDamage, Amount: 5000}, // pet: excluded from player total
			Changes: []threat.ThreatChange{{SourceID: petID, Amount: 900, Total: 900}},
		},
	}
	summary := BuildPlayerSummary(events, tankID, 0, 0, 10000)
	assert.Equal(t, 1000, summary.DamageDone)
	assert.Equal(t, float64(150), summary.ThreatDelta)
	require.Len(t, summary.Modifiers, 1)
	assert.Equal(t, "Defensive Stance", summary.Modifiers[0].Name)
	assert.Equal(t, 1, summary.Modifiers[0].Count)
}

func TestBuildAbilityRowsSeparatesEnergizeFromDamageOnSameAbility(t *testing.T) {
	abilityID := int64(7)
	events := []threat.AugmentedEvent{
		{
			Event:   threat.Event{SourceID: tankID, Type: threat.EventDamage, AbilityGameID: abilityID, HasAbilityGameID: true, Amount: 400},
			Changes: []threat.ThreatChange{{SourceID: tankID, Amount: 400, Total: 400}},
		},
		{
			Event:   threat.Event{SourceID: tankID, Type: threat.EventEnergize, AbilityGameID: abilityID, HasAbilityGameID: true, Amount: 10},
			Changes: []threat.ThreatChange{{SourceID: tankID, Amount: 0, Total: 400}},
		},
	}
	rows := BuildAbilityRows(events, tankID, map[int64]string{abilityID: "Example"}, 0, 0, 10000)
	require.Len(t, rows, 2)
	keys := map[string]bool{rows[0].Key: true, rows[1].Key: true}
	assert.True(t, keys["7"])
	assert.True(t, strings.HasSuffix(rows[0].Key, "energize") || strings.HasSuffix(rows[1].Key, "energize"))
}

func TestBuildAbilityRowsDominantModifierPicksHighestCumulativeThreat(t *testing.T) {
	abilityID := int64(9)
	events := []threat.AugmentedEvent{
		{
			Event:       threat.Event{SourceID: tankID, Type: threat.EventDamage, AbilityGameID: abilityID, HasAbilityGameID: true},
			Changes:     []threat.ThreatChange{{SourceID: tankID, Amount: 900, Total: 900}},
			Calculation: threat.ThreatCalculation{Modifiers: []threat.AppliedModifier{{Name: "Stance", Value: 1.3}}},
		},
		{
			Event:       threat.Event{SourceID: tankID, Type: threat.EventDamage, AbilityGameID: abilityID, HasAbilityGameID: true},
			Changes:     []threat.ThreatChange{{SourceID: tankID, Amount: 100, Total: 1000}},
			Calculation: threat.ThreatCalculation{Modifiers: []threat.AppliedModifier{{Name: "Talent", Value: 1.1}}},
		},
	}
	rows := BuildAbilityRows(events, tankID, map[int64]string{abilityID: "Example"}, 0, 0, 10000)
	require.Len(t, rows, 1)
	assert.Equal(t, "Stance", rows[0].DominantModifierName)
	assert.InDelta(t, 1.3, rows[0].DominantModifierProduct, 0.0001)
	require.NotNil(t, rows[0].TPS)
}

func TestBuildRankingsFoldsPetThreatIntoOwner(t *testing.T) {
	petID := int64(4)
	actors := threat.ActorMap{
		tankID: {ID: tankID, Name: "Tank", Class: "warrior"},
		petID:  {ID: petID, Name: "Pet", PetOwner: tankID},
		healID: {ID: healID, Name: "Healer", Class: "priest"},
	}
	events := []threat.AugmentedEvent{
		{Changes: []threat.ThreatChange{{SourceID: tankID, Amount: 500, Total: 500}}},
		{Changes: []threat.ThreatChange{{SourceID: petID, Amount: 300, Total: 300}}},
		{Changes: []threat.ThreatChange{{SourceID: healID, Amount: 100, Total: 100}}},
	}
	rankings := BuildRankings(events, actors)
	require.Len(t, rankings, 2)
	assert.Equal(t, tankID, rankings[0].PlayerID)
	assert.Equal(t, float64(800), rankings[0].ThreatTotal)
	assert.Equal(t, 1, rankings[0].Rank)
	assert.Equal(t, healID, rankings[1].PlayerID)
}
