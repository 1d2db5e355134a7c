package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tstirrat/wow-threat-sub000/internal/threat"
	"github.com/tstirrat/wow-threat-sub000/internal/threatconfig"
)

const (
	hunterID int64 = 1
	tankID2  int64 = 2
	bossID2  int64 = 100

	misdirectionSpellID int64 = 34477
)

// misdirectionRedirect emulates a misdirection cast: the next hunter damage
// event is attributed to the tank, then the handler uninstalls itself.
type misdirectionRedirect struct {
	tankID int64
	fired  bool
}

func (h *misdirectionRedirect) Invoke(event threat.Event, ctx threat.InterceptorContext) threat.InterceptorAction {
	if h.fired || event.Type != threat.EventDamage {
		return threat.InterceptorAction{Kind: threat.ActionPassthrough}
	}
	h.fired = true
	ctx.Uninstall()
	override := h.tankID
	return threat.InterceptorAction{Kind: threat.ActionAugment, ThreatRecipientOverride: &override}
}

func misdirectionConfig() *threatconfig.Config {
	return &threatconfig.Config{
		BaseThreatDamage: func(ctx threatconfig.FormulaContext) *threatconfig.FormulaResult {
			return &threatconfig.FormulaResult{Label: "base damage", Value: float64(ctx.Amount)}
		},
		Abilities: map[int64]threatconfig.Formula{
			misdirectionSpellID: func(threatconfig.FormulaContext) *threatconfig.FormulaResult {
				return &threatconfig.FormulaResult{
					Label:  "misdirection cast",
					Effects: []threat.Effect{threat.NewInstallInterceptor(&misdirectionRedirect{tankID: tankID2})},
				}
			},
		},
	}
}

// A hunter cast installs a redirect, then the next hunter damage event is
// attributed to the tank instead of the hunter.
func TestEngineMisdirectionRedirectsNextDamage(t *testing.T) {
	cfg := misdirectionConfig()
	in := Input{
		RawEvents: []threat.Event{
			{Timestamp: 1000, Type: threat.EventCast, SourceID: hunterID, AbilityGameID: misdirectionSpellID, HasAbilityGameID: true},
			{Timestamp: 2000, Type: threat.EventDamage, SourceID: hunterID, TargetID: bossID2, Amount: 500},
		},
		ActorMap:         threat.ActorMap{hunterID: {ID: hunterID, Name: "Hunter", Class: "hunter"}, tankID2: {ID: tankID2, Name: "Tank", Class: "warrior"}},
		FriendlyActorIDs: map[int64]struct{}{hunterID: {}, tankID2: {}},
		Enemies:          []threat.Enemy{{Ref: threat.Ref{ID: bossID2}, Name: "Boss", Boss: true}},
		Config:           cfg,
	}

	out := Run(nil, in)
	require.Len(t, out.AugmentedEvents, 2)

	damageEvent := out.AugmentedEvents[1]
	require.Len(t, damageEvent.Changes, 1)
	assert.Equal(t, tankID2, damageEvent.Changes[0].SourceID)
	assert.Equal(t, float64(500), damageEvent.Changes[0].Amount)
}

func basicInput() Input {
	return Input{
		RawEvents: []threat.Event{
			{Timestamp: 1000, Type: threat.EventDamage, SourceID: tankID2, TargetID: bossID2, Amount: 400},
			{Timestamp: 2000, Type: threat.EventHeal, SourceID: hunterID, TargetID: hunterID, Amount: 200},
			{Timestamp: 1500, Type: threat.EventDamage, SourceID: tankID2, TargetID: bossID2, Amount: 100}, // out of order input
		},
		ActorMap:         threat.ActorMap{hunterID: {ID: hunterID, Name: "Hunter", Class: "hunter"}, tankID2: {ID: tankID2, Name: "Tank", Class: "warrior"}},
		FriendlyActorIDs: map[int64]struct{}{hunterID: {}, tankID2: {}},
		Enemies:          []threat.Enemy{{Ref: threat.Ref{ID: bossID2}, Name: "Boss", Boss: true}},
		Config:           threatconfig.Builtin(),
	}
}

// Running the engine twice on the same input yields identical
// augmentedEvents and eventCounts.
func TestEngineRunIsDeterministicAcrossRuns(t *testing.T) {
	in := basicInput()
	first := Run(nil, in)
	second := Run(nil, in)
	assert.Equal(t, first.AugmentedEvents, second.AugmentedEvents)
	assert.Equal(t, first.EventCounts, second.EventCounts)
}

// Events are re-sorted by timestamp before the pass.
func TestEngineResortsOutOfOrderEvents(t *testing.T) {
	out := Run(nil, basicInput())
	require.Len(t, out.AugmentedEvents, 3)
	assert.Equal(t, int64(1000), out.AugmentedEvents[0].Event.Timestamp)
	assert.Equal(t, int64(1500), out.AugmentedEvents[1].Event.Timestamp)
	assert.Equal(t, int64(2000), out.AugmentedEvents[2].Event.Timestamp)
}

// Re-seeding the exact merged initialAurasByActor back in as the explicit
// seed produces the same output.
func TestEngineReseedingMergedAurasReproducesOutput(t *testing.T) {
	in := basicInput()
	first := Run(nil, in)

	reseeded := in
	reseeded.InitialAurasByActor = first.InitialAurasByActor
	second := Run(nil, reseeded)

	assert.Equal(t, first.AugmentedEvents, second.AugmentedEvents)
	assert.Equal(t, first.InitialAurasByActor, second.InitialAurasByActor)
}

// Empty event list boundary.
func TestEngineEmptyEventListProducesEmptyOutput(t *testing.T) {
	out := Run(nil, Input{})
	assert.Empty(t, out.AugmentedEvents)
	assert.Empty(t, out.EventCounts)
}

func TestResolveTankActorIDsFallsBackToNameMatch(t *testing.T) {
	in := Input{
		TankNames:      []string{"  Gruul Tank  "},
		RankingsByName: map[string]int64{"gruul tank": 42},
	}
	tanks := resolveTankActorIDs(in)
	require.Len(t, tanks, 1)
	_, ok := tanks[42]
	assert.True(t, ok)
}
