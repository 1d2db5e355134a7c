package fightstate

import (
	"testing"

	"github.com/tstirrat/wow-threat-sub000/internal/threat"
	"github.com/tstirrat/wow-threat-sub000/internal/threatconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(cfg *threatconfig.Config) *FightState {
	return New(cfg, map[int64]struct{}{1: {}, 2: {}}, nil)
}

func TestAddThreatClampsAtZero(t *testing.T) {
	fs := newTestState(nil)
	source := threat.Ref{ID: 1}
	enemy := threat.Ref{ID: 100}

	total := fs.AddThreat(source, enemy, 50)
	assert.Equal(t, float64(50), total)

	total = fs.AddThreat(source, enemy, -1000)
	assert.Equal(t, float64(0), total, "threat must never go negative")
}

func TestSetThreatFloorsAtZero(t *testing.T) {
	fs := newTestState(nil)
	source := threat.Ref{ID: 1}
	enemy := threat.Ref{ID: 100}

	got := fs.SetThreat(source, enemy, -5)
	assert.Equal(t, float64(0), got)
	assert.Equal(t, float64(0), fs.GetThreat(source, enemy))
}

func TestClearAllThreatForActorOnlyReturnsNonZeroRows(t *testing.T) {
	fs := newTestState(nil)
	source := threat.Ref{ID: 1}
	enemyA := threat.Ref{ID: 100}
	enemyB := threat.Ref{ID: 101}

	fs.AddThreat(source, enemyA, 10)
	fs.SetThreat(source, enemyB, 0)

	cleared := fs.ClearAllThreatForActor(source)
	require.Len(t, cleared, 1)
	assert.Equal(t, enemyA, cleared[0].Enemy)
	assert.Equal(t, float64(10), cleared[0].Previous)
	assert.Equal(t, float64(0), fs.GetThreat(source, enemyA))
}

func TestThreatTableDistinguishesEnemyInstances(t *testing.T) {
	fs := newTestState(nil)
	source := threat.Ref{ID: 1}
	add1 := threat.Ref{ID: 200, Instance: 1}
	add2 := threat.Ref{ID: 200, Instance: 2}

	fs.AddThreat(source, add1, 10)
	fs.AddThreat(source, add2, 20)

	assert.Equal(t, float64(10), fs.GetThreat(source, add1))
	assert.Equal(t, float64(20), fs.GetThreat(source, add2))
}

func TestSetAuraEvictsExclusiveGroup(t *testing.T) {
	cfg := &threatconfig.Config{
		Classes: map[string]threatconfig.ClassConfig{
			"warrior": {
				ExclusiveAuras: []threatconfig.ExclusiveAuraGroup{{71, 72, 73}},
			},
		},
	}
	fs := newTestState(cfg)
	fs.SeedIdentity(&threat.Actor{Ref: threat.Ref{ID: 1}, Class: "warrior"})

	fs.SetAura(1, 71)
	fs.SetAura(1, 72)

	auras := fs.GetAurasForActor(threat.Ref{ID: 1})
	_, hasOld := auras[71]
	_, hasNew := auras[72]
	assert.False(t, hasOld, "stance 71 should be evicted by the exclusive group")
	assert.True(t, hasNew)
}

func TestIsAliveDefaultsTrue(t *testing.T) {
	fs := newTestState(nil)
	assert.True(t, fs.IsAlive(threat.Ref{ID: 42}))
}

func TestProcessEventDeathMarksTargetDead(t *testing.T) {
	fs := newTestState(nil)
	fs.ProcessEvent(threat.Event{Type: threat.EventDeath, SourceID: 1, TargetID: 2})
	assert.False(t, fs.IsAlive(threat.Ref{ID: 2}))
	assert.True(t, fs.IsAlive(threat.Ref{ID: 1}))
}

func TestProcessEventBuffLifecycle(t *testing.T) {
	fs := newTestState(nil)
	fs.ProcessEvent(threat.Event{
		Type: threat.EventApplyBuff, SourceID: 1, TargetID: 1,
		AbilityGameID: 1001, HasAbilityGameID: true,
	})
	assert.Contains(t, fs.GetAurasForActor(threat.Ref{ID: 1}), int64(1001))

	fs.ProcessEvent(threat.Event{
		Type: threat.EventRemoveBuff, SourceID: 1, TargetID: 1,
		AbilityGameID: 1001, HasAbilityGameID: true,
	})
	assert.NotContains(t, fs.GetAurasForActor(threat.Ref{ID: 1}), int64(1001))
}

func TestProcessEventCombatantInfoAppliesGearImplications(t *testing.T) {
	cfg := &threatconfig.Config{
		Classes: map[string]threatconfig.ClassConfig{
			"warrior": {
				GearImplications: map[int64][]int64{9001: {5555}},
			},
		},
	}
	fs := newTestState(cfg)
	fs.SeedIdentity(&threat.Actor{Ref: threat.Ref{ID: 1}, Class: "warrior"})

	fs.ProcessEvent(threat.Event{
		Type:     threat.EventCombatantInfo,
		SourceID: 1,
		Auras:    []int64{1, 2},
		Gear:     []threat.GearItem{{ID: 9001}},
	})

	auras := fs.GetAurasForActor(threat.Ref{ID: 1})
	assert.Contains(t, auras, int64(1))
	assert.Contains(t, auras, int64(2))
	assert.Contains(t, auras, int64(5555), "gear-implied synthetic aura should be seeded")
	assert.True(t, fs.IsAlive(threat.Ref{ID: 1}))
}

func TestPositionTracking(t *testing.T) {
	fs := newTestState(nil)
	fs.ProcessEvent(threat.Event{SourceID: 1, HasPosition: true, X: 10, Y: 20})
	x, y, ok := fs.GetPosition(threat.Ref{ID: 1})
	require.True(t, ok)
	assert.Equal(t, 10.0, x)
	assert.Equal(t, 20.0, y)
}
