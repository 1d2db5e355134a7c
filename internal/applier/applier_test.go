package applier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tstirrat/wow-threat-sub000/internal/fightstate"
	"github.com/tstirrat/wow-threat-sub000/internal/threat"
)

const warriorID, priestID, bossID, addID int64 = 1, 2, 100, 101

func newState(friendly ...int64) *fightstate.FightState {
	set := make(map[int64]struct{}, len(friendly))
	for _, id := range friendly {
		set[id] = struct{}{}
	}
	return fightstate.New(nil, set, nil)
}

// Three prior damage events build threat, then a friendly death zeroes
// every row and suppresses further application from the now-dead source.
func TestApplyDeathWipesThreatAndSuppressesFurtherApplication(t *testing.T) {
	fs := newState(warriorID)
	boss, add := threat.Ref{ID: bossID}, threat.Ref{ID: addID}
	fs.AddThreat(threat.Ref{ID: warriorID}, boss, 400)
	fs.AddThreat(threat.Ref{ID: warriorID}, add, 200)

	a := New(nil)
	deathEvent := threat.Event{Type: threat.EventDeath, TargetID: warriorID}
	fs.ProcessEvent(deathEvent)
	changes := a.Apply(deathEvent, threat.ThreatCalculation{}, warriorID, fs, []threat.Ref{boss, add})

	require.Len(t, changes, 2)
	for _, c := range changes {
		assert.Equal(t, threat.OpSet, c.Operator)
		assert.Zero(t, c.Total)
	}
	assert.Equal(t, float64(0), fs.GetThreat(threat.Ref{ID: warriorID}, boss))
	assert.Equal(t, float64(0), fs.GetThreat(threat.Ref{ID: warriorID}, add))

	// A subsequent tick from the still-dead warrior emits no changes.
	tick := threat.Event{Type: threat.EventDamage, SourceID: warriorID, Tick: true, Amount: 50}
	changes = a.Apply(tick, threat.ThreatCalculation{ModifiedThreat: 100}, warriorID, fs, []threat.Ref{boss, add})
	assert.Empty(t, changes)
}

// A split heal divides evenly across alive enemies.
func TestApplySplitsThreatAcrossAliveEnemies(t *testing.T) {
	fs := newState(priestID)
	boss, add := threat.Ref{ID: bossID}, threat.Ref{ID: addID}

	a := New(nil)
	event := threat.Event{Type: threat.EventHeal, SourceID: priestID, TargetID: priestID, Amount: 1000}
	calc := threat.ThreatCalculation{ModifiedThreat: 500, IsSplit: true}
	changes := a.Apply(event, calc, priestID, fs, []threat.Ref{boss, add})

	require.Len(t, changes, 2)
	for _, c := range changes {
		assert.Equal(t, threat.OpAdd, c.Operator)
		assert.Equal(t, float64(250), c.Amount)
	}
}

// Split threat with zero alive enemies emits no changes.
func TestApplySplitWithNoAliveEnemiesEmitsNothing(t *testing.T) {
	fs := newState(priestID)
	boss := threat.Ref{ID: bossID}
	fs.ProcessEvent(threat.Event{Type: threat.EventDeath, TargetID: bossID})

	a := New(nil)
	event := threat.Event{Type: threat.EventHeal, SourceID: priestID, TargetID: priestID}
	calc := threat.ThreatCalculation{ModifiedThreat: 500, IsSplit: true}
	changes := a.Apply(event, calc, priestID, fs, []threat.Ref{boss})
	assert.Empty(t, changes)
}

// modifyThreat with multiplier 0 zeros only the previously non-zero rows.
func TestModifyThreatAllZerosOnlyNonZeroRows(t *testing.T) {
	fs := newState(priestID)
	boss, add := threat.Ref{ID: bossID}, threat.Ref{ID: addID}
	fs.AddThreat(threat.Ref{ID: priestID}, boss, 300)
	// add row stays at its default zero.

	a := New(nil)
	friendly := true
	event := threat.Event{SourceID: priestID, SourceIsFriendly: &friendly}
	calc := threat.ThreatCalculation{Effects: []threat.Effect{threat.NewModifyThreat(0, threat.ModifyTargetAll)}}
	changes := a.Apply(event, calc, priestID, fs, []threat.Ref{boss, add})

	require.Len(t, changes, 1)
	assert.Equal(t, bossID, changes[0].TargetID)
	assert.Equal(t, float64(0), changes[0].Total)
	assert.Equal(t, float64(0), fs.GetThreat(threat.Ref{ID: priestID}, boss))
}

func TestApplyEnvironmentNeverAppearsInChanges(t *testing.T) {
	fs := newState(priestID)
	a := New(nil)
	event := threat.Event{Type: threat.EventHeal, SourceID: priestID, TargetID: threat.EnvironmentID}
	calc := threat.ThreatCalculation{ModifiedThreat: 500}
	changes := a.Apply(event, calc, priestID, fs, []threat.Ref{{ID: bossID}})
	assert.Empty(t, changes)
}
