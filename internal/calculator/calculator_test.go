package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tstirrat/wow-threat-sub000/internal/fightstate"
	"github.com/tstirrat/wow-threat-sub000/internal/threat"
	"github.com/tstirrat/wow-threat-sub000/internal/threatconfig"
)

const (
	warriorID int64 = 1
	bossID    int64 = 100

	defensiveStanceID int64 = 71
)

func warriorConfig() *threatconfig.Config {
	return &threatconfig.Config{
		BaseThreatDamage: func(ctx threatconfig.FormulaContext) *threatconfig.FormulaResult {
			return &threatconfig.FormulaResult{Label: "2x damage", Value: float64(ctx.Amount) * 2}
		},
		Classes: map[string]threatconfig.ClassConfig{
			"warrior": {
				BaseThreatFactor: 1.3,
				AuraModifiers: []threatconfig.AuraModifier{
					{SpellID: defensiveStanceID, Name: "Defensive Stance", Fn: func(threatconfig.ModifierContext) float64 { return 1.3 }},
				},
			},
		},
	}
}

// Warrior in Defensive Stance, base formula 2x damage, class factor 1.3,
// stance 1.3 -> 1000*2*1.3*1.3 = 3380.
func TestCalculateDamageWithStanceAndClassFactor(t *testing.T) {
	cfg := warriorConfig()
	fs := fightstate.New(cfg, map[int64]struct{}{warriorID: {}}, nil)
	fs.SeedIdentity(&threat.Actor{Ref: threat.Ref{ID: warriorID}, Class: "warrior", Friendly: true})
	fs.SeedAura(warriorID, defensiveStanceID)

	c := New(nil, nil, nil)
	event := threat.Event{Type: threat.EventDamage, SourceID: warriorID, TargetID: bossID, Amount: 1000}
	calc := c.Calculate(event, fs, cfg, 0)

	assert.Equal(t, "2x damage", calc.Formula)
	assert.Equal(t, float64(2000), calc.BaseThreat)
	assert.InDelta(t, 3380, calc.ModifiedThreat, 0.001)
	require.Len(t, calc.Modifiers, 2)
}

// A damage event with ability id 1 from a hostile source on a friendly
// target is a boss melee marker with zero threat.
func TestCalculateBossMeleeMarker(t *testing.T) {
	fs := fightstate.New(nil, map[int64]struct{}{warriorID: {}}, nil)
	c := New(nil, nil, nil)

	event := threat.Event{
		Type: threat.EventDamage, SourceID: bossID, TargetID: warriorID,
		AbilityGameID: bossMeleeAbilityID, HasAbilityGameID: true, Amount: 500,
	}
	calc := c.Calculate(event, fs, &threatconfig.Config{}, 0)

	assert.Equal(t, "0 (boss melee marker)", calc.Formula)
	assert.Zero(t, calc.ModifiedThreat)
	require.Len(t, calc.Effects, 1)
	assert.Equal(t, threat.EffectEventMarker, calc.Effects[0].Kind)
	assert.Equal(t, threat.MarkerBossMelee, calc.Effects[0].EventMarker.Marker)
}

// A per-ability formula returning nil means no threat for this phase, with
// no fallback to the base-by-event-type formula.
func TestCalculateAbilityFormulaNoneSuppressesFallback(t *testing.T) {
	cfg := &threatconfig.Config{
		BaseThreatDamage: func(ctx threatconfig.FormulaContext) *threatconfig.FormulaResult {
			return &threatconfig.FormulaResult{Label: "should not run", Value: 9999}
		},
		Abilities: map[int64]threatconfig.Formula{
			42: func(threatconfig.FormulaContext) *threatconfig.FormulaResult { return nil },
		},
	}
	fs := fightstate.New(cfg, nil, nil)
	c := New(nil, nil, nil)

	event := threat.Event{Type: threat.EventDamage, SourceID: warriorID, TargetID: bossID, AbilityGameID: 42, HasAbilityGameID: true, Amount: 100}
	calc := c.Calculate(event, fs, cfg, 0)
	assert.Zero(t, calc.ModifiedThreat)
}
