package threatconfig

// Builtin returns a small, clearly-labeled default threat config used only
// by this repository's own tests and examples (SPEC_FULL.md §C.2). The real
// per-game-version config is supplied by the caller and treated as opaque;
// nothing in the engine assumes Builtin's formulas or spell ids.
//
// The base formulas mirror the shape of a classic WoW threat table: damage
// and absorbed amounts generate threat 1:1 with school-specific scaling left
// to the caller's aura modifiers, healing generates half its amount, and
// resource restoration generates none by default (grounded on
// raethkcj-wotlk/sim/core/spell.go's FlatThreatBonus/DynamicThreatBonus
// shape, simplified to a flat per-event multiplier since this engine has no
// per-spell coefficient table of its own).
func Builtin() *Config {
	return &Config{
		BaseThreatDamage: func(ctx FormulaContext) *FormulaResult {
			return &FormulaResult{Label: "base damage", Value: float64(ctx.Amount)}
		},
		BaseThreatAbsorbed: func(ctx FormulaContext) *FormulaResult {
			return &FormulaResult{Label: "base absorbed", Value: float64(ctx.Amount)}
		},
		BaseThreatHeal: func(ctx FormulaContext) *FormulaResult {
			return &FormulaResult{Label: "base heal", Value: float64(ctx.Amount) * 0.5}
		},
		BaseThreatEnergize: func(ctx FormulaContext) *FormulaResult {
			no := false
			return &FormulaResult{Label: "base energize", Value: 0, ApplyPlayerMultipliers: &no}
		},
		Abilities: map[int64]Formula{},
		Classes: map[string]ClassConfig{
			"warrior": {
				BaseThreatFactor: 1.3,
			},
		},
	}
}
