// Package threatconfig defines the opaque per-game-version threat config
// surface the engine consumes. The engine never constructs or interprets
// the business meaning of a formula; it only dispatches to it.
package threatconfig

import "github.com/tstirrat/wow-threat-sub000/internal/threat"

// StateView is the minimal read-only FightState surface a formula or aura
// modifier may query. Declared here (rather than imported from
// internal/fightstate) to avoid an import cycle, mirroring how
// threat.ActorQuerier is declared alongside the Interceptor type it serves.
type StateView interface {
	GetThreat(source, enemy threat.Ref) float64
	IsAlive(ref threat.Ref) bool
	AuraSet(ref threat.Ref) map[int64]struct{}
}

// FormulaContext carries everything a base or per-ability formula needs to
// compute a threat value for one event.
type FormulaContext struct {
	Event       threat.Event
	Amount      int
	SchoolMask  uint32
	SourceAuras map[int64]struct{}
	TargetAuras map[int64]struct{}
	Source      *threat.Actor
	Target      *threat.Actor
	EncounterID int64
	State       StateView
}

// FormulaResult is what a formula returns. A nil *FormulaResult from a
// per-ability formula means "no threat for this phase" with no fallback to
// the base formula.
type FormulaResult struct {
	Label                  string
	Value                  float64
	SplitAmongEnemies      bool
	ApplyPlayerMultipliers *bool // nil = use event-type default
	Effects                []threat.Effect
	Note                   string
}

// Formula computes a threat result for one event, or nil for "no threat".
type Formula func(ctx FormulaContext) *FormulaResult

// ModifierContext is passed to an aura modifier function.
type ModifierContext struct {
	Event  threat.Event
	Source *threat.Actor
}

// AuraModifier is a multiplicative threat modifier gated on an active aura,
// optionally scoped to specific spell ids and/or a school mask.
type AuraModifier struct {
	SpellID    int64
	Name       string
	Fn         func(ctx ModifierContext) float64
	SpellIDs   []int64 // optional scope: only applies to these ability ids (empty = any)
	SchoolMask uint32  // optional scope: only applies to these schools (0 = any)
}

// appliesToSpell reports whether this modifier's spellIds scope (if any)
// includes the given ability id.
func (m AuraModifier) appliesToSpell(abilityID int64, hasAbility bool) bool {
	if len(m.SpellIDs) == 0 {
		return true
	}
	if !hasAbility {
		return false
	}
	for _, id := range m.SpellIDs {
		if id == abilityID {
			return true
		}
	}
	return false
}

// appliesToSchool reports whether this modifier's schoolMask scope (if any)
// intersects the given event school mask.
func (m AuraModifier) appliesToSchool(schoolMask uint32) bool {
	if m.SchoolMask == 0 {
		return true
	}
	return m.SchoolMask&schoolMask != 0
}

// ExclusiveAuraGroup is a set of mutually-exclusive spell ids: adding one
// removes the others in its group.
type ExclusiveAuraGroup []int64

// ClassConfig is the per-class override layer merged onto the globals, with
// class entries taking precedence over the matching global field.
type ClassConfig struct {
	BaseThreatFactor     float64
	Abilities            map[int64]Formula
	AuraModifiers        []AuraModifier
	ExclusiveAuras       []ExclusiveAuraGroup
	AuraImplications     map[int64][]int64 // combatantinfo aura -> synthetic auras
	GearImplications     map[int64][]int64 // gear item id -> synthetic auras
	TalentImplications   map[int64][]int64 // talent id -> synthetic auras
	FixateBuffs          map[int64]bool
	AggroLossBuffs       map[int64]bool
	InvulnerabilityBuffs map[int64]bool
}

// EncounterConfig holds an optional per-encounter preprocessor, e.g. a
// cast-gap threat wipe.
type EncounterConfig struct {
	// Preprocessor is invoked during threat calculation for every event of
	// this encounter and may contribute extra effects.
	Preprocessor func(ctx FormulaContext) []threat.Effect
}

// Config is the full per-game-version threat config. Engine code treats it
// as opaque data; it never mutates a Config it is given.
type Config struct {
	BaseThreatDamage   Formula
	BaseThreatAbsorbed Formula
	BaseThreatHeal     Formula
	BaseThreatEnergize Formula

	Abilities     map[int64]Formula
	AuraModifiers []AuraModifier

	Classes map[string]ClassConfig

	Encounters map[int64]EncounterConfig

	FixateBuffs          map[int64]bool
	AggroLossBuffs       map[int64]bool
	InvulnerabilityBuffs map[int64]bool
}
