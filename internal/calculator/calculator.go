// Package calculator implements the threat calculator: per-event dispatch
// to a formula, multiplier accumulation, and effect emission.
//
// Grounded on the teacher's effects.LayerSystem (internal/game/effects/layers.go),
// which applies a permanent's continuous effects in dependency-sorted layers
// to compute its characteristics — the same shape as accumulating a class
// factor and a variable set of aura modifiers multiplicatively onto a base
// threat value. The per-ability/per-event-type dispatch table is grounded on
// raethkcj-wotlk/sim/core/spell.go's formula-per-spell-id lookup.
package calculator

import (
	"go.uber.org/zap"

	"github.com/tstirrat/wow-threat-sub000/internal/fightstate"
	"github.com/tstirrat/wow-threat-sub000/internal/interceptor"
	"github.com/tstirrat/wow-threat-sub000/internal/threat"
	"github.com/tstirrat/wow-threat-sub000/internal/threatconfig"
)

// bossMeleeAbilityID is the synthetic ability id recorded by the log
// service client for a plain boss melee swing.
const bossMeleeAbilityID int64 = 1

// Calculator computes one ThreatCalculation per event. It owns no mutable
// fight state of its own beyond a state-effect sequence counter and the
// interceptor tracker formulas may register against.
type Calculator struct {
	logger     *zap.Logger
	schoolMask map[int64]uint32
	tracker    *interceptor.Tracker
	seq        int
}

// New constructs a Calculator. schoolMask maps ability ids to a school
// bitmask; tracker is the run's shared InterceptorTracker, so
// installInterceptor effects emitted by a formula or processor are visible
// to the very next event.
func New(logger *zap.Logger, schoolMask map[int64]uint32, tracker *interceptor.Tracker) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger, schoolMask: schoolMask, tracker: tracker}
}

// Calculate computes the ThreatCalculation for one event. fs must already
// reflect event's FightState.ProcessEvent update.
func (c *Calculator) Calculate(event threat.Event, fs *fightstate.FightState, cfg *threatconfig.Config, encounterID int64) threat.ThreatCalculation {
	sourceRef, targetRef := event.SourceRef(), event.TargetRef()
	sourceFriendly := c.resolveFriendly(fs, sourceRef.ID, event.SourceIsFriendly)
	targetFriendly := c.resolveFriendly(fs, targetRef.ID, event.TargetIsFriendly)

	if event.Type == threat.EventDamage && event.HasAbilityGameID && event.AbilityGameID == bossMeleeAbilityID &&
		!sourceFriendly && targetFriendly {
		return threat.ThreatCalculation{
			Formula: "0 (boss melee marker)",
			Effects: []threat.Effect{threat.NewEventMarker(threat.MarkerBossMelee)},
		}
	}

	if event.Type == threat.EventDeath {
		return threat.ThreatCalculation{
			Formula: "0 (death marker)",
			Effects: []threat.Effect{threat.NewEventMarker(threat.MarkerDeath)},
		}
	}

	var interceptEffects []threat.Effect
	var recipientOverride *int64
	if c.tracker != nil {
		result := c.tracker.Run(event, fs)
		if result.Skipped {
			return threat.ThreatCalculation{Formula: "0 (suppressed by effect)"}
		}
		interceptEffects = result.Effects
		recipientOverride = result.RecipientOverride
	}

	source, _ := fs.GetActor(sourceRef)
	target, _ := fs.GetActor(targetRef)
	class := ""
	if source != nil {
		class = source.Class
	}
	prepared := threatconfig.PrepareThreatConfig(cfg, class)

	fctx := threatconfig.FormulaContext{
		Event:       event,
		Amount:      extractAmount(event),
		SchoolMask:  c.schoolMask[event.AbilityGameID],
		SourceAuras: fs.GetAurasForActor(sourceRef),
		TargetAuras: fs.GetAurasForActor(targetRef),
		Source:      source,
		Target:      target,
		EncounterID: encounterID,
		State:       fs,
	}

	formulaResult, usedAbility := c.dispatch(prepared, cfg, event, fctx)

	calc := threat.ThreatCalculation{Amount: fctx.Amount}
	applyMultipliers := event.Type != threat.EventEnergize && event.Type != threat.EventResourceChange

	if formulaResult != nil {
		calc.Formula = formulaResult.Label
		calc.BaseThreat = formulaResult.Value
		calc.IsSplit = formulaResult.SplitAmongEnemies
		calc.Note = formulaResult.Note
		calc.Effects = append(calc.Effects, formulaResult.Effects...)
		if formulaResult.ApplyPlayerMultipliers != nil {
			applyMultipliers = *formulaResult.ApplyPlayerMultipliers
		}
	} else if usedAbility {
		calc.Formula = "0 (ability formula returned no threat for this phase)"
	} else {
		calc.Formula = "0 (no base formula for event type)"
	}

	if applyMultipliers && source != nil {
		multiplier, modifiers := c.accumulateMultipliers(prepared, source, fctx.SourceAuras, event, fctx.SchoolMask)
		calc.Modifiers = modifiers
		calc.ModifiedThreat = calc.BaseThreat * multiplier
	} else {
		calc.ModifiedThreat = calc.BaseThreat
	}

	calc.Effects = append(calc.Effects, interceptEffects...)

	if enc, ok := cfg.Encounters[encounterID]; ok && enc.Preprocessor != nil {
		calc.Effects = append(calc.Effects, enc.Preprocessor(fctx)...)
	}

	calc.Effects = append(calc.Effects, c.stateEffects(prepared, event)...)
	calc.RecipientOverride = recipientOverride

	return calc
}

// dispatch resolves the formula for event: the merged per-ability table
// first, falling back to the base-by-event-type formula only when no
// per-ability entry exists for this spell id. usedAbility distinguishes
// "ability formula ran and returned nil" from "no ability formula existed at
// all", since only the former forgoes a fallback label.
func (c *Calculator) dispatch(prepared *threatconfig.Prepared, cfg *threatconfig.Config, event threat.Event, fctx threatconfig.FormulaContext) (*threatconfig.FormulaResult, bool) {
	if event.HasAbilityGameID {
		if formula, ok := prepared.Abilities[event.AbilityGameID]; ok {
			return formula(fctx), true
		}
	}

	var base threatconfig.Formula
	switch event.Type {
	case threat.EventDamage:
		base = cfg.BaseThreatDamage
	case threat.EventAbsorbed:
		base = cfg.BaseThreatAbsorbed
	case threat.EventHeal:
		base = cfg.BaseThreatHeal
	case threat.EventEnergize, threat.EventResourceChange:
		base = cfg.BaseThreatEnergize
	}
	if base == nil {
		return nil, false
	}
	return base(fctx), false
}

// accumulateMultipliers composes the source's class factor (if not 1) with
// every in-scope active aura modifier.
func (c *Calculator) accumulateMultipliers(prepared *threatconfig.Prepared, source *threat.Actor, sourceAuras map[int64]struct{}, event threat.Event, schoolMask uint32) (float64, []threat.AppliedModifier) {
	multiplier := 1.0
	var modifiers []threat.AppliedModifier

	if prepared.BaseThreatFactor != 1 {
		multiplier *= prepared.BaseThreatFactor
		modifiers = append(modifiers, threat.AppliedModifier{Name: source.Class + " class factor", Value: prepared.BaseThreatFactor})
	}

	for _, mod := range prepared.AuraModifiers {
		if _, active := sourceAuras[mod.SpellID]; !active {
			continue
		}
		if len(mod.SpellIDs) > 0 {
			if !event.HasAbilityGameID {
				continue
			}
			inScope := false
			for _, id := range mod.SpellIDs {
				if id == event.AbilityGameID {
					inScope = true
					break
				}
			}
			if !inScope {
				continue
			}
		}
		if mod.SchoolMask != 0 && mod.SchoolMask&schoolMask == 0 {
			continue
		}
		value := mod.Fn(threatconfig.ModifierContext{Event: event, Source: source})
		multiplier *= value
		modifiers = append(modifiers, threat.AppliedModifier{Name: mod.Name, Value: value})
	}

	return multiplier, modifiers
}

// stateEffects emits a fixate/aggroLoss/invulnerable overlay marker when
// event applies or removes a buff/debuff in one of the config's state-spell
// sets.
func (c *Calculator) stateEffects(prepared *threatconfig.Prepared, event threat.Event) []threat.Effect {
	if !event.Type.IsBuffLifecycle() || !event.HasAbilityGameID {
		return nil
	}

	kind, ok := stateKindFor(prepared, event.AbilityGameID)
	if !ok {
		return nil
	}

	phase := threat.PhaseStart
	if event.Type.IsRemove() {
		phase = threat.PhaseEnd
	}

	c.seq++
	se := threat.StateEffect{
		Kind:     kind,
		Phase:    phase,
		SpellID:  event.AbilityGameID,
		ActorID:  event.TargetID,
		Sequence: c.seq,
	}
	if kind == threat.StateFixate {
		se.TargetID = event.SourceID
		se.TargetInstance = event.SourceInstance
		se.HasTarget = true
	}
	return []threat.Effect{{Kind: threat.EffectState, State: &se}}
}

func stateKindFor(prepared *threatconfig.Prepared, spellID int64) (threat.StateKind, bool) {
	switch {
	case prepared.FixateBuffs[spellID]:
		return threat.StateFixate, true
	case prepared.AggroLossBuffs[spellID]:
		return threat.StateAggroLoss, true
	case prepared.InvulnerabilityBuffs[spellID]:
		return threat.StateInvulnerable, true
	default:
		return 0, false
	}
}

// resolveFriendly honours an explicit friendliness flag first, then
// authoritative friendly-set membership, then falls back to "class-bearing
// actor => friendly".
func (c *Calculator) resolveFriendly(fs *fightstate.FightState, actorID int64, explicit *bool) bool {
	if explicit != nil {
		return *explicit
	}
	if fs.IsFriendly(actorID) {
		return true
	}
	if actor, ok := fs.GetActor(threat.Ref{ID: actorID}); ok {
		return actor.Class != ""
	}
	return false
}

// extractAmount resolves the threat-relevant quantity out of event.
func extractAmount(event threat.Event) int {
	switch event.Type {
	case threat.EventDamage, threat.EventAbsorbed:
		return event.Amount
	case threat.EventHeal:
		return max(0, event.Amount-event.Overheal)
	case threat.EventEnergize, threat.EventResourceChange:
		return max(0, event.ResourceChange-event.Waste)
	default:
		return 0
	}
}
