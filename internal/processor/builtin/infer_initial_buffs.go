// Package builtin implements the engine's shipped processors:
// infer-initial-buffs, Minmax-Salvation, Party-Detection, and the Tranquil
// Air totem emulation.
package builtin

import (
	"github.com/tstirrat/wow-threat-sub000/internal/processor"
	"github.com/tstirrat/wow-threat-sub000/internal/threat"
)

type actorSpellKey struct {
	ActorID int64
	SpellID int64
}

// InferInitialBuffs seeds auras the log never shows being applied: if the
// first lifecycle event observed for (actor, spell) is a refresh or a
// removal, the aura must already have been active when the log started.
type InferInitialBuffs struct {
	processor.NoopProcessor

	firstType    map[actorSpellKey]threat.EventType
	combatantAuras map[int64]map[int64]struct{}
}

// NewInferInitialBuffs constructs the processor. It always runs, regardless
// of the inferThreatReduction flag.
func NewInferInitialBuffs() *InferInitialBuffs {
	return &InferInitialBuffs{
		firstType:      make(map[actorSpellKey]threat.EventType),
		combatantAuras: make(map[int64]map[int64]struct{}),
	}
}

func (p *InferInitialBuffs) Init(*processor.Context) {
	p.firstType = make(map[actorSpellKey]threat.EventType)
	p.combatantAuras = make(map[int64]map[int64]struct{})
}

func (p *InferInitialBuffs) VisitPrepass(ctx *processor.Context, event threat.Event) {
	if event.Type == threat.EventCombatantInfo {
		set, ok := p.combatantAuras[event.SourceID]
		if !ok {
			set = make(map[int64]struct{})
			p.combatantAuras[event.SourceID] = set
		}
		for _, spellID := range event.Auras {
			set[spellID] = struct{}{}
		}
		return
	}

	if !event.Type.IsBuffLifecycle() || !event.HasAbilityGameID {
		return
	}
	if !ctx.Fight.IsFriendly(event.TargetID) {
		return
	}
	key := actorSpellKey{ActorID: event.TargetID, SpellID: event.AbilityGameID}
	if _, seen := p.firstType[key]; !seen {
		p.firstType[key] = event.Type
	}
}

func (p *InferInitialBuffs) FinalizePrepass(ctx *processor.Context) {
	for key, firstType := range p.firstType {
		if firstType != threat.EventRemoveBuff && firstType != threat.EventRefreshBuff &&
			firstType != threat.EventRemoveDebuff && firstType != threat.EventRefreshDebuff {
			continue
		}
		if ctx.IsAuraSeeded(key.ActorID, key.SpellID) {
			continue
		}
		if _, fromCombatant := p.combatantAuras[key.ActorID][key.SpellID]; fromCombatant {
			continue
		}
		processor.AddInitialAura(ctx.Namespace, key.ActorID, key.SpellID)
	}

	for actorID, auras := range p.combatantAuras {
		for spellID := range auras {
			processor.AddInitialAura(ctx.Namespace, actorID, spellID)
		}
	}
}
