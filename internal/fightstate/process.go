package fightstate

import "github.com/tstirrat/wow-threat-sub000/internal/threat"

// ProcessEvent folds one raw event's state-bearing fields into the fight:
// aura membership, liveness, positions, and (on combatantinfo) resolved
// identity plus gear/talent/aura-implied synthetic auras.
//
// This runs for every event of the main pass, independent of and before the
// event's threat calculation, so later steps in the same pass observe
// up-to-date state.
func (fs *FightState) ProcessEvent(event threat.Event) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if event.HasPosition {
		fs.setPositionLocked(event.SourceID, event.X, event.Y)
	}

	switch event.Type {
	case threat.EventDeath:
		if event.TargetID != 0 {
			fs.setAliveLocked(event.TargetID, false)
		} else {
			fs.setAliveLocked(event.SourceID, false)
		}
	case threat.EventCast, threat.EventBeginCast:
		// A dead actor casting or beginning a cast is the log's signal of a
		// resurrection: Dead -[cast or begincast, self as source]-> Alive.
		fs.setAliveLocked(event.SourceID, true)
	case threat.EventSummon:
		fs.setAliveLocked(event.TargetID, true)
	case threat.EventCombatantInfo:
		fs.absorbCombatantInfoLocked(event)
	default:
		if event.Type.IsBuffLifecycle() && event.HasAbilityGameID {
			fs.applyBuffLifecycleLocked(event)
		}
	}
}

func (fs *FightState) applyBuffLifecycleLocked(event threat.Event) {
	actorID := event.TargetID
	spellID := event.AbilityGameID

	if event.Type.IsApply() {
		if group := fs.exclusiveGroupLocked(actorID, spellID); group != nil {
			for _, other := range group {
				if other != spellID {
					fs.removeAuraLocked(actorID, other)
				}
			}
		}
		fs.addAuraLocked(actorID, spellID)
		return
	}
	if event.Type.IsRemove() {
		fs.removeAuraLocked(actorID, spellID)
	}
}

// absorbCombatantInfoLocked seeds actorID's starting aura set from the
// event's explicit auras plus any gear-, talent-, or aura-implied synthetic
// auras declared by the actor's class config.
func (fs *FightState) absorbCombatantInfoLocked(event threat.Event) {
	actorID := event.SourceID
	fs.setAliveLocked(actorID, true)

	for _, spellID := range event.Auras {
		fs.addAuraLocked(actorID, spellID)
	}

	actor := fs.identities[actorID]
	if actor == nil || fs.cfg == nil {
		return
	}
	cc, ok := fs.cfg.Classes[actor.Class]
	if !ok {
		return
	}

	for _, auraID := range event.Auras {
		for _, synthetic := range cc.AuraImplications[auraID] {
			fs.addAuraLocked(actorID, synthetic)
		}
	}
	for _, gear := range event.Gear {
		for _, synthetic := range cc.GearImplications[gear.ID] {
			fs.addAuraLocked(actorID, synthetic)
		}
	}
	for _, talentID := range event.Talents {
		for _, synthetic := range cc.TalentImplications[talentID] {
			fs.addAuraLocked(actorID, synthetic)
		}
	}
}
