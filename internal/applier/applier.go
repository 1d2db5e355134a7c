// Package applier turns a calculated threat result into the final `changes`
// rows on an augmented event, honouring death, splitting, and effect
// ordering.
//
// Grounded on the teacher's effects/cleanup.go (lifecycle teardown applied
// in a fixed order when a permanent leaves play) and, for the death-wipe and
// dead-source-skip branches, on the general "liveness gates further effect
// application" shape used throughout internal/game/rules/trigger.go.
package applier

import (
	"go.uber.org/zap"

	"github.com/tstirrat/wow-threat-sub000/internal/fightstate"
	"github.com/tstirrat/wow-threat-sub000/internal/threat"
)

// Applier turns a calculated threat result into the changes that get
// recorded on the augmented event.
type Applier struct {
	logger *zap.Logger
}

// New constructs an Applier.
func New(logger *zap.Logger) *Applier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Applier{logger: logger}
}

// Apply computes the final `changes` list for event, given its calculation
// and the (possibly interceptor-overridden) recipient actor id, against the
// given list of tracked enemies.
func (a *Applier) Apply(event threat.Event, calc threat.ThreatCalculation, recipientID int64, fs *fightstate.FightState, enemies []threat.Ref) []threat.ThreatChange {
	if event.Type == threat.EventDeath {
		dying := event.TargetRef()
		if event.TargetID == 0 {
			dying = event.SourceRef()
		}
		if fs.IsFriendly(dying.ID) {
			return a.wipeThreat(dying, fs)
		}
		return nil // enemy death: liveness already updated, no threat changes
	}

	if !fs.IsAlive(event.SourceRef()) {
		return nil // dead source: skip all applications
	}

	var changes []threat.ThreatChange
	for _, eff := range calc.Effects {
		changes = append(changes, a.applyEffect(event, eff, recipientID, fs, enemies)...)
	}
	changes = append(changes, a.applyBaseThreat(event, calc, recipientID, fs, enemies)...)
	return changes
}

func (a *Applier) wipeThreat(actor threat.Ref, fs *fightstate.FightState) []threat.ThreatChange {
	cleared := fs.ClearAllThreatForActor(actor)
	if len(cleared) == 0 {
		return nil
	}
	changes := make([]threat.ThreatChange, 0, len(cleared))
	for _, c := range cleared {
		if c.Enemy.IsEnvironment() {
			continue
		}
		changes = append(changes, threat.ThreatChange{
			SourceID: actor.ID, TargetID: c.Enemy.ID, TargetInstance: c.Enemy.Instance,
			Operator: threat.OpSet, Amount: 0, Total: 0,
		})
	}
	return changes
}

func (a *Applier) applyEffect(event threat.Event, eff threat.Effect, recipientID int64, fs *fightstate.FightState, enemies []threat.Ref) []threat.ThreatChange {
	switch eff.Kind {
	case threat.EffectCustomThreat:
		return a.applyCustomThreat(eff.CustomThreat.Changes, fs)
	case threat.EffectModifyThreat:
		return a.applyModifyThreat(event, eff.ModifyThreat, recipientID, fs, enemies)
	default:
		// installInterceptor, auraMutation, state, eventMarker carry no
		// threat changes of their own; the engine/pipeline and aggregation
		// layer consume them directly from calc.Effects.
		return nil
	}
}

func (a *Applier) applyCustomThreat(explicit []threat.ThreatChange, fs *fightstate.FightState) []threat.ThreatChange {
	var changes []threat.ThreatChange
	for _, ch := range explicit {
		if ch.SourceID == threat.EnvironmentID || ch.TargetID == threat.EnvironmentID {
			continue
		}
		before := fs.GetThreat(threat.Ref{ID: ch.SourceID}, threat.Ref{ID: ch.TargetID, Instance: ch.TargetInstance})
		total := fs.ApplyChange(ch)
		out := ch
		out.Total = total
		if ch.Operator == threat.OpAdd {
			out.Amount = total - before
			if out.Amount == 0 {
				continue
			}
		} else {
			out.Amount = total
		}
		changes = append(changes, out)
	}
	return changes
}

func (a *Applier) applyModifyThreat(event threat.Event, m *threat.ModifyThreatEffect, recipientID int64, fs *fightstate.FightState, enemies []threat.Ref) []threat.ThreatChange {
	sourceIsFriendly := a.isFriendly(fs, event.SourceID, event.SourceIsFriendly)

	if m.Target == threat.ModifyTargetSingle {
		if sourceIsFriendly || event.SourceID == threat.EnvironmentID {
			return nil
		}
		enemy := threat.Ref{ID: event.SourceID, Instance: event.SourceInstance}
		actor := threat.Ref{ID: recipientID}
		before := fs.GetThreat(actor, enemy)
		if before == 0 {
			return nil
		}
		total := fs.SetThreat(actor, enemy, before*m.Multiplier)
		return []threat.ThreatChange{{SourceID: actor.ID, TargetID: enemy.ID, TargetInstance: enemy.Instance, Operator: threat.OpSet, Amount: total, Total: total}}
	}

	// ModifyTargetAll.
	if sourceIsFriendly {
		actor := threat.Ref{ID: event.SourceID}
		var changes []threat.ThreatChange
		for _, enemy := range enemies {
			if enemy.IsEnvironment() {
				continue
			}
			before := fs.GetThreat(actor, enemy)
			if before == 0 {
				continue
			}
			total := fs.SetThreat(actor, enemy, before*m.Multiplier)
			changes = append(changes, threat.ThreatChange{SourceID: actor.ID, TargetID: enemy.ID, TargetInstance: enemy.Instance, Operator: threat.OpSet, Amount: total, Total: total})
		}
		return changes
	}

	if event.SourceID == threat.EnvironmentID {
		return nil
	}
	enemy := threat.Ref{ID: event.SourceID, Instance: event.SourceInstance}
	var changes []threat.ThreatChange
	for actorID, before := range fs.GetAllActorThreat(enemy) {
		if before == 0 {
			continue
		}
		total := fs.SetThreat(threat.Ref{ID: actorID}, enemy, before*m.Multiplier)
		changes = append(changes, threat.ThreatChange{SourceID: actorID, TargetID: enemy.ID, TargetInstance: enemy.Instance, Operator: threat.OpSet, Amount: total, Total: total})
	}
	return changes
}

func (a *Applier) applyBaseThreat(event threat.Event, calc threat.ThreatCalculation, recipientID int64, fs *fightstate.FightState, enemies []threat.Ref) []threat.ThreatChange {
	if calc.ModifiedThreat == 0 {
		return nil
	}
	actor := threat.Ref{ID: recipientID}

	if calc.IsSplit {
		alive := aliveEnemiesExcludingEnvironment(enemies, fs)
		if len(alive) == 0 {
			return nil
		}
		share := calc.ModifiedThreat / float64(len(alive))
		var changes []threat.ThreatChange
		for _, enemy := range alive {
			before := fs.GetThreat(actor, enemy)
			total := fs.AddThreat(actor, enemy, share)
			delta := total - before
			if delta == 0 {
				continue
			}
			changes = append(changes, threat.ThreatChange{SourceID: actor.ID, TargetID: enemy.ID, TargetInstance: enemy.Instance, Operator: threat.OpAdd, Amount: delta, Total: total})
		}
		return changes
	}

	enemy, ok := resolveSingleTarget(event, enemies)
	if !ok {
		return nil
	}
	before := fs.GetThreat(actor, enemy)
	total := fs.AddThreat(actor, enemy, calc.ModifiedThreat)
	delta := total - before
	if delta == 0 {
		return nil
	}
	return []threat.ThreatChange{{SourceID: actor.ID, TargetID: enemy.ID, TargetInstance: enemy.Instance, Operator: threat.OpAdd, Amount: delta, Total: total}}
}

// resolveSingleTarget picks the enemy a non-split threat application lands
// on.
func resolveSingleTarget(event threat.Event, enemies []threat.Ref) (threat.Ref, bool) {
	if event.Type == threat.EventAbsorbed && event.HasAttackerID {
		if ref, ok := matchEnemyByID(enemies, event.AttackerID); ok {
			return ref, true
		}
	}
	target := threat.Ref{ID: event.TargetID, Instance: event.TargetInstance}
	return matchEnemy(enemies, target)
}

func matchEnemy(enemies []threat.Ref, ref threat.Ref) (threat.Ref, bool) {
	if ref.IsEnvironment() {
		return threat.Ref{}, false
	}
	for _, e := range enemies {
		if e.ID == ref.ID && e.Instance == ref.Instance {
			return e, true
		}
	}
	return threat.Ref{}, false
}

func matchEnemyByID(enemies []threat.Ref, id int64) (threat.Ref, bool) {
	if id == threat.EnvironmentID {
		return threat.Ref{}, false
	}
	for _, e := range enemies {
		if e.ID == id {
			return e, true
		}
	}
	return threat.Ref{}, false
}

func aliveEnemiesExcludingEnvironment(enemies []threat.Ref, fs *fightstate.FightState) []threat.Ref {
	var alive []threat.Ref
	for _, e := range enemies {
		if e.IsEnvironment() {
			continue
		}
		if fs.IsAlive(e) {
			alive = append(alive, e)
		}
	}
	return alive
}

func (a *Applier) isFriendly(fs *fightstate.FightState, actorID int64, explicit *bool) bool {
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
