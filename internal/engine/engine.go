package engine

import (
	"sort"

	"go.uber.org/zap"

	"github.com/tstirrat/wow-threat-sub000/internal/applier"
	"github.com/tstirrat/wow-threat-sub000/internal/calculator"
	"github.com/tstirrat/wow-threat-sub000/internal/fightstate"
	"github.com/tstirrat/wow-threat-sub000/internal/interceptor"
	"github.com/tstirrat/wow-threat-sub000/internal/processor"
	"github.com/tstirrat/wow-threat-sub000/internal/processor/builtin"
	"github.com/tstirrat/wow-threat-sub000/internal/threat"
)

// Run executes the full two-pass pipeline over one encounter's input and
// returns the augmented result. Run is pure: every mutable structure it
// touches (FightState, Namespace, Tracker) is constructed fresh for this
// call, so concurrent calls with independent Input values never interfere.
func Run(logger *zap.Logger, in Input) Output {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(in.RawEvents) == 0 {
		return Output{EventCounts: map[threat.EventType]int{}, InitialAurasByActor: map[int64][]int64{}}
	}

	events := sortedCopy(in.RawEvents)

	fs := fightstate.New(in.Config, in.FriendlyActorIDs, logger)
	seedIdentities(fs, in)

	ns := processor.NewNamespace()
	ctx := &processor.Context{
		Namespace:            ns,
		Fight:                fs,
		ActorMap:             in.ActorMap,
		InferThreatReduction: in.InferThreatReduction,
		TankActorIDs:         resolveTankActorIDs(in),
		ExplicitInitialAuras: explicitAuraSeeds(in.InitialAurasByActor),
		AbilityNames:         in.AbilityNames,
		Logger:               logger,
	}

	pipeline := processor.NewPipeline(logger, registerProcessors(in)...)
	pipeline.RunPrepass(ctx, events)

	merged := mergeInitialAuras(ctx.ExplicitInitialAuras, processor.InitialAuraAdditions(ns))
	for actorID, spells := range merged {
		for _, spellID := range spells {
			fs.SeedAura(actorID, spellID)
		}
	}

	tracker := interceptor.New(logger)
	calc := calculator.New(logger, in.AbilitySchoolMap, tracker)
	app := applier.New(logger)
	enemyRefs := enemyRefs(in.Enemies)

	augmented := make([]threat.AugmentedEvent, 0, len(events))
	for _, event := range events {
		beforeEffects := pipeline.BeforeFightState(ctx, fs, event)
		fs.ProcessEvent(event)

		calculation := calc.Calculate(event, fs, in.Config, in.EncounterID)
		installInterceptors(tracker, event, beforeEffects)
		installInterceptors(tracker, event, calculation.Effects)

		recipientID := event.SourceID
		if calculation.RecipientOverride != nil {
			recipientID = *calculation.RecipientOverride
		}
		changes := app.Apply(event, calculation, recipientID, fs, enemyRefs)

		afterEffects := pipeline.AfterFightState(ctx, fs, event)
		installInterceptors(tracker, event, afterEffects)

		augmented = append(augmented, threat.AugmentedEvent{Event: event, Calculation: calculation, Changes: changes})
	}

	return Output{
		AugmentedEvents:     augmented,
		EventCounts:         countEventTypes(events),
		InitialAurasByActor: merged,
	}
}

// sortedCopy re-sorts events by timestamp, ties preserving input order,
// without mutating the caller's slice.
func sortedCopy(events []threat.Event) []threat.Event {
	out := make([]threat.Event, len(events))
	copy(out, events)
	for i := range out {
		out[i].Index = i
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

func seedIdentities(fs *fightstate.FightState, in Input) {
	for id, info := range in.ActorMap {
		kind := threat.ActorKindNPC
		switch {
		case info.IsPet():
			kind = threat.ActorKindPet
		case info.IsPlayer():
			kind = threat.ActorKindPlayer
		}
		_, friendly := in.FriendlyActorIDs[id]
		fs.SeedIdentity(&threat.Actor{
			Ref:      threat.Ref{ID: id},
			Name:     info.Name,
			Kind:     kind,
			Class:    info.Class,
			OwnerID:  info.PetOwner,
			Friendly: friendly,
		})
	}
	for _, enemy := range in.Enemies {
		fs.SeedIdentity(&threat.Actor{
			Ref:      enemy.Ref,
			Name:     enemy.Name,
			Kind:     threat.ActorKindNPC,
			Friendly: false,
			Boss:     enemy.Boss,
		})
	}
}

func enemyRefs(enemies []threat.Enemy) []threat.Ref {
	refs := make([]threat.Ref, 0, len(enemies))
	for _, e := range enemies {
		refs = append(refs, e.Ref)
	}
	return refs
}

// registerProcessors builds the ordered processor set for in's flags: with
// inferThreatReduction off only infer-initial-buffs runs; on, party
// detection, tranquil-air, and (for paladin rosters) minmax-salvation join
// it.
func registerProcessors(in Input) []processor.Processor {
	procs := []processor.Processor{builtin.NewInferInitialBuffs()}
	if !in.InferThreatReduction {
		return procs
	}

	procs = append(procs, builtin.NewPartyDetection(), builtin.NewTranquilAir())
	if hasPaladin(in.ActorMap) {
		procs = append(procs, builtin.NewMinmaxSalvation())
	}
	return procs
}

func hasPaladin(actors threat.ActorMap) bool {
	for _, info := range actors {
		if info.Class == "paladin" {
			return true
		}
	}
	return false
}

// installInterceptors scans effects for installInterceptor requests and
// registers them with tracker so the very next event observes them.
func installInterceptors(tracker *interceptor.Tracker, event threat.Event, effects []threat.Effect) {
	for _, eff := range effects {
		if eff.Kind == threat.EffectInstallInterceptor && eff.InstallInterceptor != nil {
			tracker.Install(event.Timestamp, eff.InstallInterceptor.Interceptor)
		}
	}
}
