package processor

import (
	"github.com/tstirrat/wow-threat-sub000/internal/fightstate"
	"github.com/tstirrat/wow-threat-sub000/internal/threat"
	"go.uber.org/zap"
)

// Pipeline runs a fixed, ordered set of processors through the prepass and
// main pass. Ordering is caller-declared and stable: processors run in the
// slice order they were registered in, every stage, every event.
type Pipeline struct {
	processors []Processor
	logger     *zap.Logger
}

// NewPipeline constructs a Pipeline over the given processors, run in order.
func NewPipeline(logger *zap.Logger, processors ...Processor) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{processors: processors, logger: logger}
}

// RunPrepass runs Init once, then VisitPrepass for every event in order,
// then FinalizePrepass once, across all processors.
func (p *Pipeline) RunPrepass(ctx *Context, events []threat.Event) {
	for _, proc := range p.processors {
		proc.Init(ctx)
	}
	for _, event := range events {
		for _, proc := range p.processors {
			proc.VisitPrepass(ctx, event)
		}
	}
	for _, proc := range p.processors {
		proc.FinalizePrepass(ctx)
	}
}

// BeforeFightState runs every processor's BeforeFightState stage for event,
// applying any auraMutation effects inline so each subsequent processor
// (and the calculator that runs after FightState.ProcessEvent) observes the
// mutation.
func (p *Pipeline) BeforeFightState(ctx *Context, fs *fightstate.FightState, event threat.Event) []threat.Effect {
	return p.runMainPassStage(ctx, fs, event, Processor.BeforeFightState)
}

// AfterFightState runs every processor's AfterFightState stage for event,
// with the same inline aura-mutation semantics as BeforeFightState.
func (p *Pipeline) AfterFightState(ctx *Context, fs *fightstate.FightState, event threat.Event) []threat.Effect {
	return p.runMainPassStage(ctx, fs, event, Processor.AfterFightState)
}

func (p *Pipeline) runMainPassStage(
	ctx *Context,
	fs *fightstate.FightState,
	event threat.Event,
	stage func(Processor, *Context, threat.Event) []threat.Effect,
) []threat.Effect {
	var all []threat.Effect
	for _, proc := range p.processors {
		effects := stage(proc, ctx, event)
		for _, eff := range effects {
			applyAuraMutation(fs, eff)
		}
		all = append(all, effects...)
	}
	return all
}

func applyAuraMutation(fs *fightstate.FightState, eff threat.Effect) {
	if eff.Kind != threat.EffectAuraMutation || eff.AuraMutation == nil {
		return
	}
	m := eff.AuraMutation
	for _, actorID := range m.ActorIDs {
		switch m.Action {
		case threat.AuraApply:
			fs.SetAura(actorID, m.SpellID)
		case threat.AuraRemove:
			fs.RemoveAura(actorID, m.SpellID)
		}
	}
}
