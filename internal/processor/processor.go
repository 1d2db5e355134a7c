package processor

import (
	"github.com/tstirrat/wow-threat-sub000/internal/fightstate"
	"github.com/tstirrat/wow-threat-sub000/internal/threat"
	"go.uber.org/zap"
)

// Context is threaded through every processor call of a fight run, carrying
// the shared Namespace plus the read access a processor needs to observe
// fight state and report configuration.
type Context struct {
	Namespace *Namespace
	Fight     *fightstate.FightState
	ActorMap  threat.ActorMap

	// InferThreatReduction mirrors the report-level "threat reduction
	// inferred" flag some built-in processors gate on.
	InferThreatReduction bool

	// TankActorIDs are the actor ids the caller has identified as the
	// raid's tanks, used by processors that reason about tank assignment
	// (e.g. Minmax-Salvation's blessing inference).
	TankActorIDs map[int64]struct{}

	// ExplicitInitialAuras are the caller-supplied seed auras, consulted
	// alongside InitialAuraAdditionsKey so a processor can tell whether an
	// aura is already seeded by any source before adding its own.
	ExplicitInitialAuras map[int64]map[int64]struct{}

	// AbilityNames maps ability ids to their report-supplied display name,
	// for processors that need to recognize an ability by name when no
	// id-based lookup matches (e.g. a spell id absent from a hardcoded
	// table because of a rank or client-version difference).
	AbilityNames map[int64]string

	Logger *zap.Logger
}

// IsAuraSeeded reports whether spellID is already a seed for actorID, either
// explicitly supplied by the caller or added by an earlier processor.
func (ctx *Context) IsAuraSeeded(actorID, spellID int64) bool {
	if _, ok := ctx.ExplicitInitialAuras[actorID][spellID]; ok {
		return true
	}
	return HasInitialAura(ctx.Namespace, actorID, spellID)
}

// Processor observes the raw event stream and contributes effects without
// itself computing threat. A processor implements only the lifecycle stages
// it needs; embed NoopProcessor to default the rest.
type Processor interface {
	// Init runs once before the prepass begins.
	Init(ctx *Context)

	// VisitPrepass runs once per event, in order, during the prepass. It
	// may record observations into the Namespace but must not mutate fight
	// state or emit effects.
	VisitPrepass(ctx *Context, event threat.Event)

	// FinalizePrepass runs once after the prepass completes, typically to
	// turn accumulated observations into seed data for the main pass.
	FinalizePrepass(ctx *Context)

	// BeforeFightState runs once per event during the main pass, before
	// FightState.ProcessEvent. Effects returned here (notably auraMutation)
	// are applied immediately, so later processors and the calculator
	// observe the mutation for this same event.
	BeforeFightState(ctx *Context, event threat.Event) []threat.Effect

	// AfterFightState runs once per event during the main pass, after
	// FightState.ProcessEvent and after the calculator/applier have run.
	AfterFightState(ctx *Context, event threat.Event) []threat.Effect
}

// NoopProcessor provides default no-op implementations of every Processor
// lifecycle stage. Built-in processors embed it and override only the
// stages they care about.
type NoopProcessor struct{}

func (NoopProcessor) Init(*Context)                                       {}
func (NoopProcessor) VisitPrepass(*Context, threat.Event)                 {}
func (NoopProcessor) FinalizePrepass(*Context)                            {}
func (NoopProcessor) BeforeFightState(*Context, threat.Event) []threat.Effect { return nil }
func (NoopProcessor) AfterFightState(*Context, threat.Event) []threat.Effect  { return nil }
