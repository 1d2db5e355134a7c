package threat

// EffectKind tags the concrete variant of a ThreatEffect.
type EffectKind int

// Effect variants.
const (
	EffectCustomThreat EffectKind = iota
	EffectModifyThreat
	EffectInstallInterceptor
	EffectAuraMutation
	EffectState
	EffectEventMarker
)

// ChangeOperator distinguishes an additive threat change from an absolute set.
type ChangeOperator int

// Change operators.
const (
	OpAdd ChangeOperator = iota
	OpSet
)

// String implements fmt.Stringer.
func (o ChangeOperator) String() string {
	if o == OpSet {
		return "set"
	}
	return "add"
}

// ThreatChange is one row of the `changes` list on an augmented event.
type ThreatChange struct {
	SourceID       int64          `json:"sourceId"`
	TargetID       int64          `json:"targetId"`
	TargetInstance int            `json:"targetInstance,omitempty"`
	Operator       ChangeOperator `json:"operator"`
	Amount         float64        `json:"amount"`
	Total          float64        `json:"total"`
}

// ModifyTarget selects which threat rows a modifyThreat effect multiplies.
type ModifyTarget int

// Modify targets.
const (
	ModifyTargetSingle ModifyTarget = iota // the recipient's row against the event's hostile source
	ModifyTargetAll                        // friendly source: its rows on every enemy; hostile source: every actor's row on that enemy
)

// AuraAction distinguishes applying from removing an aura via a processor effect.
type AuraAction int

// Aura actions.
const (
	AuraApply AuraAction = iota
	AuraRemove
)

// StateKind tags the three overlay-window kinds the aggregation layer draws.
type StateKind int

// State kinds.
const (
	StateFixate StateKind = iota
	StateAggroLoss
	StateInvulnerable
)

// String implements fmt.Stringer.
func (k StateKind) String() string {
	switch k {
	case StateFixate:
		return "fixate"
	case StateAggroLoss:
		return "aggroLoss"
	case StateInvulnerable:
		return "invulnerable"
	default:
		return "unknown"
	}
}

// StatePhase marks the start or end edge of a state window.
type StatePhase int

// State phases.
const (
	PhaseStart StatePhase = iota
	PhaseEnd
)

// MarkerKind tags a chart annotation with no threat semantics of its own.
type MarkerKind int

// Marker kinds.
const (
	MarkerBossMelee MarkerKind = iota
	MarkerDeath
)

// String implements fmt.Stringer.
func (m MarkerKind) String() string {
	if m == MarkerDeath {
		return "death"
	}
	return "bossMelee"
}

// CustomThreatEffect applies explicit deltas verbatim.
type CustomThreatEffect struct {
	Changes []ThreatChange
}

// ModifyThreatEffect multiplies existing threat, floored at zero.
type ModifyThreatEffect struct {
	Multiplier float64
	Target     ModifyTarget
}

// InstallInterceptorEffect registers a new interceptor handler.
type InstallInterceptorEffect struct {
	Interceptor Interceptor
}

// AuraMutationEffect applies an inline aura edit, visible to the same event's
// threat calculation.
type AuraMutationEffect struct {
	Action   AuraAction
	SpellID  int64
	ActorIDs []int64
}

// StateEffect emits an overlay marker consumed by the aggregation layer.
type StateEffect struct {
	Kind           StateKind
	Phase          StatePhase
	SpellID        int64
	ActorID        int64
	TargetID       int64
	TargetInstance int
	HasTarget      bool
	// Sequence disambiguates same-timestamp state transitions; assigned by
	// the calculator in emission order.
	Sequence int
}

// EventMarkerEffect attaches a chart annotation with no threat of its own.
type EventMarkerEffect struct {
	Marker MarkerKind
}

// Effect is the closed sum type emitted by formulas, processors, and
// interceptors. Exactly one of the typed fields is populated, selected by
// Kind.
type Effect struct {
	Kind EffectKind

	CustomThreat       *CustomThreatEffect
	ModifyThreat       *ModifyThreatEffect
	InstallInterceptor *InstallInterceptorEffect
	AuraMutation       *AuraMutationEffect
	State              *StateEffect
	EventMarker        *EventMarkerEffect
}

// NewCustomThreat builds a customThreat effect.
func NewCustomThreat(changes ...ThreatChange) Effect {
	return Effect{Kind: EffectCustomThreat, CustomThreat: &CustomThreatEffect{Changes: changes}}
}

// NewModifyThreat builds a modifyThreat effect.
func NewModifyThreat(multiplier float64, target ModifyTarget) Effect {
	return Effect{Kind: EffectModifyThreat, ModifyThreat: &ModifyThreatEffect{Multiplier: multiplier, Target: target}}
}

// NewInstallInterceptor builds an installInterceptor effect.
func NewInstallInterceptor(i Interceptor) Effect {
	return Effect{Kind: EffectInstallInterceptor, InstallInterceptor: &InstallInterceptorEffect{Interceptor: i}}
}

// NewAuraMutation builds an auraMutation effect.
func NewAuraMutation(action AuraAction, spellID int64, actorIDs ...int64) Effect {
	return Effect{Kind: EffectAuraMutation, AuraMutation: &AuraMutationEffect{Action: action, SpellID: spellID, ActorIDs: actorIDs}}
}

// NewState builds a state overlay effect.
func NewState(kind StateKind, phase StatePhase, spellID, actorID int64) Effect {
	return Effect{Kind: EffectState, State: &StateEffect{Kind: kind, Phase: phase, SpellID: spellID, ActorID: actorID}}
}

// NewEventMarker builds an eventMarker effect.
func NewEventMarker(marker MarkerKind) Effect {
	return Effect{Kind: EffectEventMarker, EventMarker: &EventMarkerEffect{Marker: marker}}
}

// Interceptor is implemented by transient per-event handlers installed via
// installInterceptor effects and run by the Interceptor Tracker. Declared
// here (rather than in package interceptor) to avoid an import cycle:
// Effect must be able to carry an Interceptor value.
type Interceptor interface {
	// Invoke is called once per event for every live handler. ctx carries
	// the event timestamp, this handler's install timestamp, read access to
	// FightState-shaped actor/aura queries, and an Uninstall callback.
	Invoke(event Event, ctx InterceptorContext) InterceptorAction
}

// InterceptorContext is passed to every live interceptor on every event.
type InterceptorContext struct {
	Timestamp   int64
	InstalledAt int64
	Actors      ActorQuerier
	Uninstall   func()
	SetAura     func(actorID int64, spellID int64)
	RemoveAura  func(actorID int64, spellID int64)
}

// ActorQuerier is the read-only subset of FightState an interceptor needs.
type ActorQuerier interface {
	IsAlive(ref Ref) bool
	Auras(ref Ref) map[int64]struct{}
	Position(ref Ref) (x, y float64, ok bool)
}

// InterceptorActionKind tags the outcome of running one interceptor.
type InterceptorActionKind int

// Interceptor action kinds.
const (
	ActionPassthrough InterceptorActionKind = iota
	ActionSkip
	ActionAugment
)

// InterceptorAction is returned by Interceptor.Invoke.
type InterceptorAction struct {
	Kind InterceptorActionKind

	// ThreatRecipientOverride, when non-nil, redirects threat attribution to
	// this actor id instead of the event's true source (augment only).
	ThreatRecipientOverride *int64
	Effects                 []Effect
}
