// Package threat defines the core data model shared by every stage of the
// threat engine: actors, enemies, raw events, augmented events, and the
// threat-effect sum type.
package threat

// EventType tags the category of a raw combat-log event.
type EventType string

// Event type tags recognized by the engine.
const (
	EventDamage          EventType = "damage"
	EventHeal            EventType = "heal"
	EventAbsorbed        EventType = "absorbed"
	EventEnergize        EventType = "energize"
	EventResourceChange  EventType = "resourcechange"
	EventCast            EventType = "cast"
	EventBeginCast       EventType = "begincast"
	EventApplyBuff       EventType = "applybuff"
	EventRefreshBuff     EventType = "refreshbuff"
	EventApplyBuffStack  EventType = "applybuffstack"
	EventRemoveBuff      EventType = "removebuff"
	EventRemoveBuffStack EventType = "removebuffstack"
	EventApplyDebuff       EventType = "applydebuff"
	EventRefreshDebuff     EventType = "refreshdebuff"
	EventApplyDebuffStack  EventType = "applydebuffstack"
	EventRemoveDebuff      EventType = "removedebuff"
	EventRemoveDebuffStack EventType = "removedebuffstack"
	EventCombatantInfo     EventType = "combatantinfo"
	EventDeath             EventType = "death"
	EventSummon            EventType = "summon"
)

// IsBuffLifecycle reports whether the event type is one of the buff/debuff
// apply/refresh/remove variants tracked by aura state and the
// infer-initial-buffs processor.
func (t EventType) IsBuffLifecycle() bool {
	switch t {
	case EventApplyBuff, EventRefreshBuff, EventApplyBuffStack, EventRemoveBuff, EventRemoveBuffStack,
		EventApplyDebuff, EventRefreshDebuff, EventApplyDebuffStack, EventRemoveDebuff, EventRemoveDebuffStack:
		return true
	default:
		return false
	}
}

// IsApply reports whether the event type adds (or maintains) an aura.
func (t EventType) IsApply() bool {
	switch t {
	case EventApplyBuff, EventRefreshBuff, EventApplyBuffStack, EventApplyDebuff, EventRefreshDebuff, EventApplyDebuffStack:
		return true
	default:
		return false
	}
}

// IsRemove reports whether the event type removes an aura.
func (t EventType) IsRemove() bool {
	switch t {
	case EventRemoveBuff, EventRemoveBuffStack, EventRemoveDebuff, EventRemoveDebuffStack:
		return true
	default:
		return false
	}
}

// School bitmask values.
const (
	SchoolPhysical uint32 = 1 << iota
	SchoolHoly
	SchoolFire
	SchoolNature
	SchoolFrost
	SchoolShadow
	SchoolArcane
)

// EnvironmentID is the sentinel actor id denoting the non-actor "environment".
const EnvironmentID int64 = -1

// Ref identifies an actor or enemy by (id, instance).
type Ref struct {
	ID       int64 `json:"id"`
	Instance int   `json:"instance,omitempty"`
}

// IsEnvironment reports whether this ref is the environment sentinel.
func (r Ref) IsEnvironment() bool {
	return r.ID == EnvironmentID
}

// GearItem is a single equipped item observed on combatantinfo.
type GearItem struct {
	ID int64 `json:"id"`
}

// Event is a single timestamped combat-log record.
type Event struct {
	// Index preserves input order for stable tie-breaking on equal timestamps.
	Index int

	Timestamp      int64
	Type           EventType
	SourceID       int64
	SourceInstance int
	TargetID       int64
	TargetInstance int

	SourceIsFriendly *bool
	TargetIsFriendly *bool

	AbilityGameID    int64
	HasAbilityGameID bool

	Amount    int
	HasAmount bool

	X, Y        float64
	HasPosition bool

	Tick     bool
	HitType  string
	Overheal int

	ResourceChange     int
	Waste              int
	ResourceChangeType string

	Auras   []int64
	Talents []int64
	Gear    []GearItem

	AttackerID    int64
	HasAttackerID bool

	Stacks int
}

// SourceRef returns the (sourceId, sourceInstance) pair as a Ref.
func (e Event) SourceRef() Ref { return Ref{ID: e.SourceID, Instance: e.SourceInstance} }

// TargetRef returns the (targetId, targetInstance) pair as a Ref.
func (e Event) TargetRef() Ref { return Ref{ID: e.TargetID, Instance: e.TargetInstance} }
