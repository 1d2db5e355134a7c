package threat

import "encoding/json"

// eventWire is the JSON shape of Event, matching the field names of a raw
// combat-log record. Optional fields are pointers so presence on the wire -
// not a sidecar boolean - is what sets the matching Has* flag after
// Unmarshal.
type eventWire struct {
	Index          int       `json:"index,omitempty"`
	Timestamp      int64     `json:"timestamp"`
	Type           EventType `json:"type"`
	SourceID       int64     `json:"sourceId"`
	SourceInstance int       `json:"sourceInstance,omitempty"`
	TargetID       int64     `json:"targetId"`
	TargetInstance int       `json:"targetInstance,omitempty"`

	SourceIsFriendly *bool `json:"sourceIsFriendly,omitempty"`
	TargetIsFriendly *bool `json:"targetIsFriendly,omitempty"`

	AbilityGameID *int64 `json:"abilityGameId,omitempty"`
	Amount        *int   `json:"amount,omitempty"`

	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`

	Tick     bool   `json:"tick,omitempty"`
	HitType  string `json:"hitType,omitempty"`
	Overheal int    `json:"overheal,omitempty"`

	ResourceChange     int    `json:"resourceChange,omitempty"`
	Waste              int    `json:"waste,omitempty"`
	ResourceChangeType string `json:"resourceChangeType,omitempty"`

	Auras   []int64    `json:"auras,omitempty"`
	Talents []int64    `json:"talents,omitempty"`
	Gear    []GearItem `json:"gear,omitempty"`

	AttackerID *int64 `json:"attackerID,omitempty"`

	Stacks int `json:"stacks,omitempty"`
}

// MarshalJSON renders Event in its wire shape, omitting each optional field
// unless its Has* flag is set.
func (e Event) MarshalJSON() ([]byte, error) {
	w := eventWire{
		Index:              e.Index,
		Timestamp:          e.Timestamp,
		Type:               e.Type,
		SourceID:           e.SourceID,
		SourceInstance:     e.SourceInstance,
		TargetID:           e.TargetID,
		TargetInstance:     e.TargetInstance,
		SourceIsFriendly:   e.SourceIsFriendly,
		TargetIsFriendly:   e.TargetIsFriendly,
		Tick:               e.Tick,
		HitType:            e.HitType,
		Overheal:           e.Overheal,
		ResourceChange:     e.ResourceChange,
		Waste:              e.Waste,
		ResourceChangeType: e.ResourceChangeType,
		Auras:              e.Auras,
		Talents:            e.Talents,
		Gear:               e.Gear,
		Stacks:             e.Stacks,
	}
	if e.HasAbilityGameID {
		w.AbilityGameID = &e.AbilityGameID
	}
	if e.HasAmount {
		w.Amount = &e.Amount
	}
	if e.HasPosition {
		w.X, w.Y = &e.X, &e.Y
	}
	if e.HasAttackerID {
		w.AttackerID = &e.AttackerID
	}
	return json.Marshal(w)
}

// UnmarshalJSON parses Event from the wire shape, deriving each Has* flag
// from whether the matching optional field was present on the wire, rather
// than requiring the caller to also send a sidecar boolean.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w eventWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*e = Event{
		Index:              w.Index,
		Timestamp:          w.Timestamp,
		Type:               w.Type,
		SourceID:           w.SourceID,
		SourceInstance:     w.SourceInstance,
		TargetID:           w.TargetID,
		TargetInstance:     w.TargetInstance,
		SourceIsFriendly:   w.SourceIsFriendly,
		TargetIsFriendly:   w.TargetIsFriendly,
		Tick:               w.Tick,
		HitType:            w.HitType,
		Overheal:           w.Overheal,
		ResourceChange:     w.ResourceChange,
		Waste:              w.Waste,
		ResourceChangeType: w.ResourceChangeType,
		Auras:              w.Auras,
		Talents:            w.Talents,
		Gear:               w.Gear,
		Stacks:             w.Stacks,
	}
	if w.AbilityGameID != nil {
		e.AbilityGameID, e.HasAbilityGameID = *w.AbilityGameID, true
	}
	if w.Amount != nil {
		e.Amount, e.HasAmount = *w.Amount, true
	}
	if w.X != nil || w.Y != nil {
		e.HasPosition = true
		if w.X != nil {
			e.X = *w.X
		}
		if w.Y != nil {
			e.Y = *w.Y
		}
	}
	if w.AttackerID != nil {
		e.AttackerID, e.HasAttackerID = *w.AttackerID, true
	}
	return nil
}
