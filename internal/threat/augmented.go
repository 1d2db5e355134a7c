package threat

import "encoding/json"

// AppliedModifier records one multiplier that was folded into modifiedThreat,
// for display in the calculation record and the per-actor modifier histogram.
type AppliedModifier struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ThreatCalculation is the formula-dispatch result for a single event,
// before the Threat Applier turns it into changes.
type ThreatCalculation struct {
	Formula        string
	Amount         int
	BaseThreat     float64
	ModifiedThreat float64
	IsSplit        bool
	Modifiers      []AppliedModifier
	Effects        []Effect
	Note           string

	// RecipientOverride, when non-nil, is the actor id an installed
	// interceptor redirected this event's threat attribution to instead of
	// the event's true source. It never appears in the serialized
	// calculation: by the time a change is emitted, the override has
	// already been folded into that change's sourceId.
	RecipientOverride *int64
}

// MarshalJSON renders the calculation block on an augmented event's threat
// annotation: formula label, raw and modified amounts, modifier list,
// effects list, split flag.
func (c ThreatCalculation) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Formula        string            `json:"formula"`
		Amount         int               `json:"amount"`
		BaseThreat     float64           `json:"baseThreat"`
		ModifiedThreat float64           `json:"modifiedThreat"`
		IsSplit        bool              `json:"isSplit,omitempty"`
		Modifiers      []AppliedModifier `json:"modifiers,omitempty"`
		Effects        []Effect          `json:"effects,omitempty"`
		Note           string            `json:"note,omitempty"`
	}{
		Formula:        c.Formula,
		Amount:         c.Amount,
		BaseThreat:     c.BaseThreat,
		ModifiedThreat: c.ModifiedThreat,
		IsSplit:        c.IsSplit,
		Modifiers:      c.Modifiers,
		Effects:        marshalableEffects(c.Effects),
		Note:           c.Note,
	})
}

// AugmentedEvent is the input event plus its threat annotation.
type AugmentedEvent struct {
	Event       Event
	Calculation ThreatCalculation
	Changes     []ThreatChange
}

// threatBlock is the nested `threat` object on a serialized augmented event.
type threatBlock struct {
	Calculation ThreatCalculation `json:"calculation"`
	Changes     []ThreatChange    `json:"changes,omitempty"`
}

// MarshalJSON flattens Event's own wire fields and attaches the `threat`
// block alongside them.
func (a AugmentedEvent) MarshalJSON() ([]byte, error) {
	eventJSON, err := json.Marshal(a.Event)
	if err != nil {
		return nil, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(eventJSON, &merged); err != nil {
		return nil, err
	}

	threatJSON, err := json.Marshal(threatBlock{Calculation: a.Calculation, Changes: a.Changes})
	if err != nil {
		return nil, err
	}
	merged["threat"] = threatJSON

	return json.Marshal(merged)
}
