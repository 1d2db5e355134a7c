package engine

import (
	"encoding/json"

	"github.com/tstirrat/wow-threat-sub000/internal/threat"
)

// inputWire mirrors Input's JSON-facing fields, representing the
// FriendlyActorIDs and TankActorIDs sets as plain id arrays on the wire
// rather than as the map[int64]struct{} shape used internally for O(1)
// membership checks.
type inputWire struct {
	RawEvents            []threat.Event    `json:"rawEvents"`
	ActorMap             threat.ActorMap   `json:"actorMap,omitempty"`
	FriendlyActorIDs     []int64           `json:"friendlyActorIds,omitempty"`
	AbilitySchoolMap     map[int64]uint32  `json:"abilitySchoolMap,omitempty"`
	Enemies              []threat.Enemy    `json:"enemies,omitempty"`
	EncounterID          int64             `json:"encounterId,omitempty"`
	Report               string            `json:"report,omitempty"`
	Fight                string            `json:"fight,omitempty"`
	InferThreatReduction bool              `json:"inferThreatReduction,omitempty"`
	TankActorIDs         []int64           `json:"tankActorIds,omitempty"`
	TankNames            []string          `json:"tankNames,omitempty"`
	RankingsByName       map[string]int64  `json:"rankingsByName,omitempty"`
	AbilityNames         map[int64]string  `json:"abilityNames,omitempty"`
	InitialAurasByActor  map[int64][]int64 `json:"initialAurasByActor,omitempty"`
}

func idSetToSlice(set map[int64]struct{}) []int64 {
	if len(set) == 0 {
		return nil
	}
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

func idSliceToSet(ids []int64) map[int64]struct{} {
	if len(ids) == 0 {
		return nil
	}
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// MarshalJSON renders Input in its wire shape. The threat config is
// caller-supplied behavior and never appears on the wire.
func (in Input) MarshalJSON() ([]byte, error) {
	return json.Marshal(inputWire{
		RawEvents:            in.RawEvents,
		ActorMap:             in.ActorMap,
		FriendlyActorIDs:     idSetToSlice(in.FriendlyActorIDs),
		AbilitySchoolMap:     in.AbilitySchoolMap,
		Enemies:              in.Enemies,
		EncounterID:          in.EncounterID,
		Report:               in.Report,
		Fight:                in.Fight,
		InferThreatReduction: in.InferThreatReduction,
		TankActorIDs:         idSetToSlice(in.TankActorIDs),
		TankNames:            in.TankNames,
		RankingsByName:       in.RankingsByName,
		AbilityNames:         in.AbilityNames,
		InitialAurasByActor:  in.InitialAurasByActor,
	})
}

// UnmarshalJSON parses Input from its wire shape. Config is left nil: the
// CLI falls back to threatconfig.Builtin when it is absent.
func (in *Input) UnmarshalJSON(data []byte) error {
	var w inputWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*in = Input{
		RawEvents:            w.RawEvents,
		ActorMap:             w.ActorMap,
		FriendlyActorIDs:     idSliceToSet(w.FriendlyActorIDs),
		AbilitySchoolMap:     w.AbilitySchoolMap,
		Enemies:              w.Enemies,
		EncounterID:          w.EncounterID,
		Report:               w.Report,
		Fight:                w.Fight,
		InferThreatReduction: w.InferThreatReduction,
		TankActorIDs:         idSliceToSet(w.TankActorIDs),
		TankNames:            w.TankNames,
		RankingsByName:       w.RankingsByName,
		AbilityNames:         w.AbilityNames,
		InitialAurasByActor:  w.InitialAurasByActor,
	}
	return nil
}
