// Package engine wires Fight State, the Processor Framework, the
// Interceptor Tracker, the Threat Calculator, and the Threat Applier into
// the two-pass pipeline the external interface exposes.
//
// Grounded on the teacher's cmd/server/main.go wiring of its game engine
// (construct dependencies bottom-up, pass them into a single run entry
// point) and replay.go's full-log replay loop, adapted from a single mutable
// game session to a pure function over one encounter's worth of events.
package engine

import (
	"strings"

	"github.com/tstirrat/wow-threat-sub000/internal/threat"
	"github.com/tstirrat/wow-threat-sub000/internal/threatconfig"
)

// Input is one encounter's worth of engine input. Its JSON wire shape
// (inputWire, in input_json.go) represents the id-set fields as plain
// arrays and omits Config entirely.
type Input struct {
	RawEvents            []threat.Event
	ActorMap             threat.ActorMap
	FriendlyActorIDs     map[int64]struct{}
	AbilitySchoolMap     map[int64]uint32
	Enemies              []threat.Enemy
	EncounterID          int64
	Report               string
	Fight                string
	InferThreatReduction bool

	// TankActorIDs, when non-empty, is used directly. Otherwise TankNames is
	// matched against RankingsByName, case-insensitively and
	// whitespace-trimmed but not accent-normalized.
	TankActorIDs   map[int64]struct{}
	TankNames      []string
	RankingsByName map[string]int64

	// AbilityNames maps ability ids to their report display name. Built-in
	// processors that recognize an ability by name (when no id-based lookup
	// matches) read it through processor.Context.AbilityNames.
	AbilityNames map[int64]string

	// InitialAurasByActor is the caller's explicit seed override, merged
	// with processor-inferred seeds before the main pass.
	InitialAurasByActor map[int64][]int64

	// Config carries Go formula funcs and is opaque to the wire format: it
	// never round-trips through JSON and must be supplied programmatically
	// by the caller (see threatconfig.Builtin for the CLI's default).
	Config *threatconfig.Config
}

// resolveTankActorIDs implements the tank-resolution fallback chain: an
// explicit id set wins outright; otherwise each configured tank name is
// matched, case-insensitively and whitespace-trimmed, against the report's
// rankings-by-name map.
func resolveTankActorIDs(in Input) map[int64]struct{} {
	if len(in.TankActorIDs) > 0 {
		return in.TankActorIDs
	}
	if len(in.TankNames) == 0 || len(in.RankingsByName) == 0 {
		return nil
	}

	normalized := make(map[string]int64, len(in.RankingsByName))
	for name, id := range in.RankingsByName {
		normalized[normalizeName(name)] = id
	}

	out := make(map[int64]struct{})
	for _, name := range in.TankNames {
		if id, ok := normalized[normalizeName(name)]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func explicitAuraSeeds(in map[int64][]int64) map[int64]map[int64]struct{} {
	out := make(map[int64]map[int64]struct{}, len(in))
	for actorID, spells := range in {
		set := make(map[int64]struct{}, len(spells))
		for _, spellID := range spells {
			set[spellID] = struct{}{}
		}
		out[actorID] = set
	}
	return out
}
