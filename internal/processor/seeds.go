package processor

// InitialAuraAdditionsKey accumulates processor-contributed initial-aura
// seeds, keyed by actor id, across the prepass. The engine merges this with
// the caller's explicit seeds before the main pass begins.
var InitialAuraAdditionsKey = NewDataKey[map[int64]map[int64]struct{}]("core.initialAuraAdditions")

// AddInitialAura records spellID as an inferred starting aura for actorID.
func AddInitialAura(ns *Namespace, actorID, spellID int64) {
	additions := GetOrInit(ns, InitialAuraAdditionsKey, func() map[int64]map[int64]struct{} {
		return make(map[int64]map[int64]struct{})
	})
	set, ok := additions[actorID]
	if !ok {
		set = make(map[int64]struct{})
		additions[actorID] = set
	}
	set[spellID] = struct{}{}
}

// InitialAuraAdditions returns the accumulated seed map, or nil if no
// processor has contributed one yet.
func InitialAuraAdditions(ns *Namespace) map[int64]map[int64]struct{} {
	v, _ := Get(ns, InitialAuraAdditionsKey)
	return v
}

// HasInitialAura reports whether actorID already has spellID recorded,
// either from a prior processor's addition or from the caller's explicit
// seeds (checked separately by callers that have that map).
func HasInitialAura(ns *Namespace, actorID, spellID int64) bool {
	additions := InitialAuraAdditions(ns)
	if additions == nil {
		return false
	}
	_, ok := additions[actorID][spellID]
	return ok
}
