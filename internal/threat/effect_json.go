package threat

import "encoding/json"

// MarshalJSON renders the operator by its string label.
func (o ChangeOperator) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON parses the operator from its string label.
func (o *ChangeOperator) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "set" {
		*o = OpSet
	} else {
		*o = OpAdd
	}
	return nil
}

// MarshalJSON renders the state kind by its string label.
func (k StateKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// MarshalJSON renders the phase by its string label.
func (p StatePhase) MarshalJSON() ([]byte, error) {
	if p == PhaseEnd {
		return json.Marshal("end")
	}
	return json.Marshal("start")
}

// MarshalJSON renders the marker kind by its string label.
func (m MarkerKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// MarshalJSON renders the populated variant of the sum type as a
// kind-discriminated object. installInterceptor effects marshal to a bare
// {"kind":"installInterceptor"} stub; callers building external output
// should drop them first with marshalableEffects, since an Interceptor
// value carries Go behavior and isn't a wire-level fact.
func (e Effect) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case EffectCustomThreat:
		return json.Marshal(struct {
			Kind    string         `json:"kind"`
			Changes []ThreatChange `json:"changes"`
		}{"customThreat", e.CustomThreat.Changes})

	case EffectModifyThreat:
		target := "target"
		if e.ModifyThreat.Target == ModifyTargetAll {
			target = "all"
		}
		return json.Marshal(struct {
			Kind       string  `json:"kind"`
			Multiplier float64 `json:"multiplier"`
			Target     string  `json:"target"`
		}{"modifyThreat", e.ModifyThreat.Multiplier, target})

	case EffectAuraMutation:
		action := "apply"
		if e.AuraMutation.Action == AuraRemove {
			action = "remove"
		}
		return json.Marshal(struct {
			Kind     string  `json:"kind"`
			Action   string  `json:"action"`
			SpellID  int64   `json:"spellId"`
			ActorIDs []int64 `json:"actorIds"`
		}{"auraMutation", action, e.AuraMutation.SpellID, e.AuraMutation.ActorIDs})

	case EffectState:
		s := e.State
		w := struct {
			Kind           string     `json:"kind"`
			StateKind      StateKind  `json:"stateKind"`
			Phase          StatePhase `json:"phase"`
			SpellID        int64      `json:"spellId"`
			ActorID        int64      `json:"actorId"`
			TargetID       *int64     `json:"targetId,omitempty"`
			TargetInstance int        `json:"targetInstance,omitempty"`
		}{Kind: "state", StateKind: s.Kind, Phase: s.Phase, SpellID: s.SpellID, ActorID: s.ActorID}
		if s.HasTarget {
			w.TargetID, w.TargetInstance = &s.TargetID, s.TargetInstance
		}
		return json.Marshal(w)

	case EffectEventMarker:
		return json.Marshal(struct {
			Kind   string     `json:"kind"`
			Marker MarkerKind `json:"marker"`
		}{"eventMarker", e.EventMarker.Marker})

	case EffectInstallInterceptor:
		return json.Marshal(struct {
			Kind string `json:"kind"`
		}{"installInterceptor"})

	default:
		return json.Marshal(struct {
			Kind string `json:"kind"`
		}{"unknown"})
	}
}

// marshalableEffects drops installInterceptor entries, which carry Go
// behavior rather than a wire-level fact.
func marshalableEffects(effects []Effect) []Effect {
	out := make([]Effect, 0, len(effects))
	for _, e := range effects {
		if e.Kind == EffectInstallInterceptor {
			continue
		}
		out = append(out, e)
	}
	return out
}
