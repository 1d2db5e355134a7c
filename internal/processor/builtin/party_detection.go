package builtin

import (
	"strings"

	"github.com/tstirrat/wow-threat-sub000/internal/processor"
	"github.com/tstirrat/wow-threat-sub000/internal/threat"
)

// maxPartySize is the hard cap on inferred party membership.
const maxPartySize = 5

// partyScopeSignalSpellIDs are abilities whose effect area is conventionally
// a 5-player party: raid-wide heals narrowed to party range, shouts,
// totems/auras, and party-wide cooldowns.
var partyScopeSignalSpellIDs = map[int64]struct{}{
	596:   {}, // Prayer of Healing
	34861: {}, // Circle of Healing
	19746: {}, // Concentration Aura
	19891: {}, // Resist Aura (party)
	6673:  {}, // Battle Shout
	469:   {}, // Commanding Shout
	8075:  {}, // Strength of Earth Totem
	25909: {}, // Tranquil Air
	20375: {}, // Bloodlust
	32182: {}, // Heroism
	24858: {}, // Moonkin Aura
	19506: {}, // Trueshot Aura
	13159: {}, // Aspect of the Pack (party range)
}

// partyScopeSignalNames are matched case-insensitively against
// processor.Context.AbilityNames whenever an ability id isn't present in
// partyScopeSignalSpellIDs — a rank or client-version variant of a
// recognized party-scope spell won't always share the hardcoded id, but it
// keeps the same name.
var partyScopeSignalNames = map[string]struct{}{
	"prayer of healing":       {},
	"circle of healing":       {},
	"concentration aura":      {},
	"resist aura":             {},
	"battle shout":            {},
	"commanding shout":        {},
	"strength of earth totem": {},
	"mana spring totem":       {},
	"bloodlust":               {},
	"heroism":                 {},
	"moonkin aura":            {},
	"trueshot aura":           {},
	"aspect of the pack":      {},
}

func isPartyScopeSignal(spellID int64, abilityNames map[int64]string) bool {
	if _, ok := partyScopeSignalSpellIDs[spellID]; ok {
		return true
	}
	name, ok := abilityNames[spellID]
	if !ok {
		return false
	}
	_, ok = partyScopeSignalNames[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

type observationKey struct {
	SourceID      int64
	SourceInstance int
	SpellID       int64
	Timestamp     int64
}

// PartyGroups is the published result of PartyDetection.
type PartyGroups struct {
	ActorGroupByID   map[int64]int64
	MembersByGroupID map[int64][]int64
}

// PartyGroupsKey is where PartyDetection publishes its result.
var PartyGroupsKey = processor.NewDataKey[PartyGroups]("builtin.partyGroups")

// PartyDetection infers 5-player party membership from which friendly
// actors simultaneously receive the same party-scoped buff.
type PartyDetection struct {
	processor.NoopProcessor

	observations map[observationKey]map[int64]struct{}
}

// NewPartyDetection constructs the processor. The caller should only
// register it when inferThreatReduction is set.
func NewPartyDetection() *PartyDetection {
	return &PartyDetection{observations: make(map[observationKey]map[int64]struct{})}
}

func (p *PartyDetection) Init(*processor.Context) {
	p.observations = make(map[observationKey]map[int64]struct{})
}

func (p *PartyDetection) VisitPrepass(ctx *processor.Context, event threat.Event) {
	if !event.Type.IsApply() || !event.HasAbilityGameID {
		return
	}
	if !isPartyScopeSignal(event.AbilityGameID, ctx.AbilityNames) {
		return
	}
	if !ctx.Fight.IsFriendly(event.TargetID) {
		return
	}

	key := observationKey{
		SourceID:       event.SourceID,
		SourceInstance: event.SourceInstance,
		SpellID:        event.AbilityGameID,
		Timestamp:      event.Timestamp,
	}
	set, ok := p.observations[key]
	if !ok {
		set = make(map[int64]struct{})
		p.observations[key] = set
	}
	set[event.TargetID] = struct{}{}
}

func (p *PartyDetection) FinalizePrepass(ctx *processor.Context) {
	uf := newCappedUnionFind(maxPartySize)

	friendlyPlayerIDs := make(map[int64]struct{})
	petOwners := make(map[int64]int64)
	for id, info := range ctx.ActorMap {
		if info.IsPlayer() {
			friendlyPlayerIDs[id] = struct{}{}
		}
		if info.IsPet() {
			petOwners[id] = info.PetOwner
		}
	}
	for id := range friendlyPlayerIDs {
		uf.ensure(id)
	}

	for _, recipients := range p.observations {
		if len(recipients) < 2 {
			continue
		}
		members := make([]int64, 0, len(recipients))
		for id := range recipients {
			if _, isPlayer := friendlyPlayerIDs[id]; isPlayer {
				members = append(members, id)
			}
		}
		insertionSort(members)
		for i := 1; i < len(members); i++ {
			uf.union(members[0], members[i])
		}
	}

	for petID, ownerID := range petOwners {
		if _, ok := friendlyPlayerIDs[ownerID]; !ok {
			continue
		}
		uf.ensure(petID)
		uf.union(ownerID, petID)
	}

	groups := uf.groups()
	roots := make([]int64, 0, len(groups))
	for root := range groups {
		roots = append(roots, root)
	}
	insertionSort(roots)

	result := PartyGroups{
		ActorGroupByID:   make(map[int64]int64, len(uf.parent)),
		MembersByGroupID: make(map[int64][]int64, len(groups)),
	}
	for groupID, root := range roots {
		members := groups[root]
		result.MembersByGroupID[int64(groupID)] = members
		for _, member := range members {
			result.ActorGroupByID[member] = int64(groupID)
		}
	}

	processor.Set(ctx.Namespace, PartyGroupsKey, result)
}
