package builtin

import (
	"github.com/tstirrat/wow-threat-sub000/internal/processor"
	"github.com/tstirrat/wow-threat-sub000/internal/threat"
)

const (
	// tranquilAirCastSpellID is the Tranquil Air Totem's summon-cast
	// ability id, shared by its `cast` and paired `summon` events.
	tranquilAirCastSpellID int64 = 25908
	// tranquilAirBuffSpellID is the party-range threat-reduction buff the
	// totem grants to members in range.
	tranquilAirBuffSpellID int64 = 25909

	tranquilAirCastTTLMs int64 = 2000

	// yardsToPositionUnits converts yards to the log's position unit scale.
	yardsToPositionUnits = 200
	tranquilAirRadiusUnits = 30 * yardsToPositionUnits
)

type pendingCast struct {
	X, Y      float64
	Timestamp int64
}

// TranquilAir emulates the Tranquil Air Totem's party-range threat
// reduction, which classic logs do not record as an explicit buff
// application to every recipient.
type TranquilAir struct {
	processor.NoopProcessor

	pendingCasts       map[int64]pendingCast     // shaman actor id -> last cast
	previousRecipients map[int64]map[int64]struct{} // shaman actor id -> recipients currently in range
	recipientHolders   map[int64]int             // recipient actor id -> number of shamans granting it
}

func NewTranquilAir() *TranquilAir {
	return &TranquilAir{
		pendingCasts:       make(map[int64]pendingCast),
		previousRecipients: make(map[int64]map[int64]struct{}),
		recipientHolders:   make(map[int64]int),
	}
}

func (p *TranquilAir) Init(*processor.Context) {
	p.pendingCasts = make(map[int64]pendingCast)
	p.previousRecipients = make(map[int64]map[int64]struct{})
	p.recipientHolders = make(map[int64]int)
}

func (p *TranquilAir) BeforeFightState(ctx *processor.Context, event threat.Event) []threat.Effect {
	if !event.HasAbilityGameID || event.AbilityGameID != tranquilAirCastSpellID {
		return nil
	}

	switch event.Type {
	case threat.EventCast:
		x, y := event.X, event.Y
		if !event.HasPosition {
			x, y, _ = ctx.Fight.GetPosition(event.SourceRef())
		}
		p.pendingCasts[event.SourceID] = pendingCast{X: x, Y: y, Timestamp: event.Timestamp}
		return nil
	case threat.EventSummon:
		return p.resolveSummon(ctx, event)
	default:
		return nil
	}
}

func (p *TranquilAir) resolveSummon(ctx *processor.Context, event threat.Event) []threat.Effect {
	shamanID := event.SourceID

	summonX, summonY, ok := p.summonOrigin(ctx, event)
	if !ok {
		return nil
	}

	groups, _ := processor.Get(ctx.Namespace, PartyGroupsKey)
	members := groups.MembersByGroupID[groups.ActorGroupByID[shamanID]]
	if len(members) == 0 {
		members = []int64{shamanID}
	}

	newRecipients := make(map[int64]struct{})
	for _, memberID := range members {
		memberX, memberY, ok := p.memberPosition(ctx, memberID)
		if !ok {
			continue
		}
		if withinRadius(summonX, summonY, memberX, memberY, tranquilAirRadiusUnits) {
			newRecipients[memberID] = struct{}{}
		}
	}

	previous := p.previousRecipients[shamanID]
	var removed, added []int64
	for actorID := range previous {
		if _, stillIn := newRecipients[actorID]; !stillIn {
			removed = append(removed, actorID)
		}
	}
	for actorID := range newRecipients {
		if _, wasIn := previous[actorID]; !wasIn {
			added = append(added, actorID)
		}
	}
	insertionSort(removed)
	insertionSort(added)
	p.previousRecipients[shamanID] = newRecipients

	var effects []threat.Effect
	var releaseBuff []int64
	for _, actorID := range removed {
		p.recipientHolders[actorID]--
		if p.recipientHolders[actorID] <= 0 {
			delete(p.recipientHolders, actorID)
			releaseBuff = append(releaseBuff, actorID)
		}
	}
	if len(releaseBuff) > 0 {
		effects = append(effects, threat.NewAuraMutation(threat.AuraRemove, tranquilAirBuffSpellID, releaseBuff...))
	}

	var grantBuff []int64
	for _, actorID := range added {
		p.recipientHolders[actorID]++
		if p.recipientHolders[actorID] == 1 {
			grantBuff = append(grantBuff, actorID)
		}
	}
	if len(grantBuff) > 0 {
		effects = append(effects, threat.NewAuraMutation(threat.AuraApply, tranquilAirBuffSpellID, grantBuff...))
	}

	return effects
}

func (p *TranquilAir) summonOrigin(ctx *processor.Context, event threat.Event) (x, y float64, ok bool) {
	if cast, fresh := p.pendingCasts[event.SourceID]; fresh && event.Timestamp-cast.Timestamp <= tranquilAirCastTTLMs {
		return cast.X, cast.Y, true
	}
	return ctx.Fight.GetPosition(event.SourceRef())
}

func (p *TranquilAir) memberPosition(ctx *processor.Context, memberID int64) (x, y float64, ok bool) {
	x, y, ok = ctx.Fight.GetPosition(threat.Ref{ID: memberID})
	if ok {
		return x, y, true
	}
	if info, known := ctx.ActorMap[memberID]; known && info.IsPet() {
		return ctx.Fight.GetPosition(threat.Ref{ID: info.PetOwner})
	}
	return 0, 0, false
}

func withinRadius(x1, y1, x2, y2, radius float64) bool {
	dx, dy := x1-x2, y1-y2
	return dx*dx+dy*dy <= radius*radius
}
