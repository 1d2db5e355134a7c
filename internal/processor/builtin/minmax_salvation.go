package builtin

import "github.com/tstirrat/wow-threat-sub000/internal/processor"

const (
	blessingOfSalvation        int64 = 1038
	greaterBlessingOfSalvation int64 = 25895
)

// longTermBlessingSpellIDs are the paladin blessings Minmax-Salvation counts
// against paladin_count_in_fight when deciding whether a raid still has
// salvation capacity to spare.
var longTermBlessingSpellIDs = []int64{
	19740, // Blessing of Might
	19742, // Blessing of Wisdom
	20217, // Blessing of Kings
	25782, // Greater Blessing of Might
	25894, // Greater Blessing of Wisdom
	25898, // Greater Blessing of Kings
	blessingOfSalvation,
	greaterBlessingOfSalvation,
}

// MinmaxSalvation seeds Greater Blessing of Salvation onto non-tank
// players when a paladin-heavy raid would plausibly have spread it around
// more than the log shows. Only meaningful
// when inferThreatReduction is set and at least one paladin is present; the
// caller is expected to only register it in that case.
type MinmaxSalvation struct {
	processor.NoopProcessor
}

func NewMinmaxSalvation() *MinmaxSalvation {
	return &MinmaxSalvation{}
}

func (p *MinmaxSalvation) FinalizePrepass(ctx *processor.Context) {
	paladinCount := 0
	for _, info := range ctx.ActorMap {
		if info.Class == "paladin" {
			paladinCount++
		}
	}
	if paladinCount == 0 {
		return
	}

	for actorID, info := range ctx.ActorMap {
		if !info.IsPlayer() {
			continue
		}
		if _, isTank := ctx.TankActorIDs[actorID]; isTank {
			continue
		}
		if ctx.IsAuraSeeded(actorID, blessingOfSalvation) || ctx.IsAuraSeeded(actorID, greaterBlessingOfSalvation) {
			continue
		}
		if countSeededBlessings(ctx, actorID) >= paladinCount {
			continue
		}
		processor.AddInitialAura(ctx.Namespace, actorID, greaterBlessingOfSalvation)
	}
}

func countSeededBlessings(ctx *processor.Context, actorID int64) int {
	count := 0
	for _, spellID := range longTermBlessingSpellIDs {
		if ctx.IsAuraSeeded(actorID, spellID) {
			count++
		}
	}
	return count
}
