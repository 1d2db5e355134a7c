package aggregate

import (
	"sort"

	"github.com/tstirrat/wow-threat-sub000/internal/threat"
)

// Ranking is one player's total threat contribution across the whole fight,
// with pet threat folded into the owning player.
type Ranking struct {
	PlayerID    int64
	Name        string
	ThreatTotal float64
	Rank        int
}

// BuildRankings sums every ThreatChange's actual contribution per owning
// player — pets resolved to their owner via actors — and ranks descending by
// total, tie-broken by player id for determinism.
func BuildRankings(events []threat.AugmentedEvent, actors threat.ActorMap) []Ranking {
	totals := make(map[int64]float64)
	tracker := newThreatDeltaTracker()

	owner := func(id int64) int64 {
		if info, ok := actors[id]; ok && info.IsPet() {
			return info.PetOwner
		}
		return id
	}

	for _, ae := range events {
		for _, ch := range ae.Changes {
			totals[owner(ch.SourceID)] += tracker.delta(ch)
		}
	}

	ids := make([]int64, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ti, tj := totals[ids[i]], totals[ids[j]]
		if ti != tj {
			return ti > tj
		}
		return ids[i] < ids[j]
	})

	rankings := make([]Ranking, 0, len(ids))
	for i, id := range ids {
		name := ""
		if info, ok := actors[id]; ok {
			name = info.Name
		}
		rankings = append(rankings, Ranking{PlayerID: id, Name: name, ThreatTotal: totals[id], Rank: i + 1})
	}
	return rankings
}
