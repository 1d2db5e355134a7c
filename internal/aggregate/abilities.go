package aggregate

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/tstirrat/wow-threat-sub000/internal/threat"
)

// AbilityRow is one per-ability breakdown line for a focused player inside a
// window.
type AbilityRow struct {
	Key         string `json:"key"` // abilityId, or "abilityId:suffix" for energize/resourcechange
	AbilityID   int64  `json:"abilityId"`
	Name        string `json:"name"`
	IsHeal      bool   `json:"isHeal,omitempty"`
	IsFixate    bool   `json:"isFixate,omitempty"`
	TotalAmount int     `json:"totalAmount"`
	TotalThreat float64 `json:"totalThreat"`
	TPS         *float64 `json:"tps,omitempty"` // nil for fixate rows

	DominantModifierName    string  `json:"dominantModifierName,omitempty"`
	DominantModifierProduct float64 `json:"dominantModifierProduct,omitempty"`
}

type abilityAccum struct {
	row       AbilityRow
	modifiers map[string]float64 // name -> cumulative threat attributed
	products  map[string]float64 // name -> running product of applied values
}

// BuildAbilityRows keys events sourced by actorID in [windowStart, windowEnd]
// by ability (or ability:eventSuffix for energize/resourcechange so
// resource-gain entries stay distinct from damage on the same ability id),
// accumulating amounts, threat, and the dominant-modifier histogram. Rows
// sort by |threat| desc, then amount desc, then ability name.
func BuildAbilityRows(events []threat.AugmentedEvent, actorID int64, abilityNames map[int64]string, fightStartMs, windowStart, windowEnd int64) []AbilityRow {
	accums := make(map[string]*abilityAccum)
	tracker := newThreatDeltaTracker()

	for _, ae := range events {
		// Keep the running per-row totals current for every change touching
		// this actor even when the owning event falls outside the window or
		// carries no ability id, so a later in-window set-operator change
		// still diffs against the right baseline.
		var eventThreat float64
		for _, ch := range ae.Changes {
			if ch.SourceID == actorID {
				eventThreat += tracker.delta(ch)
			}
		}

		if ae.Event.SourceID != actorID {
			continue
		}
		timeMs := timeFromStart(ae.Event.Timestamp, fightStartMs)
		if timeMs < windowStart || timeMs > windowEnd {
			continue
		}
		if !ae.Event.HasAbilityGameID {
			continue
		}

		key := abilityRowKey(ae.Event)
		acc, ok := accums[key]
		if !ok {
			acc = &abilityAccum{
				row: AbilityRow{
					Key:       key,
					AbilityID: ae.Event.AbilityGameID,
					Name:      abilityNames[ae.Event.AbilityGameID],
					IsHeal:    ae.Event.Type == threat.EventHeal,
				},
				modifiers: make(map[string]float64),
				products:  make(map[string]float64),
			}
			accums[key] = acc
		}

		switch ae.Event.Type {
		case threat.EventDamage:
			acc.row.TotalAmount += ae.Event.Amount
		case threat.EventHeal:
			acc.row.TotalAmount += ae.Event.Amount - ae.Event.Overheal
		}

		acc.row.TotalThreat += eventThreat

		for _, eff := range ae.Calculation.Effects {
			if eff.Kind == threat.EffectState && eff.State.ActorID == actorID && eff.State.Kind == threat.StateFixate && eff.State.Phase == threat.PhaseStart {
				acc.row.IsFixate = true
			}
		}

		for _, m := range ae.Calculation.Modifiers {
			acc.modifiers[m.Name] += eventThreat
			if p, ok := acc.products[m.Name]; ok {
				acc.products[m.Name] = p * m.Value
			} else {
				acc.products[m.Name] = m.Value
			}
		}
	}

	windowSeconds := float64(windowEnd-windowStart) / 1000
	rows := make([]AbilityRow, 0, len(accums))
	for _, acc := range accums {
		row := acc.row
		row.DominantModifierName, row.DominantModifierProduct = dominantModifier(acc.modifiers, acc.products)
		if !row.IsFixate && windowSeconds > 0 {
			tps := row.TotalThreat / windowSeconds
			row.TPS = &tps
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		ti, tj := absFloat(rows[i].TotalThreat), absFloat(rows[j].TotalThreat)
		if ti != tj {
			return ti > tj
		}
		if rows[i].TotalAmount != rows[j].TotalAmount {
			return rows[i].TotalAmount > rows[j].TotalAmount
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

func abilityRowKey(event threat.Event) string {
	switch event.Type {
	case threat.EventEnergize, threat.EventResourceChange:
		return fmt.Sprintf("%d:%s", event.AbilityGameID, string(event.Type))
	default:
		return strconv.FormatInt(event.AbilityGameID, 10)
	}
}

// dominantModifier picks the modifier name with the greatest cumulative
// threat, tie-broken by name for determinism, and reports its running
// product across occurrences on this ability row.
func dominantModifier(cumulative, products map[string]float64) (string, float64) {
	names := make([]string, 0, len(cumulative))
	for name := range cumulative {
		names = append(names, name)
	}
	sort.Strings(names)

	var best string
	var bestThreat float64
	found := false
	for _, name := range names {
		v := cumulative[name]
		if !found || v > bestThreat {
			best, bestThreat, found = name, v, true
		}
	}
	if !found {
		return "", 0
	}
	return best, products[best]
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// WriteAbilityRowsCSV renders rows as CSV for the batch CLI's export flag.
func WriteAbilityRowsCSV(w io.Writer, rows []AbilityRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"ability_id", "name", "is_heal", "is_fixate", "total_amount", "total_threat", "tps", "dominant_modifier", "dominant_modifier_product"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		tps := ""
		if row.TPS != nil {
			tps = strconv.FormatFloat(*row.TPS, 'f', 2, 64)
		}
		record := []string{
			strconv.FormatInt(row.AbilityID, 10),
			row.Name,
			strconv.FormatBool(row.IsHeal),
			strconv.FormatBool(row.IsFixate),
			strconv.Itoa(row.TotalAmount),
			strconv.FormatFloat(row.TotalThreat, 'f', 2, 64),
			tps,
			row.DominantModifierName,
			strconv.FormatFloat(row.DominantModifierProduct, 'f', 4, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return cw.Error()
}
