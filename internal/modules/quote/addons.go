// README: Add-on pricing over a day count; unknown keys contribute nothing.
package quote

import "carrental/internal/modules/catalog"

type AddonLine struct {
	Key         string              `json:"key"`
	Title       string              `json:"title"`
	PricingMode catalog.PricingMode `json:"pricingMode"`
	UnitPrice   int64               `json:"unitPrice"`
	Amount      int64               `json:"amount"`
}

// AddonCharge bills per-day add-ons for at least one day.
func AddonCharge(def catalog.AddonDefinition, days int) int64 {
	if def.PricingMode == catalog.PerDay {
		return def.UnitPrice * int64(max(1, days))
	}
	return def.UnitPrice
}

// AddonLines prices the selected keys in definition order. The selection is a
// set: duplicates count once and keys missing from defs are dropped.
func AddonLines(selected []string, days int, defs []catalog.AddonDefinition) []AddonLine {
	if len(selected) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(selected))
	for _, k := range selected {
		want[k] = struct{}{}
	}
	var lines []AddonLine
	for _, def := range defs {
		if _, ok := want[def.Key]; !ok {
			continue
		}
		lines = append(lines, AddonLine{
			Key:         def.Key,
			Title:       def.Title,
			PricingMode: def.PricingMode,
			UnitPrice:   def.UnitPrice,
			Amount:      AddonCharge(def, days),
		})
	}
	return lines
}

func AddonsTotal(selected []string, days int, defs []catalog.AddonDefinition) int64 {
	var total int64
	for _, l := range AddonLines(selected, days, defs) {
		total += l.Amount
	}
	return total
}

// NormalizeAddons returns the known selected keys, deduplicated, in definition order.
func NormalizeAddons(selected []string, defs []catalog.AddonDefinition) []string {
	lines := AddonLines(selected, 0, defs)
	keys := make([]string, len(lines))
	for i, l := range lines {
		keys[i] = l.Key
	}
	return keys
}
