package report

import "github.com/wonny/flowrank/backend/internal/contracts"

// PairedNames computes, per market, the set of names appearing in at least
// two of that market's investor-type segments today.
//
// today maps segment key -> today's normalized name list. Pairing is decided
// before any display suffix is applied, so a name never pairs with its own
// suffixed form.
func PairedNames(today map[string][]string) map[contracts.Market]map[string]struct{} {
	paired := make(map[contracts.Market]map[string]struct{})

	// Count appearances per market across investor-type segments
	counts := make(map[contracts.Market]map[string]int)
	for _, seg := range contracts.Segments() {
		names := today[seg.Key()]
		if len(names) == 0 {
			continue
		}

		if counts[seg.Market] == nil {
			counts[seg.Market] = make(map[string]int)
		}

		// A name duplicated within one segment counts once
		seen := make(map[string]struct{}, len(names))
		for _, name := range names {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			counts[seg.Market][name]++
		}
	}

	for market, names := range counts {
		for name, n := range names {
			if n < 2 {
				continue
			}
			if paired[market] == nil {
				paired[market] = make(map[string]struct{})
			}
			paired[market][name] = struct{}{}
		}
	}

	return paired
}
