package report

import "github.com/wonny/flowrank/backend/internal/contracts"

// PreviousRanks derives a name -> 1-based rank map from the single most
// recent historical name list. Only yesterday's snapshot participates in
// rank comparison; deeper history is the streak analyzer's concern.
func PreviousRanks(names []string) map[string]int {
	ranks := make(map[string]int, len(names))
	for i, name := range names {
		if _, dup := ranks[name]; dup {
			continue
		}
		ranks[name] = i + 1
	}
	return ranks
}

// RankChanges computes per-entry movement for today's ordered name list.
// An entity absent from prev is a new entry even if it appeared further back
// in history; otherwise delta = previous rank - current rank (양수 = 상승).
func RankChanges(prev map[string]int, today []string) []contracts.RankChange {
	changes := make([]contracts.RankChange, len(today))
	for i, name := range today {
		prevRank, ok := prev[name]
		if !ok {
			changes[i] = contracts.RankChange{New: true}
			continue
		}
		changes[i] = contracts.RankChange{Delta: prevRank - (i + 1)}
	}
	return changes
}
