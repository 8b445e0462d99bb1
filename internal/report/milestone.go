package report

import "github.com/wonny/flowrank/backend/internal/contracts"

// MilestoneClassifier selects a single price milestone by fixed priority:
// 역사적 신고가 > 역사적 근접 > 52주 신고가 > 52주 근접 > 없음.
// NearThreshold is the shared "near" fraction for both highs (기본 0.90).
type MilestoneClassifier struct {
	NearThreshold float64
}

// milestoneTier is one (predicate, result) step of the priority chain
type milestoneTier struct {
	match  func(c MilestoneClassifier, p *contracts.PriceInfo) bool
	result contracts.Milestone
}

var milestoneTiers = []milestoneTier{
	{
		match:  func(_ MilestoneClassifier, p *contracts.PriceInfo) bool { return p.Close >= p.AllTimeHigh },
		result: contracts.MilestoneAllTimeHigh,
	},
	{
		match: func(c MilestoneClassifier, p *contracts.PriceInfo) bool {
			return p.Close >= c.NearThreshold*p.AllTimeHigh
		},
		result: contracts.MilestoneNearAllTimeHigh,
	},
	{
		match:  func(_ MilestoneClassifier, p *contracts.PriceInfo) bool { return p.Close >= p.High52W },
		result: contracts.MilestoneWeek52High,
	},
	{
		match: func(c MilestoneClassifier, p *contracts.PriceInfo) bool {
			return p.Close >= c.NearThreshold*p.High52W
		},
		result: contracts.MilestoneNearWeek52High,
	},
}

// Classify returns exactly one milestone for the given price info.
// A nil info (가격 조회 실패) classifies as none; the caller logs the failure.
func (c MilestoneClassifier) Classify(info *contracts.PriceInfo) contracts.Milestone {
	if info == nil || info.Close <= 0 || info.High52W <= 0 || info.AllTimeHigh <= 0 {
		return contracts.MilestoneNone
	}

	for _, tier := range milestoneTiers {
		if tier.match(c, info) {
			return tier.result
		}
	}
	return contracts.MilestoneNone
}
