package contracts

import "fmt"

// Market is a stock market identifier
type Market string

const (
	MarketKOSPI  Market = "KOSPI"
	MarketKOSDAQ Market = "KOSDAQ"
)

// Investor is an investor type whose net-buy flow is tracked
type Investor string

const (
	InvestorForeigner    Investor = "foreigner"
	InvestorInstitutions Investor = "institutions"
)

// Segment identifies one (market, investor) tracking bucket
// ⭐ SSOT: 세그먼트 정의는 여기서만
type Segment struct {
	Market   Market
	Investor Investor
}

// Key returns the stable segment key used for layout and history addressing
// (예: "KOSPI_foreigner")
func (s Segment) Key() string {
	return fmt.Sprintf("%s_%s", s.Market, s.Investor)
}

// String implements fmt.Stringer
func (s Segment) String() string {
	return s.Key()
}

// segments is the fixed processing order. Output reproducibility depends on
// this order; do not reorder.
var segments = []Segment{
	{Market: MarketKOSPI, Investor: InvestorForeigner},
	{Market: MarketKOSPI, Investor: InvestorInstitutions},
	{Market: MarketKOSDAQ, Investor: InvestorForeigner},
	{Market: MarketKOSDAQ, Investor: InvestorInstitutions},
}

// Segments returns the fixed list of tracked segments
func Segments() []Segment {
	out := make([]Segment, len(segments))
	copy(out, segments)
	return out
}

// SegmentByKey resolves a segment key back to its Segment
func SegmentByKey(key string) (Segment, bool) {
	for _, s := range segments {
		if s.Key() == key {
			return s, true
		}
	}
	return Segment{}, false
}
