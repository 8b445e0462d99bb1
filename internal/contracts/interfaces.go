package contracts

import (
	"context"
	"errors"
	"time"
)

// ErrPriceNotFound is returned by a PriceOracle when a stock has no price
// coverage for the requested date. Callers degrade the milestone to none.
var ErrPriceNotFound = errors.New("price info not found")

// MarketDataSource supplies today's raw ranked rows per segment
// ⭐ SSOT: 수급 순위 수집 인터페이스
type MarketDataSource interface {
	// FetchNetBuyRanking returns the top-N net-buy entries for a segment,
	// sorted descending by net value.
	FetchNetBuyRanking(ctx context.Context, segment Segment, date time.Time) ([]RankedEntry, error)
}

// PriceOracle supplies close/high price info for milestone classification
// ⭐ SSOT: 가격 조회 인터페이스
type PriceOracle interface {
	GetPriceInfo(ctx context.Context, code string, date time.Time) (*PriceInfo, error)
}

// ReportStore persists the ordered sequence of dated snapshots
// ⭐ SSOT: 순위표 이력 저장 인터페이스
type ReportStore interface {
	// ReadRecent returns up to maxCount snapshots dated strictly before
	// the given date, most recent last. The bound keeps a re-run for an
	// already-persisted date from reading its own snapshot as history.
	ReadRecent(ctx context.Context, before time.Time, maxCount int) ([]Snapshot, error)

	// AppendOrReplace commits a snapshot and its rendered content
	// atomically. Re-running for an existing date replaces that date.
	AppendOrReplace(ctx context.Context, snapshot Snapshot, rendered []byte) error
}

// Renderer turns annotated segment reports into a concrete document.
// The output is opaque to the engine.
type Renderer interface {
	Render(date time.Time, segments []SegmentReport) ([]byte, error)
}
