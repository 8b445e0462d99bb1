package contracts

import "time"

// RankedEntry is one row of today's input for a segment.
// Entries arrive sorted descending by net value and truncated to top-N;
// index 0 is rank 1.
type RankedEntry struct {
	Code     string // 종목코드 (6자리)
	Name     string // 종목명
	NetValue int64  // 순매수 거래대금 (원), 음수 가능
}

// SnapshotEntry is one persisted row of a dated snapshot
type SnapshotEntry struct {
	Rank     int    `json:"rank"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	NetValue int64  `json:"net_value"`
}

// Snapshot is one dated, persisted top-N ranking per segment
type Snapshot struct {
	Date    time.Time                  `json:"date"`
	Entries map[string][]SnapshotEntry `json:"entries"` // segment key -> rank order
}

// Names returns the ordered entity names for a segment (rank 1 first).
// Missing segments yield nil.
func (s Snapshot) Names(segmentKey string) []string {
	entries := s.Entries[segmentKey]
	if len(entries) == 0 {
		return nil
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// RankChange annotates an entry's movement relative to the previous snapshot.
// Exactly one of New or a meaningful Delta applies.
type RankChange struct {
	New   bool `json:"new"`             // 전일 미등장 (신규 진입)
	Delta int  `json:"delta,omitempty"` // 전일 순위 - 금일 순위 (양수 = 상승)
}

// Milestone classifies an entry's close price against its highs
type Milestone string

const (
	MilestoneAllTimeHigh     Milestone = "all_time_high"
	MilestoneNearAllTimeHigh Milestone = "near_all_time_high"
	MilestoneWeek52High      Milestone = "week_52_high"
	MilestoneNearWeek52High  Milestone = "near_52w_high"
	MilestoneNone            Milestone = "none"
)

// AnnotatedEntry is one fully analyzed row handed to the renderer
type AnnotatedEntry struct {
	Rank      int        `json:"rank"` // 1-based
	Code      string     `json:"code"`
	Name      string     `json:"name"` // normalized name, 접미사 없음
	NetValue  int64      `json:"net_value"`
	Change    RankChange `json:"change"`
	Streak    int        `json:"streak"` // 오늘 포함 연속 등장일수 (>= 1)
	Paired    bool       `json:"paired"` // 같은 시장의 다른 투자자 목록에도 등장
	Milestone Milestone  `json:"milestone"`
}

// SegmentReport is one segment's annotated output in today's rank order
type SegmentReport struct {
	Segment Segment          `json:"segment"`
	Entries []AnnotatedEntry `json:"entries"`
}

// ReportResult summarizes one UpdateReport run
type ReportResult struct {
	Date     time.Time       `json:"date"`
	Segments []SegmentReport `json:"segments"`
	Warnings int             `json:"warnings"` // 가격 조회 실패 등 비치명 경고 수
}

// PriceInfo holds the price milestones for one stock as of a date
type PriceInfo struct {
	Code        string  `json:"code"`
	Close       float64 `json:"close"`
	High52W     float64 `json:"high_52w"`
	AllTimeHigh float64 `json:"all_time_high"`
}
