package report

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/flowrank/backend/internal/contracts"
	"github.com/wonny/flowrank/backend/pkg/config"
	"github.com/wonny/flowrank/backend/pkg/logger"
)

// fakeStore is an in-memory ReportStore
type fakeStore struct {
	snapshots []contracts.Snapshot
	rendered  map[string][]byte
	readErr   error
	appendErr error
}

func newFakeStore(snapshots ...contracts.Snapshot) *fakeStore {
	return &fakeStore{
		snapshots: snapshots,
		rendered:  make(map[string][]byte),
	}
}

func (s *fakeStore) ReadRecent(_ context.Context, before time.Time, maxCount int) ([]contracts.Snapshot, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	var prior []contracts.Snapshot
	for _, snap := range s.snapshots {
		if snap.Date.Before(before) {
			prior = append(prior, snap)
		}
	}
	if len(prior) <= maxCount {
		return prior, nil
	}
	return prior[len(prior)-maxCount:], nil
}

func (s *fakeStore) AppendOrReplace(_ context.Context, snapshot contracts.Snapshot, rendered []byte) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	for i, existing := range s.snapshots {
		if existing.Date.Equal(snapshot.Date) {
			s.snapshots[i] = snapshot
			s.rendered[snapshot.Date.Format("2006-01-02")] = rendered
			return nil
		}
	}
	s.snapshots = append(s.snapshots, snapshot)
	s.rendered[snapshot.Date.Format("2006-01-02")] = rendered
	return nil
}

// fakeOracle serves canned price info per stock code
type fakeOracle struct {
	prices map[string]contracts.PriceInfo
	errs   map[string]error
	calls  map[string]int
}

func newFakeOracle() *fakeOracle {
	return &fakeOracle{
		prices: make(map[string]contracts.PriceInfo),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (o *fakeOracle) GetPriceInfo(_ context.Context, code string, _ time.Time) (*contracts.PriceInfo, error) {
	o.calls[code]++
	if err, ok := o.errs[code]; ok {
		return nil, err
	}
	if info, ok := o.prices[code]; ok {
		return &info, nil
	}
	return nil, contracts.ErrPriceNotFound
}

// fakeRenderer serializes the segment reports to JSON
type fakeRenderer struct {
	calls int
}

func (r *fakeRenderer) Render(date time.Time, segments []contracts.SegmentReport) ([]byte, error) {
	r.calls++
	return json.Marshal(map[string]interface{}{
		"date":     date.Format("2006-01-02"),
		"segments": segments,
	})
}

func testEngine(store contracts.ReportStore, oracle contracts.PriceOracle) (*Engine, *fakeRenderer) {
	cfg := &config.Config{
		Env:       "test",
		LogLevel:  "error",
		LogFormat: "json",
		Database:  config.DatabaseConfig{URL: "dummy"},
	}
	renderer := &fakeRenderer{}
	reportCfg := config.ReportConfig{
		TopN:          30,
		HistoryDepth:  5,
		NearThreshold: 0.90,
		PairingSuffix: " (쌍)",
	}
	return NewEngine(store, oracle, renderer, logger.New(cfg), reportCfg), renderer
}

func snapshotOf(date time.Time, names map[string][]string) contracts.Snapshot {
	snap := contracts.Snapshot{Date: date, Entries: make(map[string][]contracts.SnapshotEntry)}
	for key, list := range names {
		rows := make([]contracts.SnapshotEntry, len(list))
		for i, name := range list {
			rows[i] = contracts.SnapshotEntry{Rank: i + 1, Name: name, Code: "", NetValue: 0}
		}
		snap.Entries[key] = rows
	}
	return snap
}

func entriesOf(names ...string) []contracts.RankedEntry {
	entries := make([]contracts.RankedEntry, len(names))
	for i, name := range names {
		entries[i] = contracts.RankedEntry{Name: name, Code: "", NetValue: int64(1000 - i)}
	}
	return entries
}

func TestUpdateReportEndToEnd(t *testing.T) {
	day1 := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	store := newFakeStore(snapshotOf(day1, map[string][]string{
		"KOSPI_foreigner": {"A", "B", "C"},
	}))
	engine, _ := testEngine(store, newFakeOracle())

	result, err := engine.UpdateReport(context.Background(), today, map[string][]contracts.RankedEntry{
		"KOSPI_foreigner": entriesOf("B", "A", "D"),
	})
	require.NoError(t, err)

	entries := result.Segments[0].Entries
	require.Len(t, entries, 3)

	// B: was 2, now 1 -> +1, streak 2
	assert.Equal(t, "B", entries[0].Name)
	assert.False(t, entries[0].Change.New)
	assert.Equal(t, 1, entries[0].Change.Delta)
	assert.Equal(t, 2, entries[0].Streak)

	// A: was 1, now 2 -> -1, streak 2
	assert.Equal(t, "A", entries[1].Name)
	assert.False(t, entries[1].Change.New)
	assert.Equal(t, -1, entries[1].Change.Delta)
	assert.Equal(t, 2, entries[1].Streak)

	// D: new entry, streak 1
	assert.Equal(t, "D", entries[2].Name)
	assert.True(t, entries[2].Change.New)
	assert.Equal(t, 1, entries[2].Streak)
}

func TestUpdateReportNoHistory(t *testing.T) {
	today := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	engine, _ := testEngine(store, newFakeOracle())

	result, err := engine.UpdateReport(context.Background(), today, map[string][]contracts.RankedEntry{
		"KOSPI_foreigner": entriesOf("삼성전자", "SK하이닉스"),
	})
	require.NoError(t, err)

	for _, entry := range result.Segments[0].Entries {
		assert.True(t, entry.Change.New, "entry %s should be new with no history", entry.Name)
		assert.Equal(t, 1, entry.Streak)
	}

	// 스냅샷이 새로 저장됨
	assert.Len(t, store.snapshots, 1)
}

func TestUpdateReportStreakAccumulation(t *testing.T) {
	base := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	// 3 consecutive prior days for 삼성전자, 1 for 현대차 (gap before that)
	snaps := []contracts.Snapshot{
		snapshotOf(base, map[string][]string{"KOSPI_foreigner": {"삼성전자", "현대차"}}),
		snapshotOf(base.AddDate(0, 0, 1), map[string][]string{"KOSPI_foreigner": {"삼성전자"}}),
		snapshotOf(base.AddDate(0, 0, 2), map[string][]string{"KOSPI_foreigner": {"삼성전자", "현대차"}}),
	}
	store := newFakeStore(snaps...)
	engine, _ := testEngine(store, newFakeOracle())

	result, err := engine.UpdateReport(context.Background(), base.AddDate(0, 0, 3), map[string][]contracts.RankedEntry{
		"KOSPI_foreigner": entriesOf("삼성전자", "현대차"),
	})
	require.NoError(t, err)

	entries := result.Segments[0].Entries
	assert.Equal(t, 4, entries[0].Streak, "삼성전자: 3 prior days + today")
	assert.Equal(t, 2, entries[1].Streak, "현대차: gap two days ago resets to yesterday + today")
}

func TestUpdateReportPairingSuffixRoundTrip(t *testing.T) {
	day1 := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	today := day1.AddDate(0, 0, 1)

	// 이전 렌더링에서 접미사가 붙은 채 저장된 이력
	store := newFakeStore(snapshotOf(day1, map[string][]string{
		"KOSPI_foreigner":    {"삼성전자 (쌍)"},
		"KOSPI_institutions": {"삼성전자 (쌍)"},
	}))
	engine, _ := testEngine(store, newFakeOracle())

	result, err := engine.UpdateReport(context.Background(), today, map[string][]contracts.RankedEntry{
		"KOSPI_foreigner":    entriesOf("삼성전자"),
		"KOSPI_institutions": entriesOf("삼성전자"),
	})
	require.NoError(t, err)

	for _, seg := range result.Segments[:2] {
		require.Len(t, seg.Entries, 1)
		entry := seg.Entries[0]
		assert.Equal(t, "삼성전자", entry.Name, "normalized name stored without suffix")
		assert.False(t, entry.Change.New, "suffixed history must still match")
		assert.Equal(t, 2, entry.Streak)
		assert.True(t, entry.Paired)
	}

	// 저장된 스냅샷도 정규화된 이름을 담는다
	saved := store.snapshots[len(store.snapshots)-1]
	assert.Equal(t, "삼성전자", saved.Entries["KOSPI_foreigner"][0].Name)
}

func TestUpdateReportMilestones(t *testing.T) {
	today := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	oracle := newFakeOracle()
	oracle.prices["005930"] = contracts.PriceInfo{Code: "005930", Close: 120, High52W: 120, AllTimeHigh: 120}
	oracle.errs["000660"] = errors.New("source unavailable")

	engine, _ := testEngine(store, oracle)

	result, err := engine.UpdateReport(context.Background(), today, map[string][]contracts.RankedEntry{
		"KOSPI_foreigner": {
			{Code: "005930", Name: "삼성전자", NetValue: 500},
			{Code: "000660", Name: "SK하이닉스", NetValue: 400},
			{Code: "035420", Name: "NAVER", NetValue: 300}, // oracle has no coverage
		},
	})
	require.NoError(t, err)

	entries := result.Segments[0].Entries
	assert.Equal(t, contracts.MilestoneAllTimeHigh, entries[0].Milestone)
	assert.Equal(t, contracts.MilestoneNone, entries[1].Milestone)
	assert.Equal(t, contracts.MilestoneNone, entries[2].Milestone)
	assert.Equal(t, 2, result.Warnings, "two failed lookups, run still succeeds")
}

func TestUpdateReportMissingCodeMilestoneNone(t *testing.T) {
	today := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	oracle := newFakeOracle()

	engine, _ := testEngine(store, oracle)

	// 폴백 스크래퍼가 종목코드 추출에 실패하면 코드 없이 도착함
	result, err := engine.UpdateReport(context.Background(), today, map[string][]contracts.RankedEntry{
		"KOSPI_foreigner": {{Code: "", Name: "삼성전자", NetValue: 500}},
	})
	require.NoError(t, err)

	entry := result.Segments[0].Entries[0]
	assert.Equal(t, contracts.MilestoneNone, entry.Milestone, "code-less entry must not leave the milestone enum")
	assert.Empty(t, oracle.calls, "no lookup without a stock code")
}

func TestUpdateReportDedupesOracleLookups(t *testing.T) {
	today := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	oracle := newFakeOracle()
	oracle.prices["005930"] = contracts.PriceInfo{Code: "005930", Close: 100, High52W: 100, AllTimeHigh: 100}

	engine, _ := testEngine(store, oracle)

	// 같은 종목이 양쪽 투자자 목록에 등장해도 조회는 1회
	_, err := engine.UpdateReport(context.Background(), today, map[string][]contracts.RankedEntry{
		"KOSPI_foreigner":    {{Code: "005930", Name: "삼성전자", NetValue: 500}},
		"KOSPI_institutions": {{Code: "005930", Name: "삼성전자", NetValue: 300}},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, oracle.calls["005930"])
}

func TestUpdateReportIdempotentRerun(t *testing.T) {
	today := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	engine, _ := testEngine(store, newFakeOracle())

	input := map[string][]contracts.RankedEntry{
		"KOSPI_foreigner": entriesOf("삼성전자", "SK하이닉스"),
	}

	first, err := engine.UpdateReport(context.Background(), today, input)
	require.NoError(t, err)

	second, err := engine.UpdateReport(context.Background(), today, input)
	require.NoError(t, err)

	assert.Len(t, store.snapshots, 1, "same date must replace, not duplicate")
	assert.Equal(t, first.Segments, second.Segments, "re-run must produce identical annotations")

	// 재실행이 자기 자신의 스냅샷을 전일로 취급하면 안 됨
	for _, entry := range second.Segments[0].Entries {
		assert.True(t, entry.Change.New, "%s must stay new on re-run", entry.Name)
		assert.Equal(t, 1, entry.Streak, "%s streak must stay 1 on re-run", entry.Name)
	}
}

func TestUpdateReportRerunIgnoresLaterSnapshots(t *testing.T) {
	day1 := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	later := snapshotOf(day2, map[string][]string{"KOSPI_foreigner": {"삼성전자"}})
	store := newFakeStore(later)
	engine, _ := testEngine(store, newFakeOracle())

	// 과거 날짜 재실행: 그 이후 스냅샷은 이력이 아님
	result, err := engine.UpdateReport(context.Background(), day1, map[string][]contracts.RankedEntry{
		"KOSPI_foreigner": entriesOf("삼성전자"),
	})
	require.NoError(t, err)

	entry := result.Segments[0].Entries[0]
	assert.True(t, entry.Change.New)
	assert.Equal(t, 1, entry.Streak)
}

func TestUpdateReportDeterminism(t *testing.T) {
	day1 := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	today := day1.AddDate(0, 0, 1)
	input := map[string][]contracts.RankedEntry{
		"KOSPI_foreigner":  entriesOf("A", "B"),
		"KOSDAQ_foreigner": entriesOf("C"),
	}
	history := snapshotOf(day1, map[string][]string{"KOSPI_foreigner": {"B", "A"}})

	run := func() *contracts.ReportResult {
		engine, _ := testEngine(newFakeStore(history), newFakeOracle())
		result, err := engine.UpdateReport(context.Background(), today, input)
		require.NoError(t, err)
		return result
	}

	assert.Equal(t, run(), run())
}

func TestUpdateReportEmptySegmentDegrades(t *testing.T) {
	today := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	engine, _ := testEngine(store, newFakeOracle())

	result, err := engine.UpdateReport(context.Background(), today, map[string][]contracts.RankedEntry{
		"KOSPI_foreigner": entriesOf("삼성전자"),
		// 나머지 세그먼트 입력 없음
	})
	require.NoError(t, err)

	require.Len(t, result.Segments, 4)
	assert.Len(t, result.Segments[0].Entries, 1)
	for _, seg := range result.Segments[1:] {
		assert.Empty(t, seg.Entries)
	}
}

func TestUpdateReportStoreFailuresAreFatal(t *testing.T) {
	today := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	input := map[string][]contracts.RankedEntry{
		"KOSPI_foreigner": entriesOf("삼성전자"),
	}

	readFail := newFakeStore()
	readFail.readErr = errors.New("connection refused")
	engine, _ := testEngine(readFail, newFakeOracle())
	_, err := engine.UpdateReport(context.Background(), today, input)
	assert.Error(t, err)

	appendFail := newFakeStore()
	appendFail.appendErr = errors.New("disk full")
	engine, _ = testEngine(appendFail, newFakeOracle())
	_, err = engine.UpdateReport(context.Background(), today, input)
	assert.Error(t, err)
	assert.Empty(t, appendFail.snapshots, "no partial snapshot on append failure")
}

func TestUpdateReportTruncatesToTopN(t *testing.T) {
	today := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	store := newFakeStore()
	engine, _ := testEngine(store, newFakeOracle())

	names := make([]string, 40)
	for i := range names {
		names[i] = string(rune('A' + i%26))
	}

	result, err := engine.UpdateReport(context.Background(), today, map[string][]contracts.RankedEntry{
		"KOSPI_foreigner": entriesOf(names...),
	})
	require.NoError(t, err)

	assert.Len(t, result.Segments[0].Entries, 30)
}
