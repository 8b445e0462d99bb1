package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wonny/flowrank/backend/internal/contracts"
	"github.com/wonny/flowrank/backend/pkg/config"
	"github.com/wonny/flowrank/backend/pkg/logger"
)

type fakeSource struct {
	entries map[string][]contracts.RankedEntry
	err     error
	calls   int
}

func (f *fakeSource) FetchNetBuyRanking(ctx context.Context, segment contracts.Segment, date time.Time) ([]contracts.RankedEntry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.entries[segment.Key()], nil
}

func testJobLogger() *logger.Logger {
	return logger.New(&config.Config{LogLevel: "error", LogFormat: "json"})
}

func TestFetchAllSegmentsUsesFallback(t *testing.T) {
	primary := &fakeSource{err: errors.New("portal down")}
	fallback := &fakeSource{entries: map[string][]contracts.RankedEntry{
		"KOSPI_foreigner": {{Code: "005930", Name: "삼성전자", NetValue: 100}},
	}}

	job := &DailyReportJob{
		primary:  primary,
		fallback: fallback,
		logger:   testJobLogger(),
	}

	entries, err := job.fetchAllSegments(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if len(entries) != len(contracts.Segments()) {
		t.Errorf("segments = %d, want %d", len(entries), len(contracts.Segments()))
	}
	if len(entries["KOSPI_foreigner"]) != 1 {
		t.Errorf("fallback entries not used: %+v", entries["KOSPI_foreigner"])
	}
	if fallback.calls != len(contracts.Segments()) {
		t.Errorf("fallback calls = %d", fallback.calls)
	}
}

func TestFetchAllSegmentsFailsWhenBothDown(t *testing.T) {
	primary := &fakeSource{err: errors.New("portal down")}
	fallback := &fakeSource{err: errors.New("scrape blocked")}

	job := &DailyReportJob{
		primary:  primary,
		fallback: fallback,
		logger:   testJobLogger(),
	}

	if _, err := job.fetchAllSegments(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error when both sources fail")
	}
}

func TestCollectCodes(t *testing.T) {
	snapshots := []contracts.Snapshot{
		{Entries: map[string][]contracts.SnapshotEntry{
			"KOSPI_foreigner": {
				{Rank: 1, Code: "005930", Name: "삼성전자"},
				{Rank: 2, Code: "", Name: "코드없는종목"},
			},
		}},
		{Entries: map[string][]contracts.SnapshotEntry{
			"KOSDAQ_foreigner": {
				{Rank: 1, Code: "005930", Name: "삼성전자"},
				{Rank: 2, Code: "247540", Name: "에코프로비엠"},
			},
		}},
	}

	codes := collectCodes(snapshots)
	if len(codes) != 2 {
		t.Fatalf("codes = %v, want 2 unique", codes)
	}
}
