package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/flowrank/backend/internal/contracts"
	"github.com/wonny/flowrank/backend/internal/external/naver"
	"github.com/wonny/flowrank/backend/internal/pricing"
	"github.com/wonny/flowrank/backend/pkg/logger"
)

// 신규 종목 최초 백필 범위. 역대 신고가 판정은 10년 범위를 보지만
// 차트 API가 안정적으로 주는 범위 내에서 수집한다.
const initialBackfillYears = 10

// PriceBackfillJob keeps daily price coverage fresh for every stock that
// appears in recent snapshots, so milestone lookbacks have data to work with
// ⭐ SSOT: 가격 백필 스케줄은 이 Job에서만
type PriceBackfillJob struct {
	store   contracts.ReportStore
	fetcher *naver.Client
	repo    *pricing.Repository
	logger  *logger.Logger
}

// NewPriceBackfillJob creates a new price backfill job
func NewPriceBackfillJob(store contracts.ReportStore, fetcher *naver.Client, repo *pricing.Repository, log *logger.Logger) *PriceBackfillJob {
	return &PriceBackfillJob{
		store:   store,
		fetcher: fetcher,
		repo:    repo,
		logger:  log,
	}
}

// Name returns the job name
func (j *PriceBackfillJob) Name() string {
	return "price_backfill"
}

// Schedule returns the cron schedule (매일 오후 5시, 리포트 갱신 전에 가격 확보)
func (j *PriceBackfillJob) Schedule() string {
	return "0 0 17 * * 1-5"
}

// Run backfills prices for all stocks seen in recent snapshots
func (j *PriceBackfillJob) Run(ctx context.Context) error {
	// 내일을 상한으로 잡아 오늘 스냅샷까지 포함
	tomorrow := time.Now().AddDate(0, 0, 1)
	snapshots, err := j.store.ReadRecent(ctx, tomorrow, 5)
	if err != nil {
		return fmt.Errorf("read recent snapshots: %w", err)
	}

	codes := collectCodes(snapshots)
	if len(codes) == 0 {
		j.logger.Info("No snapshot stocks to backfill")
		return nil
	}

	j.logger.WithField("count", len(codes)).Info("Starting price backfill")

	now := time.Now()
	failed := 0
	for _, code := range codes {
		if err := j.backfillStock(ctx, code, now); err != nil {
			j.logger.WithError(err).WithField("stock_code", code).Warn("Price backfill failed for stock")
			failed++
		}
	}

	if failed == len(codes) {
		return fmt.Errorf("price backfill failed for all %d stocks", failed)
	}

	j.logger.WithFields(map[string]interface{}{
		"total":  len(codes),
		"failed": failed,
	}).Info("Price backfill completed")
	return nil
}

// backfillStock fetches bars from the last stored date (or the full
// lookback window for new stocks) through today
func (j *PriceBackfillJob) backfillStock(ctx context.Context, code string, now time.Time) error {
	latest, err := j.repo.LatestDate(ctx, code)
	if err != nil {
		return err
	}

	from := now.AddDate(-initialBackfillYears, 0, 0)
	if !latest.IsZero() {
		from = latest.AddDate(0, 0, 1)
	}
	if !from.Before(now.AddDate(0, 0, 1)) {
		return nil // 이미 최신
	}

	bars, err := j.fetcher.FetchDailyPrices(ctx, code, from, now)
	if err != nil {
		return err
	}

	return j.repo.SaveBatch(ctx, bars)
}

// collectCodes gathers unique stock codes across snapshots, skipping
// entries without a code
func collectCodes(snapshots []contracts.Snapshot) []string {
	seen := make(map[string]struct{})
	var codes []string

	for _, snap := range snapshots {
		for _, entries := range snap.Entries {
			for _, e := range entries {
				if e.Code == "" {
					continue
				}
				if _, ok := seen[e.Code]; ok {
					continue
				}
				seen[e.Code] = struct{}{}
				codes = append(codes, e.Code)
			}
		}
	}

	return codes
}
