package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/flowrank/backend/internal/contracts"
	"github.com/wonny/flowrank/backend/internal/report"
	"github.com/wonny/flowrank/backend/pkg/config"
	"github.com/wonny/flowrank/backend/pkg/logger"
)

// ReportNotifier receives report completion events. Satisfied by the API
// event hub; nil disables notification.
type ReportNotifier interface {
	NotifyReportCompleted(result *contracts.ReportResult)
}

// DailyReportJob fetches the day's net-buy rankings and updates the report
// ⭐ SSOT: 일일 리포트 스케줄은 이 Job에서만
type DailyReportJob struct {
	engine   *report.Engine
	primary  contracts.MarketDataSource
	fallback contracts.MarketDataSource
	notifier ReportNotifier
	config   *config.Config
	logger   *logger.Logger
}

// NewDailyReportJob creates a new daily report job
func NewDailyReportJob(
	engine *report.Engine,
	primary, fallback contracts.MarketDataSource,
	notifier ReportNotifier,
	cfg *config.Config,
	log *logger.Logger,
) *DailyReportJob {
	return &DailyReportJob{
		engine:   engine,
		primary:  primary,
		fallback: fallback,
		notifier: notifier,
		config:   cfg,
		logger:   log,
	}
}

// Name returns the job name
func (j *DailyReportJob) Name() string {
	return "daily_report"
}

// Schedule returns the cron schedule (매일 오후 6시, 장 마감 후 수급 확정 시각)
func (j *DailyReportJob) Schedule() string {
	return "0 0 18 * * 1-5"
}

// Run executes the daily report update for today
func (j *DailyReportJob) Run(ctx context.Context) error {
	date := time.Now().Truncate(24 * time.Hour)
	return j.RunForDate(ctx, date)
}

// RunForDate fetches rankings and updates the report for a specific date
func (j *DailyReportJob) RunForDate(ctx context.Context, date time.Time) error {
	j.logger.WithField("date", date.Format("2006-01-02")).Info("Starting daily report update")

	entries, err := j.fetchAllSegments(ctx, date)
	if err != nil {
		return fmt.Errorf("fetch rankings: %w", err)
	}

	result, err := j.engine.UpdateReport(ctx, date, entries)
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}

	if j.notifier != nil {
		j.notifier.NotifyReportCompleted(result)
	}

	j.logger.WithFields(map[string]interface{}{
		"date":     result.Date.Format("2006-01-02"),
		"segments": len(result.Segments),
		"warnings": result.Warnings,
	}).Info("Daily report update completed")

	return nil
}

// fetchAllSegments collects rankings for every segment, falling back to the
// secondary source per segment when the primary fails
func (j *DailyReportJob) fetchAllSegments(ctx context.Context, date time.Time) (map[string][]contracts.RankedEntry, error) {
	entries := make(map[string][]contracts.RankedEntry)

	for _, segment := range contracts.Segments() {
		ranked, err := j.primary.FetchNetBuyRanking(ctx, segment, date)
		if err != nil && j.fallback != nil {
			j.logger.WithError(err).WithField("segment", segment.Key()).
				Warn("Primary ranking source failed, trying fallback")
			ranked, err = j.fallback.FetchNetBuyRanking(ctx, segment, date)
		}
		if err != nil {
			return nil, fmt.Errorf("segment %s: %w", segment.Key(), err)
		}

		entries[segment.Key()] = ranked
	}

	return entries, nil
}
