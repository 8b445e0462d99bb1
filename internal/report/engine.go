package report

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/flowrank/backend/internal/contracts"
	"github.com/wonny/flowrank/backend/pkg/config"
	"github.com/wonny/flowrank/backend/pkg/logger"
)

// Engine is the ranking report orchestrator. For one report date it reads
// recent history, runs the rank-delta / streak / pairing / milestone
// analyses, renders the annotated output and commits the new snapshot.
// ⭐ SSOT: 순위표 업데이트는 이 엔진에서만
type Engine struct {
	store    contracts.ReportStore
	oracle   contracts.PriceOracle
	renderer contracts.Renderer
	logger   *logger.Logger
	cfg      config.ReportConfig
}

// NewEngine creates a ranking report engine
func NewEngine(
	store contracts.ReportStore,
	oracle contracts.PriceOracle,
	renderer contracts.Renderer,
	log *logger.Logger,
	cfg config.ReportConfig,
) *Engine {
	return &Engine{
		store:    store,
		oracle:   oracle,
		renderer: renderer,
		logger:   log,
		cfg:      cfg,
	}
}

// UpdateReport analyzes today's already-ranked entries against stored history
// and commits the resulting snapshot. Store failures abort the whole run;
// per-entity price failures degrade that entity's milestone to none and are
// counted in the result's Warnings.
func (e *Engine) UpdateReport(
	ctx context.Context,
	date time.Time,
	entriesBySegment map[string][]contracts.RankedEntry,
) (*contracts.ReportResult, error) {
	history, err := e.store.ReadRecent(ctx, date, e.cfg.HistoryDepth)
	if err != nil {
		return nil, fmt.Errorf("read snapshot history: %w", err)
	}

	e.logger.WithFields(map[string]interface{}{
		"date":    date.Format("2006-01-02"),
		"history": len(history),
	}).Info("Report update started")

	result := &contracts.ReportResult{Date: date}

	// Normalized today-name lists per segment, used by every analysis
	todayNames := make(map[string][]string)
	todayEntries := make(map[string][]contracts.RankedEntry)
	for _, seg := range contracts.Segments() {
		entries := entriesBySegment[seg.Key()]
		if len(entries) == 0 {
			e.logger.WithField("segment", seg.Key()).Warn("No entries for segment today")
			continue
		}
		if len(entries) > e.cfg.TopN {
			entries = entries[:e.cfg.TopN]
		}

		names := make([]string, len(entries))
		normalized := make([]contracts.RankedEntry, len(entries))
		for i, entry := range entries {
			entry.Name = NormalizeName(entry.Name, e.cfg.PairingSuffix)
			names[i] = entry.Name
			normalized[i] = entry
		}
		todayNames[seg.Key()] = names
		todayEntries[seg.Key()] = normalized
	}

	paired := PairedNames(todayNames)
	milestones, warnings := e.classifyMilestones(ctx, date, todayEntries)
	result.Warnings = warnings

	for _, seg := range contracts.Segments() {
		entries := todayEntries[seg.Key()]
		segReport := contracts.SegmentReport{Segment: seg}

		if len(entries) > 0 {
			names := todayNames[seg.Key()]
			historyView := e.segmentHistory(history, seg.Key())

			var prevRanks map[string]int
			if len(historyView) > 0 {
				prevRanks = PreviousRanks(historyView[0])
			}
			changes := RankChanges(prevRanks, names)
			priorStreaks := PriorStreaks(historyView)

			segReport.Entries = make([]contracts.AnnotatedEntry, len(entries))
			for i, entry := range entries {
				_, isPaired := paired[seg.Market][entry.Name]
				milestone, classified := milestones[entry.Code]
				if !classified {
					// 종목코드가 없으면 가격 조회 자체가 불가
					milestone = contracts.MilestoneNone
				}
				segReport.Entries[i] = contracts.AnnotatedEntry{
					Rank:      i + 1,
					Code:      entry.Code,
					Name:      entry.Name,
					NetValue:  entry.NetValue,
					Change:    changes[i],
					Streak:    priorStreaks[entry.Name] + 1,
					Paired:    isPaired,
					Milestone: milestone,
				}
			}
		}

		result.Segments = append(result.Segments, segReport)
	}

	rendered, err := e.renderer.Render(date, result.Segments)
	if err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	snapshot := e.buildSnapshot(date, todayEntries)
	if err := e.store.AppendOrReplace(ctx, snapshot, rendered); err != nil {
		return nil, fmt.Errorf("append snapshot: %w", err)
	}

	e.logger.WithFields(map[string]interface{}{
		"date":     date.Format("2006-01-02"),
		"segments": len(result.Segments),
		"warnings": result.Warnings,
	}).Info("Report update completed")

	return result, nil
}

// segmentHistory extracts normalized historical name lists for one segment,
// most recent first, bounded to the configured depth.
func (e *Engine) segmentHistory(history []contracts.Snapshot, segmentKey string) [][]string {
	views := make([][]string, 0, e.cfg.HistoryDepth)
	for i := len(history) - 1; i >= 0 && len(views) < e.cfg.HistoryDepth; i-- {
		names := history[i].Names(segmentKey)
		views = append(views, NormalizeNames(names, e.cfg.PairingSuffix))
	}
	return views
}

// classifyMilestones queries the price oracle once per distinct stock code
// across all segments and classifies each. Lookup failures degrade to none.
func (e *Engine) classifyMilestones(
	ctx context.Context,
	date time.Time,
	todayEntries map[string][]contracts.RankedEntry,
) (map[string]contracts.Milestone, int) {
	classifier := MilestoneClassifier{NearThreshold: e.cfg.NearThreshold}
	milestones := make(map[string]contracts.Milestone)
	warnings := 0

	// Deterministic lookup order: segment order, then rank order
	for _, seg := range contracts.Segments() {
		for _, entry := range todayEntries[seg.Key()] {
			if entry.Code == "" {
				continue
			}
			if _, done := milestones[entry.Code]; done {
				continue
			}

			info, err := e.oracle.GetPriceInfo(ctx, entry.Code, date)
			if err != nil {
				warnings++
				e.logger.WithError(err).WithFields(map[string]interface{}{
					"stock_code": entry.Code,
					"name":       entry.Name,
				}).Warn("Price lookup failed, milestone degraded to none")
				milestones[entry.Code] = contracts.MilestoneNone
				continue
			}

			milestones[entry.Code] = classifier.Classify(info)
		}
	}

	return milestones, warnings
}

// buildSnapshot converts today's normalized entries into the persisted form
func (e *Engine) buildSnapshot(date time.Time, todayEntries map[string][]contracts.RankedEntry) contracts.Snapshot {
	snapshot := contracts.Snapshot{
		Date:    date,
		Entries: make(map[string][]contracts.SnapshotEntry),
	}

	for _, seg := range contracts.Segments() {
		entries := todayEntries[seg.Key()]
		if len(entries) == 0 {
			continue
		}

		rows := make([]contracts.SnapshotEntry, len(entries))
		for i, entry := range entries {
			rows[i] = contracts.SnapshotEntry{
				Rank:     i + 1,
				Code:     entry.Code,
				Name:     entry.Name,
				NetValue: entry.NetValue,
			}
		}
		snapshot.Entries[seg.Key()] = rows
	}

	return snapshot
}
