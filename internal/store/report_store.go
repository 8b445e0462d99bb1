package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/flowrank/backend/internal/contracts"
)

// ReportStore implements contracts.ReportStore on PostgreSQL
// ⭐ SSOT: 순위표 이력 저장/조회는 여기서만
type ReportStore struct {
	pool *pgxpool.Pool
}

// NewReportStore creates a new report store
func NewReportStore(pool *pgxpool.Pool) *ReportStore {
	return &ReportStore{pool: pool}
}

// ReadRecent returns up to maxCount snapshots dated strictly before the
// given date, ordered by date with the most recent last. The bound keeps a
// re-run from seeing its own date as history. The rendered document is not
// loaded here; history consumers only need the entry lists.
func (s *ReportStore) ReadRecent(ctx context.Context, before time.Time, maxCount int) ([]contracts.Snapshot, error) {
	dateQuery := `
		SELECT snapshot_date
		FROM report.snapshots
		WHERE snapshot_date < $1
		ORDER BY snapshot_date DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, dateQuery, before, maxCount)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// DESC 조회 결과를 뒤집어 최신이 마지막이 되도록
	snapshots := make([]contracts.Snapshot, 0, len(dates))
	for i := len(dates) - 1; i >= 0; i-- {
		snap, err := s.readSnapshot(ctx, dates[i])
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, nil
}

// readSnapshot loads all segment entries for one date
func (s *ReportStore) readSnapshot(ctx context.Context, date time.Time) (contracts.Snapshot, error) {
	query := `
		SELECT segment_key, rank, stock_code, stock_name, net_value
		FROM report.snapshot_entries
		WHERE snapshot_date = $1
		ORDER BY segment_key, rank
	`

	rows, err := s.pool.Query(ctx, query, date)
	if err != nil {
		return contracts.Snapshot{}, fmt.Errorf("failed to query snapshot entries: %w", err)
	}
	defer rows.Close()

	snap := contracts.Snapshot{
		Date:    date,
		Entries: make(map[string][]contracts.SnapshotEntry),
	}
	for rows.Next() {
		var segmentKey string
		var e contracts.SnapshotEntry
		if err := rows.Scan(&segmentKey, &e.Rank, &e.Code, &e.Name, &e.NetValue); err != nil {
			return contracts.Snapshot{}, err
		}
		snap.Entries[segmentKey] = append(snap.Entries[segmentKey], e)
	}

	return snap, rows.Err()
}

// AppendOrReplace commits a snapshot and its rendered document in one
// transaction. Re-running for an existing date deletes that date's rows
// first, so a rerun replaces rather than duplicates.
func (s *ReportStore) AppendOrReplace(ctx context.Context, snapshot contracts.Snapshot, rendered []byte) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "DELETE FROM report.snapshot_entries WHERE snapshot_date = $1", snapshot.Date)
	if err != nil {
		return fmt.Errorf("failed to delete old entries: %w", err)
	}

	entryQuery := `
		INSERT INTO report.snapshot_entries (
			snapshot_date, segment_key, rank, stock_code, stock_name, net_value
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, seg := range contracts.Segments() {
		for _, e := range snapshot.Entries[seg.Key()] {
			_, err := tx.Exec(ctx, entryQuery,
				snapshot.Date, seg.Key(), e.Rank, e.Code, e.Name, e.NetValue,
			)
			if err != nil {
				return fmt.Errorf("failed to insert entry: %w", err)
			}
		}
	}

	snapshotQuery := `
		INSERT INTO report.snapshots (snapshot_date, rendered, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (snapshot_date) DO UPDATE SET
			rendered = EXCLUDED.rendered,
			created_at = NOW()
	`

	_, err = tx.Exec(ctx, snapshotQuery, snapshot.Date, rendered)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetRendered returns the stored rendered document for a date
func (s *ReportStore) GetRendered(ctx context.Context, date time.Time) ([]byte, error) {
	var rendered []byte
	err := s.pool.QueryRow(ctx,
		"SELECT rendered FROM report.snapshots WHERE snapshot_date = $1", date,
	).Scan(&rendered)
	if err != nil {
		return nil, fmt.Errorf("failed to query rendered report: %w", err)
	}
	return rendered, nil
}

// ListDates returns all snapshot dates, most recent first
func (s *ReportStore) ListDates(ctx context.Context, limit int) ([]time.Time, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT snapshot_date FROM report.snapshots ORDER BY snapshot_date DESC LIMIT $1", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
