package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/flowrank/backend/internal/external/naver"
)

// Repository persists daily price bars used by the oracle lookbacks
// ⭐ SSOT: 가격 데이터 저장은 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new price repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save upserts a single price bar
func (r *Repository) Save(ctx context.Context, bar naver.PriceBar) error {
	query := `
		INSERT INTO data.daily_prices (stock_code, trade_date, open_price, high_price, low_price, close_price, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (stock_code, trade_date) DO UPDATE SET
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume
	`

	_, err := r.pool.Exec(ctx, query,
		bar.StockCode, bar.TradeDate, bar.OpenPrice, bar.HighPrice, bar.LowPrice, bar.ClosePrice, bar.Volume,
	)
	if err != nil {
		return fmt.Errorf("failed to save price bar: %w", err)
	}
	return nil
}

// SaveBatch upserts multiple price bars
func (r *Repository) SaveBatch(ctx context.Context, bars []naver.PriceBar) error {
	for _, bar := range bars {
		if err := r.Save(ctx, bar); err != nil {
			return err
		}
	}
	return nil
}

// LatestDate returns the most recent trade date stored for a stock, zero
// when the stock has no coverage yet
func (r *Repository) LatestDate(ctx context.Context, stockCode string) (time.Time, error) {
	var latest *time.Time
	err := r.pool.QueryRow(ctx,
		"SELECT MAX(trade_date) FROM data.daily_prices WHERE stock_code = $1", stockCode,
	).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query latest price date: %w", err)
	}
	if latest == nil {
		return time.Time{}, nil
	}
	return *latest, nil
}
