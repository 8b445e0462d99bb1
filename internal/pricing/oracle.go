package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/flowrank/backend/internal/contracts"
)

// Oracle implements contracts.PriceOracle on daily price history
// ⭐ SSOT: 신고가 판정용 가격 조회는 여기서만
type Oracle struct {
	pool *pgxpool.Pool
}

// NewOracle creates a new price oracle
func NewOracle(pool *pgxpool.Pool) *Oracle {
	return &Oracle{pool: pool}
}

// GetPriceInfo returns the close at date plus trailing high-water marks.
// Highs include the requested date itself, so a stock closing at its
// 52-week high reports High52W equal to that day's high.
func (o *Oracle) GetPriceInfo(ctx context.Context, code string, date time.Time) (*contracts.PriceInfo, error) {
	query := `
		SELECT
			dp.close_price,
			(SELECT MAX(high_price) FROM data.daily_prices
			 WHERE stock_code = $1 AND trade_date BETWEEN $2::date - INTERVAL '365 days' AND $2),
			(SELECT MAX(high_price) FROM data.daily_prices
			 WHERE stock_code = $1 AND trade_date BETWEEN $2::date - INTERVAL '10 years' AND $2)
		FROM data.daily_prices dp
		WHERE dp.stock_code = $1 AND dp.trade_date = $2
	`

	var closePrice, high52w, allTimeHigh int64
	err := o.pool.QueryRow(ctx, query, code, date).Scan(&closePrice, &high52w, &allTimeHigh)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s @ %s", contracts.ErrPriceNotFound, code, date.Format("2006-01-02"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query price info: %w", err)
	}

	// 가격은 원 단위 정수로 저장됨
	return &contracts.PriceInfo{
		Code:        code,
		Close:       float64(closePrice),
		High52W:     float64(high52w),
		AllTimeHigh: float64(allTimeHigh),
	}, nil
}
