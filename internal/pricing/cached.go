package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/flowrank/backend/internal/contracts"
	"github.com/wonny/flowrank/backend/pkg/logger"
	"github.com/wonny/flowrank/backend/pkg/redis"
)

// 일별 데이터라 긴 TTL로 충분
const priceCacheTTL = 6 * time.Hour

// CachedOracle wraps a PriceOracle with a Redis cache. Cache misses and
// cache failures both fall through to the inner oracle.
type CachedOracle struct {
	inner contracts.PriceOracle
	cache *redis.Cache
	log   *logger.Logger
}

// NewCachedOracle creates a caching price oracle
func NewCachedOracle(inner contracts.PriceOracle, cache *redis.Cache, log *logger.Logger) *CachedOracle {
	return &CachedOracle{inner: inner, cache: cache, log: log}
}

// GetPriceInfo implements contracts.PriceOracle
func (o *CachedOracle) GetPriceInfo(ctx context.Context, code string, date time.Time) (*contracts.PriceInfo, error) {
	key := fmt.Sprintf("price:%s:%s", code, date.Format("2006-01-02"))

	var cached contracts.PriceInfo
	hit, err := o.cache.Get(ctx, key, &cached)
	if err != nil {
		o.log.WithError(err).Warn("price cache read failed")
	}
	if hit {
		return &cached, nil
	}

	info, err := o.inner.GetPriceInfo(ctx, code, date)
	if err != nil {
		return nil, err
	}

	if err := o.cache.Set(ctx, key, info, priceCacheTTL); err != nil {
		o.log.WithError(err).Warn("price cache write failed")
	}

	return info, nil
}
