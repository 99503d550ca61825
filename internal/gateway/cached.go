package gateway

import (
	"context"

	"github.com/wonny/flipwatch/internal/contracts"
	"github.com/wonny/flipwatch/pkg/logger"
	"github.com/wonny/flipwatch/pkg/redis"
)

// CachedMarket serves repeated runs for the same session from Redis.
// Errors and empty results are never cached, so a not-yet-published session is re-fetched.
type CachedMarket struct {
	next   contracts.MarketDataGateway
	cache  *redis.Cache
	source string
	logger *logger.Logger
}

var _ contracts.MarketDataGateway = (*CachedMarket)(nil)

// NewCachedMarket wraps next. A disabled cache passes every call through.
func NewCachedMarket(next contracts.MarketDataGateway, cache *redis.Cache, source string, log *logger.Logger) *CachedMarket {
	return &CachedMarket{
		next:   next,
		cache:  cache,
		source: source,
		logger: log.WithModule("gateway"),
	}
}

// FetchMarket returns cached rows or delegates
func (g *CachedMarket) FetchMarket(ctx context.Context, date contracts.SessionDate) ([]contracts.MarketRow, error) {
	key := redis.MarketRowsKey(g.source, date.String())

	var cached []contracts.MarketRow
	if hit, err := g.cache.Get(ctx, key, &cached); err != nil {
		g.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
	} else if hit && len(cached) > 0 {
		g.logger.WithField("key", key).Debug("Market cache hit")
		return cached, nil
	}

	rows, err := g.next.FetchMarket(ctx, date)
	if err != nil || len(rows) == 0 {
		return rows, err
	}

	if err := g.cache.Set(ctx, key, rows, redis.TTLDaily); err != nil {
		g.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
	return rows, nil
}

// CachedBrokerFlow is the broker-flow counterpart of CachedMarket
type CachedBrokerFlow struct {
	next   contracts.BrokerFlowGateway
	cache  *redis.Cache
	logger *logger.Logger
}

var _ contracts.BrokerFlowGateway = (*CachedBrokerFlow)(nil)

// NewCachedBrokerFlow wraps next
func NewCachedBrokerFlow(next contracts.BrokerFlowGateway, cache *redis.Cache, log *logger.Logger) *CachedBrokerFlow {
	return &CachedBrokerFlow{
		next:   next,
		cache:  cache,
		logger: log.WithModule("gateway"),
	}
}

// FetchBrokerFlow returns cached rows or delegates
func (g *CachedBrokerFlow) FetchBrokerFlow(ctx context.Context, securityID string, date contracts.SessionDate) ([]contracts.BrokerFlowRow, error) {
	key := redis.BrokerFlowKey(securityID, date.String())

	var cached []contracts.BrokerFlowRow
	if hit, err := g.cache.Get(ctx, key, &cached); err != nil {
		g.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
	} else if hit && len(cached) > 0 {
		return cached, nil
	}

	rows, err := g.next.FetchBrokerFlow(ctx, securityID, date)
	if err != nil || len(rows) == 0 {
		return rows, err
	}

	if err := g.cache.Set(ctx, key, rows, redis.TTLDaily); err != nil {
		g.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
	return rows, nil
}
