package currency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/books/backend/internal/domain/ledger"
	"github.com/books/backend/internal/domain/shared/valueobject"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CachedRateProvider decorates a RateProvider with a Redis read-through
// cache. Rates are stored as decimal strings so no precision is lost
// on the round trip. Cache failures degrade to the underlying provider.
type CachedRateProvider struct {
	inner     ledger.RateProvider
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
	logger    *zap.Logger
}

// NewCachedRateProvider creates a cached provider with the given TTL
func NewCachedRateProvider(inner ledger.RateProvider, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedRateProvider {
	return &CachedRateProvider{
		inner:     inner,
		client:    client,
		ttl:       ttl,
		keyPrefix: "fx:rate:",
		logger:    logger,
	}
}

// Rate returns the exchange rate for a currency pair, consulting the
// cache first
func (p *CachedRateProvider) Rate(ctx context.Context, from, to valueobject.Currency) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	key := p.keyPrefix + pairKey(from, to)
	cached, err := p.client.Get(ctx, key).Result()
	if err == nil {
		rate, parseErr := decimal.NewFromString(cached)
		if parseErr == nil {
			return rate, nil
		}
		p.logger.Warn("Dropping unparseable cached rate",
			zap.String("key", key),
			zap.String("value", cached))
		p.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		p.logger.Warn("Rate cache read failed", zap.String("key", key), zap.Error(err))
	}

	rate, err := p.inner.Rate(ctx, from, to)
	if err != nil {
		return decimal.Zero, err
	}

	if cacheErr := p.client.Set(ctx, key, rate.String(), p.ttl).Err(); cacheErr != nil {
		p.logger.Warn("Rate cache write failed", zap.String("key", key), zap.Error(cacheErr))
	}
	return rate, nil
}

// Invalidate drops a cached pair, both directions
func (p *CachedRateProvider) Invalidate(ctx context.Context, from, to valueobject.Currency) error {
	keys := []string{p.keyPrefix + pairKey(from, to), p.keyPrefix + pairKey(to, from)}
	if err := p.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate rate cache: %w", err)
	}
	return nil
}

var _ ledger.RateProvider = (*CachedRateProvider)(nil)
