package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/financeiro/backend/internal/application/reconciliation"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RedisBalanceCache shares cached balances across instances so that an
// invalidation after a commit on one instance is observed by all. The cache
// is advisory: Redis failures degrade to store reads, never to errors.
type RedisBalanceCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisBalanceCache creates a Redis-backed balance cache
func NewRedisBalanceCache(cfg RedisConfig, ttl time.Duration, logger *zap.Logger) (*RedisBalanceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisBalanceCacheWithClient(client, "", ttl, logger), nil
}

// NewRedisBalanceCacheWithClient creates a cache around an existing client,
// useful for tests or when sharing a client across components
func NewRedisBalanceCacheWithClient(client *redis.Client, keyPrefix string, ttl time.Duration, logger *zap.Logger) *RedisBalanceCache {
	if keyPrefix == "" {
		keyPrefix = "ledger:balance:"
	}
	if ttl <= 0 {
		ttl = DefaultBalanceTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisBalanceCache{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
		timeout:   2 * time.Second,
		logger:    logger,
	}
}

func (c *RedisBalanceCache) key(accountID uuid.UUID) string {
	return c.keyPrefix + accountID.String()
}

// Get returns the cached balance for the account, treating any Redis
// failure as a miss
func (c *RedisBalanceCache) Get(accountID uuid.UUID) (decimal.Decimal, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	raw, err := c.client.Get(ctx, c.key(accountID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("balance cache read failed", zap.Error(err))
		}
		return decimal.Zero, false
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		c.logger.Warn("balance cache holds unparseable value",
			zap.String("account_id", accountID.String()),
			zap.String("value", raw),
		)
		return decimal.Zero, false
	}
	return balance, true
}

// Set stores the balance with the configured TTL, best effort
func (c *RedisBalanceCache) Set(accountID uuid.UUID, balance decimal.Decimal) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.client.Set(ctx, c.key(accountID), balance.String(), c.ttl).Err(); err != nil {
		c.logger.Warn("balance cache write failed", zap.Error(err))
	}
}

// Invalidate drops the account's entry. A failed delete is logged loudly:
// it leaves a stale balance visible until the TTL expires.
func (c *RedisBalanceCache) Invalidate(accountID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.client.Del(ctx, c.key(accountID)).Err(); err != nil {
		c.logger.Error("balance cache invalidation failed, stale reads possible until TTL",
			zap.String("account_id", accountID.String()),
			zap.Error(err),
		)
	}
}

// Close closes the Redis client
func (c *RedisBalanceCache) Close() error {
	return c.client.Close()
}

// Ensure RedisBalanceCache implements reconciliation.BalanceCache
var _ reconciliation.BalanceCache = (*RedisBalanceCache)(nil)
