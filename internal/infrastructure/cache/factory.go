package cache

import (
	"fmt"

	"github.com/financeiro/backend/internal/application/reconciliation"
	"github.com/financeiro/backend/internal/domain/shared"
	"github.com/financeiro/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Factory builds the balance cache and idempotency store from configuration,
// choosing Redis when enabled and falling back to in-memory otherwise
type Factory struct {
	cfg      config.RedisConfig
	cacheCfg config.CacheConfig
	logger   *zap.Logger
}

// NewFactory creates a cache factory
func NewFactory(cfg config.RedisConfig, cacheCfg config.CacheConfig, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{cfg: cfg, cacheCfg: cacheCfg, logger: logger}
}

func (f *Factory) redisConfig() RedisConfig {
	return RedisConfig{
		Host:     f.cfg.Host,
		Port:     f.cfg.Port,
		Password: f.cfg.Password,
		DB:       f.cfg.DB,
	}
}

// BalanceCache returns the configured balance cache implementation
func (f *Factory) BalanceCache() (reconciliation.BalanceCache, error) {
	if !f.cfg.Enabled {
		f.logger.Info("using in-memory balance cache")
		return NewInMemoryBalanceCache(WithBalanceTTL(f.cacheCfg.BalanceTTL)), nil
	}
	cache, err := NewRedisBalanceCache(f.redisConfig(), f.cacheCfg.BalanceTTL, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis balance cache: %w", err)
	}
	f.logger.Info("using Redis balance cache")
	return cache, nil
}

// IdempotencyStore returns the configured idempotency store implementation.
// With Redis disabled, replay protection only covers this process: a retried
// request landing on another instance would re-execute.
func (f *Factory) IdempotencyStore() (shared.IdempotencyStore, error) {
	if !f.cfg.Enabled {
		f.logger.Warn("using in-memory idempotency store, replays are not shared across instances")
		return NewInMemoryIdempotencyStore(), nil
	}
	store, err := NewRedisIdempotencyStore(f.redisConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis idempotency store: %w", err)
	}
	f.logger.Info("using Redis idempotency store")
	return store, nil
}
