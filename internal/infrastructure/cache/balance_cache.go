package cache

import (
	"sync"
	"time"

	"github.com/financeiro/backend/internal/application/reconciliation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultBalanceTTL bounds how stale a cached balance may get before
// validations fall through to the store again. Invalidation on write keeps
// the common path fresh; the TTL only covers writes this process never saw.
const DefaultBalanceTTL = 5 * time.Second

type balanceEntry struct {
	balance   decimal.Decimal
	expiresAt time.Time
}

// InMemoryBalanceCache is a TTL map of account balances for a single
// instance. Multi-instance deployments use the Redis variant so an
// invalidation on one instance is seen by all.
type InMemoryBalanceCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]balanceEntry
	ttl     time.Duration
	now     func() time.Time
}

// BalanceCacheOption is a functional option for the in-memory cache
type BalanceCacheOption func(*InMemoryBalanceCache)

// WithBalanceTTL overrides the entry TTL
func WithBalanceTTL(ttl time.Duration) BalanceCacheOption {
	return func(c *InMemoryBalanceCache) {
		c.ttl = ttl
	}
}

// WithClock overrides the time source, used in tests
func WithClock(now func() time.Time) BalanceCacheOption {
	return func(c *InMemoryBalanceCache) {
		c.now = now
	}
}

// NewInMemoryBalanceCache creates an in-memory balance cache
func NewInMemoryBalanceCache(opts ...BalanceCacheOption) *InMemoryBalanceCache {
	c := &InMemoryBalanceCache{
		entries: make(map[uuid.UUID]balanceEntry),
		ttl:     DefaultBalanceTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached balance if present and not expired. Expired
// entries are dropped lazily on read.
func (c *InMemoryBalanceCache) Get(accountID uuid.UUID) (decimal.Decimal, bool) {
	c.mu.RLock()
	e, ok := c.entries[accountID]
	c.mu.RUnlock()
	if !ok {
		return decimal.Zero, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a Set may have refreshed it.
		if e2, ok := c.entries[accountID]; ok && c.now().After(e2.expiresAt) {
			delete(c.entries, accountID)
		}
		c.mu.Unlock()
		return decimal.Zero, false
	}
	return e.balance, true
}

// Set stores the balance with the configured TTL
func (c *InMemoryBalanceCache) Set(accountID uuid.UUID, balance decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[accountID] = balanceEntry{
		balance:   balance,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Invalidate drops the account's entry
func (c *InMemoryBalanceCache) Invalidate(accountID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, accountID)
}

// Size returns the number of entries, including not-yet-collected expired
// ones (for monitoring)
func (c *InMemoryBalanceCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemoryBalanceCache implements reconciliation.BalanceCache
var _ reconciliation.BalanceCache = (*InMemoryBalanceCache)(nil)
