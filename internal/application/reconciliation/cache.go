package reconciliation

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceCache is the advisory cache of settlement-account balances read
// during validation bursts. Implementations live in infrastructure/cache.
// A miss must never block anything: the validator falls through to the store.
type BalanceCache interface {
	// Get returns the cached balance if it is still inside the freshness
	// window
	Get(accountID uuid.UUID) (decimal.Decimal, bool)

	// Set stores a freshly read balance
	Set(accountID uuid.UUID, balance decimal.Decimal)

	// Invalidate drops the entry. Called synchronously after every
	// successful debit or credit, before the result is returned, so the
	// next validation sees fresh data.
	Invalidate(accountID uuid.UUID)
}
