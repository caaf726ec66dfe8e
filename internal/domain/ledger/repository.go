package ledger

import (
	"context"

	"github.com/financeiro/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PurchaseRepository persists the Purchase aggregate
type PurchaseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Purchase, error)
	// FindPayableBySupplier returns the supplier's OPEN and PARTIAL
	// purchases ordered oldest debt first
	FindPayableBySupplier(ctx context.Context, supplierID uuid.UUID) ([]*Purchase, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Purchase, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, purchase *Purchase) error
	// SaveWithLock saves the purchase conditioned on its previous version.
	// Returns shared.ErrConcurrencyConflict-coded error when another
	// transaction won the race.
	SaveWithLock(ctx context.Context, purchase *Purchase) error
}

// PaymentRepository persists Payment records
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]*Payment, error)
	// FindActiveByPurchase returns non-reversed payments only
	FindActiveByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]*Payment, error)
	Create(ctx context.Context, payment *Payment) error
	Update(ctx context.Context, payment *Payment) error
}

// AccountRepository persists the settlement account
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SettlementAccount, error)
	Save(ctx context.Context, account *SettlementAccount) error
	// SaveWithLock is the compare-and-set write for the balance: the update
	// is conditioned on the version the balance was read at
	SaveWithLock(ctx context.Context, account *SettlementAccount) error
}
