package persistence

import (
	"context"

	"github.com/financeiro/backend/internal/application/reconciliation"
	"github.com/financeiro/backend/internal/domain/ledger"
	"gorm.io/gorm"
)

// GormTransactionScope implements reconciliation.TransactionScope on top of
// a GORM database transaction
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn inside a single database transaction. GORM commits when
// fn returns nil and rolls back otherwise.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos reconciliation.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories binds the ledger repositories to one
// transaction handle
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Purchases() ledger.PurchaseRepository {
	return NewGormPurchaseRepository(r.tx)
}

func (r *gormTransactionalRepositories) Payments() ledger.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormTransactionalRepositories) Accounts() ledger.AccountRepository {
	return NewGormAccountRepository(r.tx)
}

var _ reconciliation.TransactionScope = (*GormTransactionScope)(nil)
var _ reconciliation.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
