package reconciliation

import (
	"context"

	"github.com/financeiro/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to the ledger repositories.
// Everything executed inside one scope commits or rolls back atomically; the
// orchestrator relies on this for its all-or-nothing guarantees.
type TransactionScope interface {
	// Execute runs fn within a store transaction. An error from fn rolls
	// the transaction back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the ledger repositories bound to the
// current transaction. All three share the same underlying transaction.
type TransactionalRepositories interface {
	Purchases() ledger.PurchaseRepository
	Payments() ledger.PaymentRepository
	Accounts() ledger.AccountRepository
}

// NoOpTransactionScope runs the function against plain repositories without
// a real transaction. Used in tests.
type NoOpTransactionScope struct {
	purchaseRepo ledger.PurchaseRepository
	paymentRepo  ledger.PaymentRepository
	accountRepo  ledger.AccountRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given
// repositories
func NewNoOpTransactionScope(
	purchaseRepo ledger.PurchaseRepository,
	paymentRepo ledger.PaymentRepository,
	accountRepo ledger.AccountRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		purchaseRepo: purchaseRepo,
		paymentRepo:  paymentRepo,
		accountRepo:  accountRepo,
	}
}

// Execute runs fn without transactional isolation
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Purchases returns the purchase repository
func (s *NoOpTransactionScope) Purchases() ledger.PurchaseRepository { return s.purchaseRepo }

// Payments returns the payment repository
func (s *NoOpTransactionScope) Payments() ledger.PaymentRepository { return s.paymentRepo }

// Accounts returns the account repository
func (s *NoOpTransactionScope) Accounts() ledger.AccountRepository { return s.accountRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
