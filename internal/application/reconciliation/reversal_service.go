package reconciliation

import (
	"context"
	"time"

	"github.com/financeiro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReversalService undoes a purchase's payments: every active payment is
// marked reversed, the settlement account is credited back, and the
// purchase returns to OPEN with its full amount outstanding. Payments are
// never hard-deleted.
type ReversalService struct {
	scope        TransactionScope
	cache        BalanceCache
	maxAttempts  int
	storeTimeout time.Duration
	logger       *zap.Logger
}

// ReversalOption is a functional option for the ReversalService
type ReversalOption func(*ReversalService)

// WithReversalMaxAttempts overrides the retry budget on lock conflicts
func WithReversalMaxAttempts(n int) ReversalOption {
	return func(s *ReversalService) {
		s.maxAttempts = n
	}
}

// WithReversalStoreTimeout overrides the per-transaction store timeout
func WithReversalStoreTimeout(d time.Duration) ReversalOption {
	return func(s *ReversalService) {
		s.storeTimeout = d
	}
}

// WithReversalLogger sets the logger
func WithReversalLogger(logger *zap.Logger) ReversalOption {
	return func(s *ReversalService) {
		s.logger = logger
	}
}

// NewReversalService creates a ReversalService
func NewReversalService(scope TransactionScope, cache BalanceCache, opts ...ReversalOption) *ReversalService {
	s := &ReversalService{
		scope:        scope,
		cache:        cache,
		maxAttempts:  DefaultMaxAttempts,
		storeTimeout: DefaultStoreTimeout,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reverse undoes all active payments for the purchase in one transaction.
// A purchase with nothing to reverse is a user error (NO_ACTIVE_PAYMENTS),
// surfaced clearly rather than silently succeeding.
func (s *ReversalService) Reverse(ctx context.Context, purchaseID, actorID uuid.UUID) (*ReversalResult, error) {
	if actorID == uuid.Nil {
		return nil, shared.ErrUnauthenticated
	}

	var result *ReversalResult
	err := runWithRetry(ctx, s.logger, "reverse_payments", s.maxAttempts, func() error {
		txCtx := ctx
		if s.storeTimeout > 0 {
			var cancel context.CancelFunc
			txCtx, cancel = context.WithTimeout(ctx, s.storeTimeout)
			defer cancel()
		}

		return mapStoreError(s.scope.Execute(txCtx, func(repos TransactionalRepositories) error {
			purchase, err := repos.Purchases().FindByID(txCtx, purchaseID)
			if err != nil {
				return mapStoreError(err)
			}
			payments, err := repos.Payments().FindActiveByPurchase(txCtx, purchaseID)
			if err != nil {
				return mapStoreError(err)
			}

			reversed, err := purchase.ReversePayments(payments)
			if err != nil {
				return err
			}

			// Payments may have been debited from more than one account
			// over the purchase's life; credit each one back exactly.
			perAccount := make(map[uuid.UUID]decimal.Decimal)
			order := make([]uuid.UUID, 0, 1)
			for _, pm := range payments {
				if _, seen := perAccount[pm.AccountID]; !seen {
					order = append(order, pm.AccountID)
				}
				perAccount[pm.AccountID] = perAccount[pm.AccountID].Add(pm.Amount)
			}

			credits := make([]AccountCredit, 0, len(order))
			for _, accountID := range order {
				account, err := repos.Accounts().FindByID(txCtx, accountID)
				if err != nil {
					return mapStoreError(err)
				}
				if err := account.Credit(perAccount[accountID]); err != nil {
					return err
				}
				if err := repos.Accounts().SaveWithLock(txCtx, account); err != nil {
					return mapStoreError(err)
				}
				credits = append(credits, AccountCredit{
					AccountID:    accountID,
					Amount:       perAccount[accountID],
					BalanceAfter: account.CurrentBalance,
				})
			}

			if err := repos.Purchases().SaveWithLock(txCtx, purchase); err != nil {
				return mapStoreError(err)
			}
			for _, pm := range payments {
				if err := repos.Payments().Update(txCtx, pm); err != nil {
					return mapStoreError(err)
				}
			}

			result = &ReversalResult{
				PurchaseID:       purchase.ID,
				AmountReversed:   reversed,
				PaymentsReversed: len(payments),
				Credits:          credits,
			}
			return nil
		}))
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		for _, credit := range result.Credits {
			s.cache.Invalidate(credit.AccountID)
		}
	}

	s.logger.Info("payments reversed",
		zap.String("purchase_id", purchaseID.String()),
		zap.Int("payments", result.PaymentsReversed),
		zap.String("amount", result.AmountReversed.StringFixed(2)),
	)

	return result, nil
}
