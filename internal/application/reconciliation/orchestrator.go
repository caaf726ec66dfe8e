package reconciliation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/financeiro/backend/internal/domain/ledger"
	"github.com/financeiro/backend/internal/domain/partner"
	"github.com/financeiro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultStoreTimeout bounds every transactional unit against the store.
// A timeout during commit is an unknown outcome, resolved by re-reading
// committed state, never assumed failed.
const DefaultStoreTimeout = 5 * time.Second

// PaymentOrchestrator drives a payment attempt through its states:
// validate, debit account, record payment, update purchase, commit; on
// failure the whole transactional unit rolls back. All serialization is
// delegated to the store's optimistic locking; no in-memory lock is held
// across store I/O.
type PaymentOrchestrator struct {
	scope       TransactionScope
	purchases   ledger.PurchaseRepository
	payments    ledger.PaymentRepository
	accounts    ledger.AccountRepository
	suppliers   partner.SupplierRepository
	validator   *BalanceValidator
	cache       BalanceCache
	idempotency shared.IdempotencyStore

	idemTTL      time.Duration
	maxAttempts  int
	storeTimeout time.Duration
	logger       *zap.Logger
}

// OrchestratorOption is a functional option for the orchestrator
type OrchestratorOption func(*PaymentOrchestrator)

// WithMaxAttempts overrides the retry budget for optimistic-lock conflicts
func WithMaxAttempts(n int) OrchestratorOption {
	return func(o *PaymentOrchestrator) {
		o.maxAttempts = n
	}
}

// WithStoreTimeout overrides the per-transaction store timeout. Zero
// disables the timeout.
func WithStoreTimeout(d time.Duration) OrchestratorOption {
	return func(o *PaymentOrchestrator) {
		o.storeTimeout = d
	}
}

// WithIdempotencyTTL overrides how long committed results stay replayable
func WithIdempotencyTTL(d time.Duration) OrchestratorOption {
	return func(o *PaymentOrchestrator) {
		o.idemTTL = d
	}
}

// WithOrchestratorLogger sets the logger
func WithOrchestratorLogger(logger *zap.Logger) OrchestratorOption {
	return func(o *PaymentOrchestrator) {
		o.logger = logger
	}
}

// NewPaymentOrchestrator creates a PaymentOrchestrator
func NewPaymentOrchestrator(
	scope TransactionScope,
	purchases ledger.PurchaseRepository,
	payments ledger.PaymentRepository,
	accounts ledger.AccountRepository,
	suppliers partner.SupplierRepository,
	validator *BalanceValidator,
	cache BalanceCache,
	idempotency shared.IdempotencyStore,
	opts ...OrchestratorOption,
) *PaymentOrchestrator {
	o := &PaymentOrchestrator{
		scope:        scope,
		purchases:    purchases,
		payments:     payments,
		accounts:     accounts,
		suppliers:    suppliers,
		validator:    validator,
		cache:        cache,
		idempotency:  idempotency,
		idemTTL:      shared.DefaultIdempotencyConfig().TTL,
		maxAttempts:  DefaultMaxAttempts,
		storeTimeout: DefaultStoreTimeout,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// PayTotal settles a purchase's entire open balance from the settlement
// account
func (o *PaymentOrchestrator) PayTotal(ctx context.Context, purchaseID, accountID, actorID uuid.UUID, idemKey string) (*PaymentResult, error) {
	if actorID == uuid.Nil {
		return nil, shared.ErrUnauthenticated
	}
	var replayed PaymentResult
	if hit, err := o.acquireIdemKey(ctx, idemKey, &replayed); err != nil {
		return nil, err
	} else if hit {
		return &replayed, nil
	}

	result, err := o.payTotal(ctx, purchaseID, accountID, actorID)
	o.finishIdemKey(ctx, idemKey, result, err)
	return result, err
}

func (o *PaymentOrchestrator) payTotal(ctx context.Context, purchaseID, accountID, actorID uuid.UUID) (*PaymentResult, error) {
	// Advisory pre-check for a user-visible fast failure. The balance is
	// re-checked atomically inside the transaction.
	purchase, err := o.purchases.FindByID(ctx, purchaseID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if !purchase.Status.CanApplyPayment() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot pay purchase in %s status", purchase.Status))
	}
	if check, err := o.validator.Check(ctx, accountID, purchase.OpenAmount); err != nil {
		return nil, err
	} else if !check.Sufficient {
		return nil, insufficientBalance(check.Requested, check.Available)
	}

	return o.paySingle(ctx, "pay_total", purchaseID, accountID, actorID, "",
		func(p *ledger.Purchase) decimal.Decimal { return p.OpenAmount })
}

// PayPartial applies a caller-supplied amount against a purchase. The
// amount is validated against the purchase's current open balance inside
// the transaction, not the possibly stale value the UI displayed.
func (o *PaymentOrchestrator) PayPartial(ctx context.Context, purchaseID, accountID uuid.UUID, amount decimal.Decimal, actorID uuid.UUID, note, idemKey string) (*PaymentResult, error) {
	if actorID == uuid.Nil {
		return nil, shared.ErrUnauthenticated
	}
	amount = amount.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	var replayed PaymentResult
	if hit, err := o.acquireIdemKey(ctx, idemKey, &replayed); err != nil {
		return nil, err
	} else if hit {
		return &replayed, nil
	}

	result, err := o.payPartial(ctx, purchaseID, accountID, amount, actorID, note)
	o.finishIdemKey(ctx, idemKey, result, err)
	return result, err
}

func (o *PaymentOrchestrator) payPartial(ctx context.Context, purchaseID, accountID uuid.UUID, amount decimal.Decimal, actorID uuid.UUID, note string) (*PaymentResult, error) {
	if check, err := o.validator.Check(ctx, accountID, amount); err != nil {
		return nil, err
	} else if !check.Sufficient {
		return nil, insufficientBalance(check.Requested, check.Available)
	}

	return o.paySingle(ctx, "pay_partial", purchaseID, accountID, actorID, note,
		func(*ledger.Purchase) decimal.Decimal { return amount })
}

// PayAllForSupplier pays every OPEN/PARTIAL purchase of the supplier,
// oldest debt first, in one transaction. If any single application fails
// the whole transaction aborts: no purchase is marked paid and no debit
// occurs. Partial success would leave the account debited for something
// other than what the caller confirmed.
func (o *PaymentOrchestrator) PayAllForSupplier(ctx context.Context, supplierID, accountID, actorID uuid.UUID, idemKey string) (*SupplierPaymentResult, error) {
	if actorID == uuid.Nil {
		return nil, shared.ErrUnauthenticated
	}
	var replayed SupplierPaymentResult
	if hit, err := o.acquireIdemKey(ctx, idemKey, &replayed); err != nil {
		return nil, err
	} else if hit {
		return &replayed, nil
	}

	result, err := o.payAllForSupplier(ctx, supplierID, accountID, actorID)
	o.finishIdemKey(ctx, idemKey, result, err)
	return result, err
}

func (o *PaymentOrchestrator) payAllForSupplier(ctx context.Context, supplierID, accountID, actorID uuid.UUID) (*SupplierPaymentResult, error) {
	if _, err := o.suppliers.FindByID(ctx, supplierID); err != nil {
		return nil, mapStoreError(err)
	}

	open, err := o.purchases.FindPayableBySupplier(ctx, supplierID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if len(open) == 0 {
		return nil, shared.NewDomainError("NO_OPEN_PURCHASES", "Supplier has no open purchases to pay")
	}
	required := decimal.Zero
	for _, p := range open {
		required = required.Add(p.OpenAmount)
	}
	if check, err := o.validator.Check(ctx, accountID, required); err != nil {
		return nil, err
	} else if !check.Sufficient {
		return nil, insufficientBalance(check.Requested, check.Available)
	}

	var result *SupplierPaymentResult
	err = runWithRetry(ctx, o.logger, "pay_all_for_supplier", o.maxAttempts, func() error {
		txCtx, cancel := o.withStoreTimeout(ctx)
		defer cancel()

		return mapStoreError(o.scope.Execute(txCtx, func(repos TransactionalRepositories) error {
			account, err := repos.Accounts().FindByID(txCtx, accountID)
			if err != nil {
				return mapStoreError(err)
			}
			purchases, err := repos.Purchases().FindPayableBySupplier(txCtx, supplierID)
			if err != nil {
				return mapStoreError(err)
			}
			if len(purchases) == 0 {
				return shared.NewDomainError("NO_OPEN_PURCHASES", "Supplier has no open purchases to pay")
			}

			total := decimal.Zero
			for _, p := range purchases {
				total = total.Add(p.OpenAmount)
			}
			if err := account.Debit(total); err != nil {
				return err
			}

			results := make([]PaymentResult, 0, len(purchases))
			for _, p := range purchases {
				payment, err := p.ApplyPayment(accountID, p.OpenAmount, actorID, "")
				if err != nil {
					return err
				}
				if err := repos.Purchases().SaveWithLock(txCtx, p); err != nil {
					return mapStoreError(err)
				}
				if err := repos.Payments().Create(txCtx, payment); err != nil {
					return mapStoreError(err)
				}
				results = append(results, PaymentResult{
					PaymentID:           payment.ID,
					PurchaseID:          p.ID,
					AmountPaid:          payment.Amount,
					OpenRemaining:       p.OpenAmount,
					StatusAfter:         p.Status,
					AccountBalanceAfter: account.CurrentBalance,
				})
			}

			if err := repos.Accounts().SaveWithLock(txCtx, account); err != nil {
				return mapStoreError(err)
			}

			result = &SupplierPaymentResult{
				SupplierID:          supplierID,
				Payments:            results,
				TotalPaid:           total,
				AccountBalanceAfter: account.CurrentBalance,
			}
			return nil
		}))
	})
	if err != nil {
		return nil, err
	}

	o.invalidate(accountID)

	o.logger.Info("supplier purchases settled",
		zap.String("supplier_id", supplierID.String()),
		zap.Int("purchases", len(result.Payments)),
		zap.String("total_paid", result.TotalPaid.StringFixed(2)),
	)

	return result, nil
}

// paySingle runs the shared single-purchase payment cycle. amountFor is
// evaluated against the freshly loaded purchase inside the transaction.
func (o *PaymentOrchestrator) paySingle(ctx context.Context, op string, purchaseID, accountID, actorID uuid.UUID, note string, amountFor func(*ledger.Purchase) decimal.Decimal) (*PaymentResult, error) {
	var (
		result        *PaymentResult
		lastPaymentID uuid.UUID
	)

	err := runWithRetry(ctx, o.logger, op, o.maxAttempts, func() error {
		txCtx, cancel := o.withStoreTimeout(ctx)
		defer cancel()

		return mapStoreError(o.scope.Execute(txCtx, func(repos TransactionalRepositories) error {
			purchase, err := repos.Purchases().FindByID(txCtx, purchaseID)
			if err != nil {
				return mapStoreError(err)
			}
			if !purchase.Status.CanApplyPayment() {
				return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot pay purchase in %s status", purchase.Status))
			}
			account, err := repos.Accounts().FindByID(txCtx, accountID)
			if err != nil {
				return mapStoreError(err)
			}

			amount := amountFor(purchase)
			if err := account.Debit(amount); err != nil {
				return err
			}
			payment, err := purchase.ApplyPayment(accountID, amount, actorID, note)
			if err != nil {
				return err
			}
			lastPaymentID = payment.ID

			if err := repos.Purchases().SaveWithLock(txCtx, purchase); err != nil {
				return mapStoreError(err)
			}
			if err := repos.Payments().Create(txCtx, payment); err != nil {
				return mapStoreError(err)
			}
			if err := repos.Accounts().SaveWithLock(txCtx, account); err != nil {
				return mapStoreError(err)
			}

			result = &PaymentResult{
				PaymentID:           payment.ID,
				PurchaseID:          purchase.ID,
				AmountPaid:          payment.Amount,
				OpenRemaining:       purchase.OpenAmount,
				StatusAfter:         purchase.Status,
				AccountBalanceAfter: account.CurrentBalance,
			}
			return nil
		}))
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			if resolved, ok := o.resolveUnknownOutcome(ctx, lastPaymentID, purchaseID, accountID); ok {
				o.invalidate(accountID)
				return resolved, nil
			}
		}
		return nil, err
	}

	o.invalidate(accountID)

	o.logger.Info("payment committed",
		zap.String("operation", op),
		zap.String("purchase_id", purchaseID.String()),
		zap.String("payment_id", result.PaymentID.String()),
		zap.String("amount", result.AmountPaid.StringFixed(2)),
	)

	return result, nil
}

// resolveUnknownOutcome handles a store timeout during commit. The debit
// may have committed despite the lost response, so the committed state is
// re-read: if the payment record exists the attempt succeeded.
func (o *PaymentOrchestrator) resolveUnknownOutcome(ctx context.Context, paymentID, purchaseID, accountID uuid.UUID) (*PaymentResult, bool) {
	if paymentID == uuid.Nil {
		return nil, false
	}

	readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultStoreTimeout)
	defer cancel()

	payment, err := o.payments.FindByID(readCtx, paymentID)
	if err != nil {
		return nil, false
	}
	purchase, err := o.purchases.FindByID(readCtx, purchaseID)
	if err != nil {
		return nil, false
	}
	account, err := o.accounts.FindByID(readCtx, accountID)
	if err != nil {
		return nil, false
	}

	o.logger.Warn("store timeout resolved as committed",
		zap.String("payment_id", paymentID.String()),
		zap.String("purchase_id", purchaseID.String()),
	)

	return &PaymentResult{
		PaymentID:           payment.ID,
		PurchaseID:          purchase.ID,
		AmountPaid:          payment.Amount,
		OpenRemaining:       purchase.OpenAmount,
		StatusAfter:         purchase.Status,
		AccountBalanceAfter: account.CurrentBalance,
	}, true
}

func (o *PaymentOrchestrator) withStoreTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.storeTimeout)
}

// idemPendingMarker is stored under an idempotency key while the first
// request for that key is still in flight. It is not valid JSON, so a
// replay can never mistake it for a committed result.
var idemPendingMarker = []byte("PENDING")

const (
	// idemPendingTTL is a safety net: a crashed owner never releases its
	// reservation, so the marker must expire on its own.
	idemPendingTTL   = time.Minute
	idemWaitTimeout  = 10 * time.Second
	idemPollInterval = 20 * time.Millisecond
)

// acquireIdemKey reserves idemKey before any side effect, so two
// simultaneous requests with the same key cannot both debit. The first
// caller wins the reservation and proceeds; later callers wait for the
// winner's committed result and replay it into v (hit=true). The caller
// owning the reservation must resolve it via finishIdemKey.
func (o *PaymentOrchestrator) acquireIdemKey(ctx context.Context, idemKey string, v any) (hit bool, err error) {
	if idemKey == "" || o.idempotency == nil {
		return false, nil
	}

	deadline := time.Now().Add(idemWaitTimeout)
	for {
		reserved, err := o.idempotency.Remember(ctx, idemKey, idemPendingMarker, idemPendingTTL)
		if err != nil {
			o.logger.Warn("idempotency reservation failed", zap.String("key", idemKey), zap.Error(err))
			return false, nil
		}
		if reserved {
			return false, nil
		}

		payload, found, err := o.idempotency.Lookup(ctx, idemKey)
		if err != nil {
			o.logger.Warn("idempotency lookup failed", zap.String("key", idemKey), zap.Error(err))
			return false, nil
		}
		if found && !bytes.Equal(payload, idemPendingMarker) {
			if err := json.Unmarshal(payload, v); err != nil {
				o.logger.Warn("stored idempotency payload is unreadable", zap.String("key", idemKey), zap.Error(err))
				return false, nil
			}
			o.logger.Info("replaying committed result for idempotency key", zap.String("key", idemKey))
			return true, nil
		}

		// The key is held by an in-flight request, or was just released
		// between the two calls. Wait for its outcome and re-check.
		if time.Now().After(deadline) {
			return false, shared.NewDomainError("CONCURRENCY_CONFLICT",
				"Another request with this idempotency key is still in flight")
		}
		select {
		case <-ctx.Done():
			return false, mapStoreError(ctx.Err())
		case <-time.After(idemPollInterval):
		}
	}
}

// finishIdemKey resolves the reservation taken by acquireIdemKey: a
// committed result replaces the pending marker, a failure releases the
// key so the client may retry with it.
func (o *PaymentOrchestrator) finishIdemKey(ctx context.Context, idemKey string, v any, opErr error) {
	if idemKey == "" || o.idempotency == nil {
		return
	}

	// The reservation must be resolved even when the request context just
	// expired, or the key stays blocked until the pending TTL runs out.
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultStoreTimeout)
	defer cancel()

	if opErr != nil {
		if err := o.idempotency.Release(storeCtx, idemKey); err != nil {
			o.logger.Warn("failed to release idempotency key", zap.String("key", idemKey), zap.Error(err))
		}
		return
	}

	payload, err := json.Marshal(v)
	if err != nil {
		o.logger.Warn("failed to marshal idempotency payload", zap.Error(err))
		return
	}
	if err := o.idempotency.Complete(storeCtx, idemKey, payload, o.idemTTL); err != nil {
		o.logger.Warn("failed to store idempotency payload", zap.String("key", idemKey), zap.Error(err))
	}
}

// invalidate drops the cached balance so the next validation reads fresh
// state. Must run before the result is returned to the caller.
func (o *PaymentOrchestrator) invalidate(accountID uuid.UUID) {
	if o.cache != nil {
		o.cache.Invalidate(accountID)
	}
}

func insufficientBalance(need, available decimal.Decimal) error {
	return shared.NewDomainError("INSUFFICIENT_BALANCE",
		fmt.Sprintf("Insufficient balance: need %s, available %s", need.StringFixed(2), available.StringFixed(2)))
}
