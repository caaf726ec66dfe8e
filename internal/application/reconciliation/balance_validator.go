package reconciliation

import (
	"context"
	"sync"
	"time"

	"github.com/financeiro/backend/internal/domain/ledger"
	"github.com/financeiro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultDebounceWindow collapses rapid validation requests (a user typing
// an amount) into one store read.
const DefaultDebounceWindow = 300 * time.Millisecond

// BalanceValidator answers whether the settlement account can absorb a
// debit, without causing request storms. It is purely advisory: the balance
// can change between validation and commit, so the orchestrator re-checks
// atomically at debit time.
//
// Concurrent validations for the same account are coalesced last-wins: a new
// request cancels the pending one, and a response is only applied if its
// generation is still the latest.
type BalanceValidator struct {
	accounts ledger.AccountRepository
	cache    BalanceCache
	debounce time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	inflight map[uuid.UUID]*validationState
}

type validationState struct {
	generation uint64
	cancel     context.CancelFunc
}

// BalanceValidatorOption is a functional option for the validator
type BalanceValidatorOption func(*BalanceValidator)

// WithDebounceWindow overrides the debounce window. Zero disables debouncing
// (used by the orchestrator's pre-checks and in tests).
func WithDebounceWindow(d time.Duration) BalanceValidatorOption {
	return func(v *BalanceValidator) {
		v.debounce = d
	}
}

// WithValidatorLogger sets the logger
func WithValidatorLogger(logger *zap.Logger) BalanceValidatorOption {
	return func(v *BalanceValidator) {
		v.logger = logger
	}
}

// NewBalanceValidator creates a BalanceValidator
func NewBalanceValidator(accounts ledger.AccountRepository, cache BalanceCache, opts ...BalanceValidatorOption) *BalanceValidator {
	v := &BalanceValidator{
		accounts: accounts,
		cache:    cache,
		debounce: DefaultDebounceWindow,
		logger:   zap.NewNop(),
		inflight: make(map[uuid.UUID]*validationState),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate reports whether accountID can satisfy a debit of amount.
// A call superseded by a newer one for the same account returns
// VALIDATION_SUPERSEDED; its result must be discarded, never applied.
func (v *BalanceValidator) Validate(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*BalanceCheck, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	amount = amount.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Validation amount must be positive")
	}

	callCtx, cancel, generation := v.supersede(ctx, accountID)
	defer v.settle(accountID, generation, cancel)

	if v.debounce > 0 {
		timer := time.NewTimer(v.debounce)
		defer timer.Stop()
		select {
		case <-callCtx.Done():
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, shared.ErrValidationSuperseded
		case <-timer.C:
		}
	}

	if !v.isLatest(accountID, generation) {
		return nil, shared.ErrValidationSuperseded
	}

	available, err := v.readBalance(callCtx, accountID)
	if err != nil {
		if callCtx.Err() != nil && ctx.Err() == nil {
			return nil, shared.ErrValidationSuperseded
		}
		return nil, err
	}

	// The read may have raced a newer request; stale answers must never
	// overwrite fresher UI state.
	if !v.isLatest(accountID, generation) {
		return nil, shared.ErrValidationSuperseded
	}

	return &BalanceCheck{
		AccountID:  accountID,
		Requested:  amount,
		Available:  available,
		Sufficient: available.GreaterThanOrEqual(amount),
	}, nil
}

// Check is the debounce-free variant used for one-off pre-checks
func (v *BalanceValidator) Check(ctx context.Context, accountID uuid.UUID, amount decimal.Decimal) (*BalanceCheck, error) {
	amount = amount.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Validation amount must be positive")
	}
	available, err := v.readBalance(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &BalanceCheck{
		AccountID:  accountID,
		Requested:  amount,
		Available:  available,
		Sufficient: available.GreaterThanOrEqual(amount),
	}, nil
}

// supersede registers a new generation for the account and cancels any
// pending validation
func (v *BalanceValidator) supersede(ctx context.Context, accountID uuid.UUID) (context.Context, context.CancelFunc, uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	state := v.inflight[accountID]
	if state != nil && state.cancel != nil {
		state.cancel()
	}

	callCtx, cancel := context.WithCancel(ctx)
	next := uint64(1)
	if state != nil {
		next = state.generation + 1
	}
	v.inflight[accountID] = &validationState{generation: next, cancel: cancel}

	return callCtx, cancel, next
}

// settle runs when a validation returns: it releases the call's child
// context, and drops the tracking entry once the latest generation has
// finished so settled accounts do not accumulate state.
func (v *BalanceValidator) settle(accountID uuid.UUID, generation uint64, cancel context.CancelFunc) {
	cancel()

	v.mu.Lock()
	defer v.mu.Unlock()
	state := v.inflight[accountID]
	if state != nil && state.generation == generation {
		delete(v.inflight, accountID)
	}
}

func (v *BalanceValidator) isLatest(accountID uuid.UUID, generation uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	state := v.inflight[accountID]
	return state != nil && state.generation == generation
}

// readBalance consults the cache first and falls through to the store on a
// miss. The cache is advisory; a store failure here is a real failure.
func (v *BalanceValidator) readBalance(ctx context.Context, accountID uuid.UUID) (decimal.Decimal, error) {
	if v.cache != nil {
		if balance, ok := v.cache.Get(accountID); ok {
			return balance, nil
		}
	}

	account, err := v.accounts.FindByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, mapStoreError(err)
	}

	if v.cache != nil {
		v.cache.Set(accountID, account.CurrentBalance)
	}
	v.logger.Debug("balance read from store",
		zap.String("account_id", accountID.String()),
		zap.String("balance", account.CurrentBalance.String()),
	)

	return account.CurrentBalance, nil
}
