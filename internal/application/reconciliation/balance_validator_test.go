package reconciliation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/financeiro/backend/internal/domain/ledger"
	"github.com/financeiro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidatorFixture(t *testing.T, balance string, opts ...BalanceValidatorOption) (*BalanceValidator, *ledger.SettlementAccount, *memoryStore) {
	t.Helper()
	account, err := ledger.NewSettlementAccount("Operating account", decimal.RequireFromString(balance))
	require.NoError(t, err)
	store := newMemoryStore()
	store.addAccount(account)
	v := NewBalanceValidator(&memoryAccountRepo{store}, newMapCache(), opts...)
	return v, account, store
}

func TestValidateSufficientAndInsufficient(t *testing.T) {
	v, account, _ := newValidatorFixture(t, "800", WithDebounceWindow(0))
	ctx := context.Background()

	check, err := v.Validate(ctx, account.ID, decimal.RequireFromString("500"))
	require.NoError(t, err)
	assert.True(t, check.Sufficient)
	assert.True(t, check.Available.Equal(decimal.RequireFromString("800")))

	check, err = v.Validate(ctx, account.ID, decimal.RequireFromString("800.01"))
	require.NoError(t, err)
	assert.False(t, check.Sufficient)
}

func TestValidateBoundaryEqualsBalance(t *testing.T) {
	v, account, _ := newValidatorFixture(t, "800", WithDebounceWindow(0))

	check, err := v.Validate(context.Background(), account.ID, decimal.RequireFromString("800"))
	require.NoError(t, err)
	assert.True(t, check.Sufficient, "a debit down to exactly zero is allowed")
}

func TestValidateRejectsBadInput(t *testing.T) {
	v, account, _ := newValidatorFixture(t, "800", WithDebounceWindow(0))
	ctx := context.Background()

	_, err := v.Validate(ctx, uuid.Nil, decimal.RequireFromString("10"))
	assertDomainCode(t, err, "INVALID_ACCOUNT")

	_, err = v.Validate(ctx, account.ID, decimal.Zero)
	assertDomainCode(t, err, "INVALID_AMOUNT")

	_, err = v.Validate(ctx, account.ID, decimal.RequireFromString("-5"))
	assertDomainCode(t, err, "INVALID_AMOUNT")
}

func TestValidateNewerRequestSupersedesPending(t *testing.T) {
	v, account, _ := newValidatorFixture(t, "800", WithDebounceWindow(50*time.Millisecond))
	ctx := context.Background()

	type outcome struct {
		check *BalanceCheck
		err   error
	}
	first := make(chan outcome, 1)

	go func() {
		check, err := v.Validate(ctx, account.ID, decimal.RequireFromString("100"))
		first <- outcome{check, err}
	}()

	// Let the first call enter its debounce wait, then supersede it.
	time.Sleep(10 * time.Millisecond)
	check, err := v.Validate(ctx, account.ID, decimal.RequireFromString("700"))
	require.NoError(t, err)
	assert.True(t, check.Requested.Equal(decimal.RequireFromString("700")))
	assert.True(t, check.Sufficient)

	got := <-first
	assert.Nil(t, got.check, "a superseded validation must never surface a result")
	assert.True(t, errors.Is(got.err, shared.ErrValidationSuperseded), "got %v", got.err)
}

func TestValidateBurstOnlyLastWins(t *testing.T) {
	v, account, _ := newValidatorFixture(t, "800", WithDebounceWindow(30*time.Millisecond))
	ctx := context.Background()

	const burst = 5
	var wg sync.WaitGroup
	results := make([]*BalanceCheck, burst)
	errs := make([]error, burst)

	for i := 0; i < burst; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = v.Validate(ctx, account.ID, decimal.NewFromInt(int64(100+i)))
		}(i)
		time.Sleep(5 * time.Millisecond)
	}
	wg.Wait()

	winners := 0
	for i := 0; i < burst; i++ {
		if errs[i] == nil {
			winners++
			require.NotNil(t, results[i])
		} else {
			assert.True(t, errors.Is(errs[i], shared.ErrValidationSuperseded), "call %d: %v", i, errs[i])
		}
	}
	assert.Equal(t, 1, winners, "a typing burst must collapse into one answered validation")
}

func TestValidateCallerCancellation(t *testing.T) {
	v, account, _ := newValidatorFixture(t, "800", WithDebounceWindow(100*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := v.Validate(ctx, account.ID, decimal.RequireFromString("100"))
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	err := <-done
	require.Error(t, err)
	// The caller went away; that is cancellation, not supersession.
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestValidateCachesStoreReads(t *testing.T) {
	account, err := ledger.NewSettlementAccount("Operating account", decimal.RequireFromString("800"))
	require.NoError(t, err)
	store := newMemoryStore()
	store.addAccount(account)
	repo := &countingAccountRepo{inner: &memoryAccountRepo{store}}
	v := NewBalanceValidator(repo, newMapCache(), WithDebounceWindow(0))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := v.Validate(ctx, account.ID, decimal.RequireFromString("100"))
		require.NoError(t, err)
	}
	assert.Equal(t, 1, repo.reads, "repeated validations must hit the cache")
}

func TestValidateReleasesTrackingState(t *testing.T) {
	v, account, _ := newValidatorFixture(t, "800", WithDebounceWindow(20*time.Millisecond))
	ctx := context.Background()

	_, err := v.Validate(ctx, account.ID, decimal.RequireFromString("100"))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := v.Validate(ctx, account.ID, decimal.RequireFromString("100"))
		done <- err
	}()
	time.Sleep(5 * time.Millisecond)
	_, err = v.Validate(ctx, account.ID, decimal.RequireFromString("200"))
	require.NoError(t, err)
	assert.True(t, errors.Is(<-done, shared.ErrValidationSuperseded))

	// Both the answered and the superseded call have returned; nothing may
	// linger for the account.
	v.mu.Lock()
	remaining := len(v.inflight)
	v.mu.Unlock()
	assert.Zero(t, remaining, "finished validations must not leave per-account state behind")
}

func TestValidateUnknownAccount(t *testing.T) {
	v, _, _ := newValidatorFixture(t, "800", WithDebounceWindow(0))

	_, err := v.Validate(context.Background(), uuid.New(), decimal.RequireFromString("100"))
	assertDomainCode(t, err, "NOT_FOUND")
}

type countingAccountRepo struct {
	inner *memoryAccountRepo
	reads int
}

func (r *countingAccountRepo) FindByID(ctx context.Context, id uuid.UUID) (*ledger.SettlementAccount, error) {
	r.reads++
	return r.inner.FindByID(ctx, id)
}

func (r *countingAccountRepo) Save(ctx context.Context, a *ledger.SettlementAccount) error {
	return r.inner.Save(ctx, a)
}

func (r *countingAccountRepo) SaveWithLock(ctx context.Context, a *ledger.SettlementAccount) error {
	return r.inner.SaveWithLock(ctx, a)
}
