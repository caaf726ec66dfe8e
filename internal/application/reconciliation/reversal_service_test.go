package reconciliation

import (
	"context"
	"testing"
	"time"

	"github.com/financeiro/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverseRestoresAccountAndPurchase(t *testing.T) {
	f := newOrchestratorFixture(t, "2000")
	purchase := f.addPurchase(t, "1000", time.Now())
	o := f.orchestrator()
	ctx := context.Background()

	_, err := o.PayPartial(ctx, purchase.ID, f.account.ID, decimal.RequireFromString("400"), f.actor, "", "")
	require.NoError(t, err)
	_, err = o.PayTotal(ctx, purchase.ID, f.account.ID, f.actor, "")
	require.NoError(t, err)
	require.True(t, f.balance(t).Equal(decimal.RequireFromString("1000")))

	svc := NewReversalService(&memoryScope{store: f.store}, f.cache)
	result, err := svc.Reverse(ctx, purchase.ID, f.actor)
	require.NoError(t, err)

	assert.Equal(t, 2, result.PaymentsReversed)
	assert.True(t, result.AmountReversed.Equal(decimal.RequireFromString("1000")))
	require.Len(t, result.Credits, 1)
	assert.Equal(t, f.account.ID, result.Credits[0].AccountID)
	assert.True(t, result.Credits[0].BalanceAfter.Equal(decimal.RequireFromString("2000")))

	// Exact round trip: the account holds its original balance and the
	// purchase is payable again in full.
	assert.True(t, f.balance(t).Equal(decimal.RequireFromString("2000")))
	stored := f.purchase(t, purchase.ID)
	assert.Equal(t, ledger.PurchaseStatusOpen, stored.Status)
	assert.True(t, stored.PaidAmount.IsZero())
	assert.True(t, stored.OpenAmount.Equal(stored.TotalAmount))

	// Payments survive as an audit trail, marked reversed.
	payments, err := (&memoryPaymentRepo{f.store}).FindByPurchase(ctx, purchase.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	for _, pm := range payments {
		assert.True(t, pm.Reversed)
		assert.NotNil(t, pm.ReversedAt)
	}
}

func TestReverseWithNoActivePayments(t *testing.T) {
	f := newOrchestratorFixture(t, "2000")
	purchase := f.addPurchase(t, "1000", time.Now())
	svc := NewReversalService(&memoryScope{store: f.store}, f.cache)

	result, err := svc.Reverse(context.Background(), purchase.ID, f.actor)
	assert.Nil(t, result)
	assertDomainCode(t, err, "NO_ACTIVE_PAYMENTS")
}

func TestReverseTwiceFailsSecondTime(t *testing.T) {
	f := newOrchestratorFixture(t, "2000")
	purchase := f.addPurchase(t, "600", time.Now())
	o := f.orchestrator()
	ctx := context.Background()

	_, err := o.PayTotal(ctx, purchase.ID, f.account.ID, f.actor, "")
	require.NoError(t, err)

	svc := NewReversalService(&memoryScope{store: f.store}, f.cache)
	_, err = svc.Reverse(ctx, purchase.ID, f.actor)
	require.NoError(t, err)

	// Already-reversed payments are not active; reversing again is a user
	// error, not a double credit.
	_, err = svc.Reverse(ctx, purchase.ID, f.actor)
	assertDomainCode(t, err, "NO_ACTIVE_PAYMENTS")
	assert.True(t, f.balance(t).Equal(decimal.RequireFromString("2000")))
}

func TestReverseRequiresActor(t *testing.T) {
	f := newOrchestratorFixture(t, "2000")
	svc := NewReversalService(&memoryScope{store: f.store}, f.cache)

	_, err := svc.Reverse(context.Background(), uuid.New(), uuid.Nil)
	assertDomainCode(t, err, "UNAUTHENTICATED")
}

func TestReverseUnknownPurchase(t *testing.T) {
	f := newOrchestratorFixture(t, "2000")
	svc := NewReversalService(&memoryScope{store: f.store}, f.cache)

	_, err := svc.Reverse(context.Background(), uuid.New(), f.actor)
	assertDomainCode(t, err, "NOT_FOUND")
}

func TestReverseThenPayAgain(t *testing.T) {
	f := newOrchestratorFixture(t, "2000")
	purchase := f.addPurchase(t, "500", time.Now())
	o := f.orchestrator()
	ctx := context.Background()

	_, err := o.PayTotal(ctx, purchase.ID, f.account.ID, f.actor, "")
	require.NoError(t, err)

	svc := NewReversalService(&memoryScope{store: f.store}, f.cache)
	_, err = svc.Reverse(ctx, purchase.ID, f.actor)
	require.NoError(t, err)

	// The reversed purchase accepts payments again from scratch.
	result, err := o.PayTotal(ctx, purchase.ID, f.account.ID, f.actor, "")
	require.NoError(t, err)
	assert.True(t, result.AmountPaid.Equal(decimal.RequireFromString("500")))
	assert.Equal(t, ledger.PurchaseStatusSettled, result.StatusAfter)
	assert.True(t, f.balance(t).Equal(decimal.RequireFromString("1500")))
}

func TestReverseInvalidatesCachedBalance(t *testing.T) {
	f := newOrchestratorFixture(t, "2000")
	purchase := f.addPurchase(t, "500", time.Now())
	o := f.orchestrator()
	ctx := context.Background()

	_, err := o.PayTotal(ctx, purchase.ID, f.account.ID, f.actor, "")
	require.NoError(t, err)
	f.cache.Set(f.account.ID, decimal.RequireFromString("1500"))

	svc := NewReversalService(&memoryScope{store: f.store}, f.cache)
	_, err = svc.Reverse(ctx, purchase.ID, f.actor)
	require.NoError(t, err)

	_, ok := f.cache.Get(f.account.ID)
	assert.False(t, ok, "reversal must drop the credited account's cached balance")
}
