package ledger

import (
	"testing"

	"github.com/financeiro/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccount(t *testing.T, balance string) *SettlementAccount {
	t.Helper()
	a, err := NewSettlementAccount("Cora", decimal.RequireFromString(balance))
	require.NoError(t, err)
	return a
}

func TestNewSettlementAccount(t *testing.T) {
	t.Run("creates account with opening balance", func(t *testing.T) {
		a := newTestAccount(t, "1500.00")
		assert.True(t, a.CurrentBalance.Equal(decimal.RequireFromString("1500.00")))
		assert.Equal(t, 1, a.Version)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewSettlementAccount("", decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("rejects negative opening balance", func(t *testing.T) {
		_, err := NewSettlementAccount("Cora", decimal.RequireFromString("-1"))
		assert.Error(t, err)
	})
}

func TestSettlementAccount_Debit(t *testing.T) {
	t.Run("debits within balance", func(t *testing.T) {
		a := newTestAccount(t, "1500.00")

		err := a.Debit(decimal.RequireFromString("400.00"))

		require.NoError(t, err)
		assert.True(t, a.CurrentBalance.Equal(decimal.RequireFromString("1100.00")))
		assert.Equal(t, 2, a.Version)
	})

	t.Run("debit to exactly zero is allowed", func(t *testing.T) {
		a := newTestAccount(t, "100.00")

		err := a.Debit(decimal.RequireFromString("100.00"))

		require.NoError(t, err)
		assert.True(t, a.CurrentBalance.IsZero())
	})

	t.Run("overdraw fails with INSUFFICIENT_BALANCE and mutates nothing", func(t *testing.T) {
		a := newTestAccount(t, "100.00")

		err := a.Debit(decimal.RequireFromString("500.00"))

		require.Error(t, err)
		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "INSUFFICIENT_BALANCE", de.Code)
		assert.Contains(t, de.Message, "need 500.00")
		assert.Contains(t, de.Message, "available 100.00")
		assert.True(t, a.CurrentBalance.Equal(decimal.RequireFromString("100.00")))
		assert.Equal(t, 1, a.Version)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		a := newTestAccount(t, "100.00")
		assert.Error(t, a.Debit(decimal.Zero))
		assert.Error(t, a.Debit(decimal.RequireFromString("-10")))
	})
}

func TestSettlementAccount_Credit(t *testing.T) {
	t.Run("credit restores debited amount exactly", func(t *testing.T) {
		a := newTestAccount(t, "1500.00")
		before := a.CurrentBalance

		require.NoError(t, a.Debit(decimal.RequireFromString("333.33")))
		require.NoError(t, a.Credit(decimal.RequireFromString("333.33")))

		assert.True(t, a.CurrentBalance.Equal(before))
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		a := newTestAccount(t, "100.00")
		assert.Error(t, a.Credit(decimal.Zero))
	})
}

func TestSettlementAccount_CanSatisfy(t *testing.T) {
	a := newTestAccount(t, "100.00")
	assert.True(t, a.CanSatisfy(decimal.RequireFromString("100.00")))
	assert.True(t, a.CanSatisfy(decimal.RequireFromString("99.99")))
	assert.False(t, a.CanSatisfy(decimal.RequireFromString("100.01")))
}
