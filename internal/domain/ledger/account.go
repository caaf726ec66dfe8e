package ledger

import (
	"fmt"

	"github.com/financeiro/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SettlementAccount is the shared account supplier debts are paid from.
// Its balance is the one piece of mutable shared state in the system:
// mutation happens only through Debit/Credit, and every save must go through
// the repository's lock-checked write so concurrent debits cannot lose
// updates.
type SettlementAccount struct {
	shared.BaseAggregateRoot
	Name           string          `json:"name"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

// NewSettlementAccount creates an account with an opening balance
func NewSettlementAccount(name string, openingBalance decimal.Decimal) (*SettlementAccount, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_NAME", "Account name cannot be empty")
	}
	openingBalance = openingBalance.Round(2)
	if openingBalance.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Opening balance cannot be negative")
	}

	a := &SettlementAccount{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		CurrentBalance:    openingBalance,
	}

	a.AddDomainEvent(NewAccountOpenedEvent(a))

	return a, nil
}

// CanSatisfy reports whether a debit of the given amount would leave the
// balance non-negative
func (a *SettlementAccount) CanSatisfy(amount decimal.Decimal) bool {
	return a.CurrentBalance.GreaterThanOrEqual(amount)
}

// Debit removes amount from the balance. Fails with INSUFFICIENT_BALANCE
// rather than overdrawing the account.
func (a *SettlementAccount) Debit(amount decimal.Decimal) error {
	amount = amount.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Debit amount must be positive")
	}
	if !a.CanSatisfy(amount) {
		return shared.NewDomainError("INSUFFICIENT_BALANCE",
			fmt.Sprintf("Insufficient balance: need %s, available %s", amount.StringFixed(2), a.CurrentBalance.StringFixed(2)))
	}

	a.CurrentBalance = a.CurrentBalance.Sub(amount)
	a.IncrementVersion()
	a.AddDomainEvent(NewAccountDebitedEvent(a, amount))

	return nil
}

// Credit adds amount back to the balance (payment reversal)
func (a *SettlementAccount) Credit(amount decimal.Decimal) error {
	amount = amount.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}

	a.CurrentBalance = a.CurrentBalance.Add(amount)
	a.IncrementVersion()
	a.AddDomainEvent(NewAccountCreditedEvent(a, amount))

	return nil
}
