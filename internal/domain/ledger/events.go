package ledger

import (
	"github.com/financeiro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseCreatedEvent is raised when a new purchase is registered
type PurchaseCreatedEvent struct {
	shared.BaseDomainEvent
	PurchaseID  uuid.UUID       `json:"purchase_id"`
	SupplierID  uuid.UUID       `json:"supplier_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewPurchaseCreatedEvent creates a new PurchaseCreatedEvent
func NewPurchaseCreatedEvent(p *Purchase) *PurchaseCreatedEvent {
	return &PurchaseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PurchaseCreated", "Purchase", p.ID),
		PurchaseID:      p.ID,
		SupplierID:      p.SupplierID,
		TotalAmount:     p.TotalAmount,
	}
}

// PaymentAppliedEvent is raised when a partial payment leaves the purchase
// with a remaining open balance
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	PurchaseID uuid.UUID       `json:"purchase_id"`
	PaymentID  uuid.UUID       `json:"payment_id"`
	Amount     decimal.Decimal `json:"amount"`
	OpenAmount decimal.Decimal `json:"open_amount"`
}

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(p *Purchase, payment *Payment) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentApplied", "Purchase", p.ID),
		PurchaseID:      p.ID,
		PaymentID:       payment.ID,
		Amount:          payment.Amount,
		OpenAmount:      p.OpenAmount,
	}
}

// PurchaseSettledEvent is raised when a payment brings the open balance to
// zero
type PurchaseSettledEvent struct {
	shared.BaseDomainEvent
	PurchaseID  uuid.UUID       `json:"purchase_id"`
	PaymentID   uuid.UUID       `json:"payment_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewPurchaseSettledEvent creates a new PurchaseSettledEvent
func NewPurchaseSettledEvent(p *Purchase, payment *Payment) *PurchaseSettledEvent {
	return &PurchaseSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PurchaseSettled", "Purchase", p.ID),
		PurchaseID:      p.ID,
		PaymentID:       payment.ID,
		TotalAmount:     p.TotalAmount,
	}
}

// PaymentsReversedEvent is raised when a purchase's payments are undone
type PaymentsReversedEvent struct {
	shared.BaseDomainEvent
	PurchaseID     uuid.UUID       `json:"purchase_id"`
	AmountReversed decimal.Decimal `json:"amount_reversed"`
	PaymentCount   int             `json:"payment_count"`
}

// NewPaymentsReversedEvent creates a new PaymentsReversedEvent
func NewPaymentsReversedEvent(p *Purchase, amount decimal.Decimal, count int) *PaymentsReversedEvent {
	return &PaymentsReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentsReversed", "Purchase", p.ID),
		PurchaseID:      p.ID,
		AmountReversed:  amount,
		PaymentCount:    count,
	}
}

// AccountOpenedEvent is raised when a settlement account is created
type AccountOpenedEvent struct {
	shared.BaseDomainEvent
	AccountID      uuid.UUID       `json:"account_id"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// NewAccountOpenedEvent creates a new AccountOpenedEvent
func NewAccountOpenedEvent(a *SettlementAccount) *AccountOpenedEvent {
	return &AccountOpenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AccountOpened", "SettlementAccount", a.ID),
		AccountID:       a.ID,
		OpeningBalance:  a.CurrentBalance,
	}
}

// AccountDebitedEvent is raised when the balance is reduced by a payment
type AccountDebitedEvent struct {
	shared.BaseDomainEvent
	AccountID    uuid.UUID       `json:"account_id"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

// NewAccountDebitedEvent creates a new AccountDebitedEvent
func NewAccountDebitedEvent(a *SettlementAccount, amount decimal.Decimal) *AccountDebitedEvent {
	return &AccountDebitedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AccountDebited", "SettlementAccount", a.ID),
		AccountID:       a.ID,
		Amount:          amount,
		BalanceAfter:    a.CurrentBalance,
	}
}

// AccountCreditedEvent is raised when a reversal restores the balance
type AccountCreditedEvent struct {
	shared.BaseDomainEvent
	AccountID    uuid.UUID       `json:"account_id"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

// NewAccountCreditedEvent creates a new AccountCreditedEvent
func NewAccountCreditedEvent(a *SettlementAccount, amount decimal.Decimal) *AccountCreditedEvent {
	return &AccountCreditedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("AccountCredited", "SettlementAccount", a.ID),
		AccountID:       a.ID,
		Amount:          amount,
		BalanceAfter:    a.CurrentBalance,
	}
}
