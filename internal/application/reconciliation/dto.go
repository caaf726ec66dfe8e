package reconciliation

import (
	"github.com/financeiro/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceCheck is the advisory answer to "can this account absorb this
// debit right now". It carries the available balance so the UI can show
// both sides of the comparison.
type BalanceCheck struct {
	AccountID  uuid.UUID       `json:"account_id"`
	Requested  decimal.Decimal `json:"requested"`
	Available  decimal.Decimal `json:"available"`
	Sufficient bool            `json:"sufficient"`
}

// PaymentResult is the outcome of a committed single-purchase payment
type PaymentResult struct {
	PaymentID           uuid.UUID             `json:"payment_id"`
	PurchaseID          uuid.UUID             `json:"purchase_id"`
	AmountPaid          decimal.Decimal       `json:"amount_paid"`
	OpenRemaining       decimal.Decimal       `json:"open_remaining"`
	StatusAfter         ledger.PurchaseStatus `json:"status_after"`
	AccountBalanceAfter decimal.Decimal       `json:"account_balance_after"`
}

// SupplierPaymentResult is the outcome of the all-or-nothing pay-everything
// flow for one supplier
type SupplierPaymentResult struct {
	SupplierID          uuid.UUID       `json:"supplier_id"`
	Payments            []PaymentResult `json:"payments"`
	TotalPaid           decimal.Decimal `json:"total_paid"`
	AccountBalanceAfter decimal.Decimal `json:"account_balance_after"`
}

// AccountCredit describes one account credited during a reversal
type AccountCredit struct {
	AccountID    uuid.UUID       `json:"account_id"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

// ReversalResult is the outcome of undoing a purchase's payments
type ReversalResult struct {
	PurchaseID       uuid.UUID       `json:"purchase_id"`
	AmountReversed   decimal.Decimal `json:"amount_reversed"`
	PaymentsReversed int             `json:"payments_reversed"`
	Credits          []AccountCredit `json:"credits"`
}
