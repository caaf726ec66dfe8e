package ledger

import (
	"time"

	"github.com/financeiro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentKind distinguishes a payment that settles the whole open balance
// from a partial one
type PaymentKind string

const (
	PaymentKindTotal   PaymentKind = "TOTAL"
	PaymentKindPartial PaymentKind = "PARTIAL"
)

// IsValid checks if the kind is a valid PaymentKind
func (k PaymentKind) IsValid() bool {
	return k == PaymentKindTotal || k == PaymentKindPartial
}

// String returns the string representation of PaymentKind
func (k PaymentKind) String() string {
	return string(k)
}

// Payment is one debit event against a purchase. It is created atomically
// with the purchase mutation and account debit, and is never hard-deleted:
// reversal just flips the Reversed flag.
type Payment struct {
	shared.BaseEntity
	PurchaseID uuid.UUID       `json:"purchase_id"`
	AccountID  uuid.UUID       `json:"account_id"`
	Amount     decimal.Decimal `json:"amount"`
	Kind       PaymentKind     `json:"kind"`
	AppliedAt  time.Time       `json:"applied_at"`
	CreatedBy  uuid.UUID       `json:"created_by"`
	Note       string          `json:"note"`
	Reversed   bool            `json:"reversed"`
	ReversedAt *time.Time      `json:"reversed_at"`
}

// NewPayment creates a payment record. Amount must already be validated and
// rounded by the owning Purchase aggregate.
func NewPayment(purchaseID, accountID uuid.UUID, amount decimal.Decimal, kind PaymentKind, createdBy uuid.UUID, note string) *Payment {
	return &Payment{
		BaseEntity: shared.NewBaseEntity(),
		PurchaseID: purchaseID,
		AccountID:  accountID,
		Amount:     amount,
		Kind:       kind,
		AppliedAt:  time.Now(),
		CreatedBy:  createdBy,
		Note:       note,
	}
}

// MarkReversed flags the payment as reversed
func (p *Payment) MarkReversed() {
	now := time.Now()
	p.Reversed = true
	p.ReversedAt = &now
	p.UpdatedAt = now
}

// IsActive returns true if the payment still counts toward the purchase's
// paid amount
func (p *Payment) IsActive() bool {
	return !p.Reversed
}
