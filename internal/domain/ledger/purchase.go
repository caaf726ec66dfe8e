package ledger

import (
	"fmt"
	"time"

	"github.com/financeiro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseStatus represents the payment status of a purchase. It is always
// derived from the paid/open amounts, never set directly by callers.
type PurchaseStatus string

const (
	PurchaseStatusOpen    PurchaseStatus = "OPEN"    // No payments applied
	PurchaseStatusPartial PurchaseStatus = "PARTIAL" // 0 < paid < total
	PurchaseStatusSettled PurchaseStatus = "SETTLED" // Open amount is zero
)

// IsValid checks if the status is a valid PurchaseStatus
func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusOpen, PurchaseStatusPartial, PurchaseStatusSettled:
		return true
	}
	return false
}

// String returns the string representation of PurchaseStatus
func (s PurchaseStatus) String() string {
	return string(s)
}

// CanApplyPayment returns true if payments can be applied in this status
func (s PurchaseStatus) CanApplyPayment() bool {
	return s == PurchaseStatusOpen || s == PurchaseStatusPartial
}

// Purchase is the aggregate root for a debt owed to a supplier.
// Invariants: paid + open == total, open >= 0, status derived from amounts.
// All amounts carry 2-digit currency precision.
type Purchase struct {
	shared.AuditedAggregateRoot
	SupplierID  uuid.UUID       `json:"supplier_id"`
	Description string          `json:"description"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	OpenAmount  decimal.Decimal `json:"open_amount"`
	Status      PurchaseStatus  `json:"status"`
	PurchasedAt time.Time       `json:"purchased_at"`
	SettledAt   *time.Time      `json:"settled_at"`
}

// NewPurchase creates a purchase with the full amount outstanding
func NewPurchase(supplierID uuid.UUID, description string, totalAmount decimal.Decimal, purchasedAt time.Time, createdBy uuid.UUID) (*Purchase, error) {
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	totalAmount = totalAmount.Round(2)
	if totalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Total amount must be positive")
	}
	if purchasedAt.IsZero() {
		purchasedAt = time.Now()
	}

	p := &Purchase{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		SupplierID:           supplierID,
		Description:          description,
		TotalAmount:          totalAmount,
		PaidAmount:           decimal.Zero,
		OpenAmount:           totalAmount,
		Status:               PurchaseStatusOpen,
		PurchasedAt:          purchasedAt,
	}

	p.AddDomainEvent(NewPurchaseCreatedEvent(p))

	return p, nil
}

// ApplyPayment applies a payment of the given amount against the open
// balance and returns the resulting Payment record. The payment kind is
// TOTAL when the amount settles the purchase exactly, PARTIAL otherwise.
func (p *Purchase) ApplyPayment(accountID uuid.UUID, amount decimal.Decimal, actorID uuid.UUID, note string) (*Payment, error) {
	if !p.Status.CanApplyPayment() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply payment to purchase in %s status", p.Status))
	}
	if actorID == uuid.Nil {
		return nil, shared.ErrUnauthenticated
	}
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	amount = amount.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(p.OpenAmount) {
		return nil, shared.NewDomainError("EXCEEDS_OPEN_BALANCE",
			fmt.Sprintf("Payment amount %s exceeds open balance %s", amount.StringFixed(2), p.OpenAmount.StringFixed(2)))
	}

	kind := PaymentKindPartial
	if amount.Equal(p.OpenAmount) {
		kind = PaymentKindTotal
	}
	payment := NewPayment(p.ID, accountID, amount, kind, actorID, note)

	p.PaidAmount = p.PaidAmount.Add(amount)
	p.OpenAmount = p.TotalAmount.Sub(p.PaidAmount)

	if p.OpenAmount.IsZero() {
		now := time.Now()
		p.Status = PurchaseStatusSettled
		p.SettledAt = &now
		p.AddDomainEvent(NewPurchaseSettledEvent(p, payment))
	} else {
		p.Status = PurchaseStatusPartial
		p.AddDomainEvent(NewPaymentAppliedEvent(p, payment))
	}

	p.Touch()
	p.IncrementVersion()

	return payment, nil
}

// ReversePayments undoes every active payment: marks them reversed, resets
// the paid amount to zero and the status to OPEN. Returns the total amount
// reversed, which the caller must credit back to the settlement account.
func (p *Purchase) ReversePayments(payments []*Payment) (decimal.Decimal, error) {
	reversed := decimal.Zero
	count := 0
	for _, pm := range payments {
		if pm == nil || !pm.IsActive() {
			continue
		}
		if pm.PurchaseID != p.ID {
			return decimal.Zero, shared.NewDomainError("PAYMENT_MISMATCH",
				fmt.Sprintf("Payment %s does not belong to purchase %s", pm.ID, p.ID))
		}
		reversed = reversed.Add(pm.Amount)
		count++
	}
	if count == 0 {
		return decimal.Zero, shared.NewDomainError("NO_ACTIVE_PAYMENTS", "Purchase has no active payments to reverse")
	}

	for _, pm := range payments {
		if pm != nil && pm.IsActive() {
			pm.MarkReversed()
		}
	}

	p.PaidAmount = decimal.Zero
	p.OpenAmount = p.TotalAmount
	p.Status = PurchaseStatusOpen
	p.SettledAt = nil
	p.Touch()
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentsReversedEvent(p, reversed, count))

	return reversed, nil
}

// HasActivePayments returns true if any payment still counts toward the
// paid amount
func (p *Purchase) HasActivePayments() bool {
	return p.PaidAmount.GreaterThan(decimal.Zero)
}

// IsSettled returns true if the purchase is fully paid
func (p *Purchase) IsSettled() bool {
	return p.Status == PurchaseStatusSettled
}
