package reconciliation

import (
	"context"
	"time"

	"github.com/financeiro/backend/internal/domain/ledger"
	"github.com/financeiro/backend/internal/domain/partner"
	"github.com/financeiro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePurchaseRequest is the payload for booking a purchase
type CreatePurchaseRequest struct {
	SupplierID  uuid.UUID       `json:"supplier_id" binding:"required"`
	Description string          `json:"description" binding:"required"`
	TotalAmount decimal.Decimal `json:"total_amount" binding:"required"`
	PurchasedAt *time.Time      `json:"purchased_at"`
}

// PurchaseResponse is the API representation of a purchase
type PurchaseResponse struct {
	ID          uuid.UUID       `json:"id"`
	SupplierID  uuid.UUID       `json:"supplier_id"`
	Description string          `json:"description"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	OpenAmount  decimal.Decimal `json:"open_amount"`
	Status      string          `json:"status"`
	PurchasedAt time.Time       `json:"purchased_at"`
	SettledAt   *time.Time      `json:"settled_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PaymentRecordResponse is the API representation of one payment on a purchase
type PaymentRecordResponse struct {
	ID         uuid.UUID       `json:"id"`
	PurchaseID uuid.UUID       `json:"purchase_id"`
	AccountID  uuid.UUID       `json:"account_id"`
	Amount     decimal.Decimal `json:"amount"`
	Kind       string          `json:"kind"`
	AppliedAt  time.Time       `json:"applied_at"`
	Note       string          `json:"note,omitempty"`
	Reversed   bool            `json:"reversed"`
	ReversedAt *time.Time      `json:"reversed_at,omitempty"`
}

// ToPurchaseResponse converts a domain purchase to its API representation
func ToPurchaseResponse(p *ledger.Purchase) PurchaseResponse {
	return PurchaseResponse{
		ID:          p.ID,
		SupplierID:  p.SupplierID,
		Description: p.Description,
		TotalAmount: p.TotalAmount,
		PaidAmount:  p.PaidAmount,
		OpenAmount:  p.OpenAmount,
		Status:      string(p.Status),
		PurchasedAt: p.PurchasedAt,
		SettledAt:   p.SettledAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToPaymentRecordResponse converts a domain payment to its API representation
func ToPaymentRecordResponse(pm *ledger.Payment) PaymentRecordResponse {
	return PaymentRecordResponse{
		ID:         pm.ID,
		PurchaseID: pm.PurchaseID,
		AccountID:  pm.AccountID,
		Amount:     pm.Amount,
		Kind:       string(pm.Kind),
		AppliedAt:  pm.AppliedAt,
		Note:       pm.Note,
		Reversed:   pm.Reversed,
		ReversedAt: pm.ReversedAt,
	}
}

// PurchaseService handles purchase bookkeeping outside the payment cycle:
// registering purchases and serving read views for the reconciliation UI
type PurchaseService struct {
	purchases ledger.PurchaseRepository
	payments  ledger.PaymentRepository
	suppliers partner.SupplierRepository
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(purchases ledger.PurchaseRepository, payments ledger.PaymentRepository, suppliers partner.SupplierRepository) *PurchaseService {
	return &PurchaseService{
		purchases: purchases,
		payments:  payments,
		suppliers: suppliers,
	}
}

// Create books a new purchase against an active supplier
func (s *PurchaseService) Create(ctx context.Context, req CreatePurchaseRequest, actorID uuid.UUID) (*PurchaseResponse, error) {
	if actorID == uuid.Nil {
		return nil, shared.ErrUnauthenticated
	}

	supplier, err := s.suppliers.FindByID(ctx, req.SupplierID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if !supplier.IsActive() {
		return nil, shared.NewDomainError("SUPPLIER_INACTIVE", "Cannot register purchases for an inactive supplier")
	}

	purchasedAt := time.Now()
	if req.PurchasedAt != nil {
		purchasedAt = *req.PurchasedAt
	}

	purchase, err := ledger.NewPurchase(req.SupplierID, req.Description, req.TotalAmount, purchasedAt, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.purchases.Save(ctx, purchase); err != nil {
		return nil, mapStoreError(err)
	}

	response := ToPurchaseResponse(purchase)
	return &response, nil
}

// GetByID retrieves a purchase by ID
func (s *PurchaseService) GetByID(ctx context.Context, purchaseID uuid.UUID) (*PurchaseResponse, error) {
	purchase, err := s.purchases.FindByID(ctx, purchaseID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	response := ToPurchaseResponse(purchase)
	return &response, nil
}

// List returns purchases with pagination
func (s *PurchaseService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[PurchaseResponse], error) {
	purchases, err := s.purchases.FindAll(ctx, filter)
	if err != nil {
		return nil, mapStoreError(err)
	}
	total, err := s.purchases.Count(ctx, filter)
	if err != nil {
		return nil, mapStoreError(err)
	}

	responses := make([]PurchaseResponse, len(purchases))
	for i, purchase := range purchases {
		responses[i] = ToPurchaseResponse(purchase)
	}

	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ListPayable returns the supplier's purchases still carrying an open
// balance, oldest first. This is the order the pay-everything flow settles.
func (s *PurchaseService) ListPayable(ctx context.Context, supplierID uuid.UUID) ([]PurchaseResponse, error) {
	if _, err := s.suppliers.FindByID(ctx, supplierID); err != nil {
		return nil, mapStoreError(err)
	}
	purchases, err := s.purchases.FindPayableBySupplier(ctx, supplierID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	responses := make([]PurchaseResponse, len(purchases))
	for i, purchase := range purchases {
		responses[i] = ToPurchaseResponse(purchase)
	}
	return responses, nil
}

// ListPayments returns the purchase's full payment history including
// reversed entries
func (s *PurchaseService) ListPayments(ctx context.Context, purchaseID uuid.UUID) ([]PaymentRecordResponse, error) {
	if _, err := s.purchases.FindByID(ctx, purchaseID); err != nil {
		return nil, mapStoreError(err)
	}
	payments, err := s.payments.FindByPurchase(ctx, purchaseID)
	if err != nil {
		return nil, mapStoreError(err)
	}

	responses := make([]PaymentRecordResponse, len(payments))
	for i, pm := range payments {
		responses[i] = ToPaymentRecordResponse(pm)
	}
	return responses, nil
}
