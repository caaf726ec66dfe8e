package partner

import (
	"strings"

	"github.com/financeiro/backend/internal/domain/shared"
)

// SupplierStatus represents the lifecycle status of a supplier
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "ACTIVE"
	SupplierStatusInactive SupplierStatus = "INACTIVE"
)

// IsValid checks if the status is a valid SupplierStatus
func (s SupplierStatus) IsValid() bool {
	return s == SupplierStatusActive || s == SupplierStatusInactive
}

// Supplier is a party the back office owes money to. Purchases reference
// suppliers by id; the reconciliation core only needs lookup and the
// payable listing, the rest is plain CRUD.
type Supplier struct {
	shared.BaseAggregateRoot
	Name   string         `json:"name"`
	Code   string         `json:"code"`
	Email  string         `json:"email"`
	Phone  string         `json:"phone"`
	Status SupplierStatus `json:"status"`
}

// NewSupplier creates an active supplier
func NewSupplier(name, code string) (*Supplier, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}
	if strings.TrimSpace(code) == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_CODE", "Supplier code cannot be empty")
	}

	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Code:              strings.ToUpper(strings.TrimSpace(code)),
		Status:            SupplierStatusActive,
	}, nil
}

// Deactivate marks the supplier inactive; purchases already on the books
// stay payable
func (s *Supplier) Deactivate() {
	s.Status = SupplierStatusInactive
	s.IncrementVersion()
}

// Activate marks the supplier active
func (s *Supplier) Activate() {
	s.Status = SupplierStatusActive
	s.IncrementVersion()
}

// IsActive returns true if new purchases may be registered for the supplier
func (s *Supplier) IsActive() bool {
	return s.Status == SupplierStatusActive
}
