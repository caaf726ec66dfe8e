package partner

import (
	"time"

	"github.com/financeiro/backend/internal/domain/partner"
	"github.com/google/uuid"
)

// CreateSupplierRequest is the payload for registering a supplier
type CreateSupplierRequest struct {
	Name  string `json:"name" binding:"required"`
	Code  string `json:"code" binding:"required"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// UpdateSupplierRequest is the payload for editing supplier contact data
type UpdateSupplierRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// SupplierResponse is the API representation of a supplier
type SupplierResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToSupplierResponse converts a domain supplier to its API representation
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:        s.ID,
		Name:      s.Name,
		Code:      s.Code,
		Email:     s.Email,
		Phone:     s.Phone,
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
