package models

import (
	"github.com/financeiro/backend/internal/domain/partner"
)

// SupplierModel is the persistence model for the Supplier aggregate
type SupplierModel struct {
	AggregateModel
	Name   string                 `gorm:"type:varchar(200);not null"`
	Code   string                 `gorm:"type:varchar(50);not null;uniqueIndex"`
	Email  string                 `gorm:"type:varchar(200)"`
	Phone  string                 `gorm:"type:varchar(50)"`
	Status partner.SupplierStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Code:              m.Code,
		Email:             m.Email,
		Phone:             m.Phone,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Supplier
func (m *SupplierModel) FromDomain(s *partner.Supplier) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.Name = s.Name
	m.Code = s.Code
	m.Email = s.Email
	m.Phone = s.Phone
	m.Status = s.Status
}
