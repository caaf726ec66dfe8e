package models

import (
	"time"

	"github.com/financeiro/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseModel is the persistence model for the Purchase aggregate
type PurchaseModel struct {
	AuditedAggregateModel
	SupplierID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	Description string                `gorm:"type:varchar(500);not null"`
	TotalAmount decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	PaidAmount  decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	OpenAmount  decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Status      ledger.PurchaseStatus `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	PurchasedAt time.Time             `gorm:"not null;index"`
	SettledAt   *time.Time
}

// TableName returns the table name for GORM
func (PurchaseModel) TableName() string {
	return "purchases"
}

// ToDomain converts the persistence model to a domain Purchase
func (m *PurchaseModel) ToDomain() *ledger.Purchase {
	return &ledger.Purchase{
		AuditedAggregateRoot: m.ToDomainAuditedAggregateRoot(),
		SupplierID:           m.SupplierID,
		Description:          m.Description,
		TotalAmount:          m.TotalAmount,
		PaidAmount:           m.PaidAmount,
		OpenAmount:           m.OpenAmount,
		Status:               m.Status,
		PurchasedAt:          m.PurchasedAt,
		SettledAt:            m.SettledAt,
	}
}

// FromDomain populates the persistence model from a domain Purchase
func (m *PurchaseModel) FromDomain(p *ledger.Purchase) {
	m.FromDomainAuditedAggregateRoot(p.AuditedAggregateRoot)
	m.SupplierID = p.SupplierID
	m.Description = p.Description
	m.TotalAmount = p.TotalAmount
	m.PaidAmount = p.PaidAmount
	m.OpenAmount = p.OpenAmount
	m.Status = p.Status
	m.PurchasedAt = p.PurchasedAt
	m.SettledAt = p.SettledAt
}

// PaymentModel is the persistence model for Payment records
type PaymentModel struct {
	BaseModel
	PurchaseID uuid.UUID          `gorm:"type:uuid;not null;index"`
	AccountID  uuid.UUID          `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal    `gorm:"type:decimal(18,2);not null"`
	Kind       ledger.PaymentKind `gorm:"type:varchar(20);not null"`
	AppliedAt  time.Time          `gorm:"not null;index"`
	CreatedBy  uuid.UUID          `gorm:"type:uuid;not null"`
	Note       string             `gorm:"type:text"`
	Reversed   bool               `gorm:"not null;default:false;index"`
	ReversedAt *time.Time
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *ledger.Payment {
	return &ledger.Payment{
		BaseEntity: m.BaseModel.ToDomain(),
		PurchaseID: m.PurchaseID,
		AccountID:  m.AccountID,
		Amount:     m.Amount,
		Kind:       m.Kind,
		AppliedAt:  m.AppliedAt,
		CreatedBy:  m.CreatedBy,
		Note:       m.Note,
		Reversed:   m.Reversed,
		ReversedAt: m.ReversedAt,
	}
}

// FromDomain populates the persistence model from a domain Payment
func (m *PaymentModel) FromDomain(p *ledger.Payment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.PurchaseID = p.PurchaseID
	m.AccountID = p.AccountID
	m.Amount = p.Amount
	m.Kind = p.Kind
	m.AppliedAt = p.AppliedAt
	m.CreatedBy = p.CreatedBy
	m.Note = p.Note
	m.Reversed = p.Reversed
	m.ReversedAt = p.ReversedAt
}

// SettlementAccountModel is the persistence model for SettlementAccount
type SettlementAccountModel struct {
	AggregateModel
	Name           string          `gorm:"type:varchar(200);not null"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (SettlementAccountModel) TableName() string {
	return "settlement_accounts"
}

// ToDomain converts the persistence model to a domain SettlementAccount
func (m *SettlementAccountModel) ToDomain() *ledger.SettlementAccount {
	return &ledger.SettlementAccount{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		CurrentBalance:    m.CurrentBalance,
	}
}

// FromDomain populates the persistence model from a domain SettlementAccount
func (m *SettlementAccountModel) FromDomain(a *ledger.SettlementAccount) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.Name = a.Name
	m.CurrentBalance = a.CurrentBalance
}
