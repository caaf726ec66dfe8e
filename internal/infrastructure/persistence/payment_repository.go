package persistence

import (
	"context"
	"errors"

	"github.com/financeiro/backend/internal/domain/ledger"
	"github.com/financeiro/backend/internal/domain/shared"
	"github.com/financeiro/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements ledger.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPurchase returns all payments for a purchase, reversed ones
// included, in the order they were applied
func (r *GormPaymentRepository) FindByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]*ledger.Payment, error) {
	var rows []models.PaymentModel
	err := r.db.WithContext(ctx).
		Where("purchase_id = ?", purchaseID).
		Order("applied_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainPayments(rows), nil
}

// FindActiveByPurchase returns the purchase's payments that have not been
// reversed
func (r *GormPaymentRepository) FindActiveByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]*ledger.Payment, error) {
	var rows []models.PaymentModel
	err := r.db.WithContext(ctx).
		Where("purchase_id = ? AND reversed = ?", purchaseID, false).
		Order("applied_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toDomainPayments(rows), nil
}

// Create inserts a new payment record
func (r *GormPaymentRepository) Create(ctx context.Context, payment *ledger.Payment) error {
	var model models.PaymentModel
	model.FromDomain(payment)
	return r.db.WithContext(ctx).Create(&model).Error
}

// Update persists changes to an existing payment (reversal flags)
func (r *GormPaymentRepository) Update(ctx context.Context, payment *ledger.Payment) error {
	var model models.PaymentModel
	model.FromDomain(payment)
	return r.db.WithContext(ctx).Save(&model).Error
}

func toDomainPayments(rows []models.PaymentModel) []*ledger.Payment {
	payments := make([]*ledger.Payment, len(rows))
	for i := range rows {
		payments[i] = rows[i].ToDomain()
	}
	return payments
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ ledger.PaymentRepository = (*GormPaymentRepository)(nil)
