package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/financeiro/backend/internal/domain/ledger"
	"github.com/financeiro/backend/internal/domain/shared"
	"github.com/financeiro/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountRepository implements ledger.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByID finds a settlement account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.SettlementAccount, error) {
	var model models.SettlementAccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save persists the account without a version check. Used only for the
// initial insert.
func (r *GormAccountRepository) Save(ctx context.Context, account *ledger.SettlementAccount) error {
	var model models.SettlementAccountModel
	model.FromDomain(account)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveWithLock writes the balance conditioned on the version it was read
// at. A zero-row update means another transaction moved the balance first.
func (r *GormAccountRepository) SaveWithLock(ctx context.Context, account *ledger.SettlementAccount) error {
	var model models.SettlementAccountModel
	model.FromDomain(account)

	result := r.db.WithContext(ctx).
		Model(&models.SettlementAccountModel{}).
		Where("id = ? AND version = ?", account.ID, account.Version-1).
		Updates(map[string]interface{}{
			"current_balance": model.CurrentBalance,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: account %s was modified by another transaction",
			shared.ErrConcurrencyConflict, account.ID)
	}
	return nil
}

// Ensure GormAccountRepository implements AccountRepository
var _ ledger.AccountRepository = (*GormAccountRepository)(nil)
