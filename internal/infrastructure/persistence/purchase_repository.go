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

// GormPurchaseRepository implements ledger.PurchaseRepository using GORM
type GormPurchaseRepository struct {
	db *gorm.DB
}

// NewGormPurchaseRepository creates a new GormPurchaseRepository
func NewGormPurchaseRepository(db *gorm.DB) *GormPurchaseRepository {
	return &GormPurchaseRepository{db: db}
}

// FindByID finds a purchase by its ID
func (r *GormPurchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Purchase, error) {
	var model models.PurchaseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindPayableBySupplier returns the supplier's purchases still carrying an
// open balance, oldest first. The ordering is a contract: the
// pay-everything flow settles debts in this order.
func (r *GormPurchaseRepository) FindPayableBySupplier(ctx context.Context, supplierID uuid.UUID) ([]*ledger.Purchase, error) {
	var rows []models.PurchaseModel
	err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND status IN ?", supplierID,
			[]ledger.PurchaseStatus{ledger.PurchaseStatusOpen, ledger.PurchaseStatusPartial}).
		Order("purchased_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	purchases := make([]*ledger.Purchase, len(rows))
	for i := range rows {
		purchases[i] = rows[i].ToDomain()
	}
	return purchases, nil
}

// FindAll returns purchases matching the filter
func (r *GormPurchaseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*ledger.Purchase, error) {
	var rows []models.PurchaseModel
	query := r.db.WithContext(ctx).Model(&models.PurchaseModel{})
	query = applyPurchaseFilter(query, filter)
	query = applyPagination(query, filter)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	purchases := make([]*ledger.Purchase, len(rows))
	for i := range rows {
		purchases[i] = rows[i].ToDomain()
	}
	return purchases, nil
}

// Count returns the number of purchases matching the filter
func (r *GormPurchaseRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.PurchaseModel{})
	query = applyPurchaseFilter(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists the purchase without a version check. Used only for the
// initial insert; all post-payment writes go through SaveWithLock.
func (r *GormPurchaseRepository) Save(ctx context.Context, purchase *ledger.Purchase) error {
	var model models.PurchaseModel
	model.FromDomain(purchase)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveWithLock persists the purchase only if the stored version is exactly
// one behind, surfacing lost races as CONCURRENCY_CONFLICT
func (r *GormPurchaseRepository) SaveWithLock(ctx context.Context, purchase *ledger.Purchase) error {
	var model models.PurchaseModel
	model.FromDomain(purchase)

	result := r.db.WithContext(ctx).
		Model(&models.PurchaseModel{}).
		Where("id = ? AND version = ?", purchase.ID, purchase.Version-1).
		Updates(map[string]interface{}{
			"paid_amount": model.PaidAmount,
			"open_amount": model.OpenAmount,
			"status":      model.Status,
			"settled_at":  model.SettledAt,
			"version":     model.Version,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: purchase %s was modified by another transaction",
			shared.ErrConcurrencyConflict, purchase.ID)
	}
	return nil
}

func applyPurchaseFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if supplierID, ok := filter.Filters["supplier_id"]; ok {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if filter.Search != "" {
		query = query.Where("description ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}

func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = "created_at"
	}
	orderDir := filter.OrderDir
	if orderDir != "asc" && orderDir != "desc" {
		orderDir = "desc"
	}
	query = query.Order(orderBy + " " + orderDir)

	if filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

// Ensure GormPurchaseRepository implements PurchaseRepository
var _ ledger.PurchaseRepository = (*GormPurchaseRepository)(nil)
