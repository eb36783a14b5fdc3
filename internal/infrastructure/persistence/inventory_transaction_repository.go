package persistence

import (
	"context"
	"errors"

	"github.com/fakturly/backend/internal/domain/invoicing"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/fakturly/backend/internal/infrastructure/persistence/businessscope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInventoryTransactionRepository implements InventoryTransactionRepository
// using GORM. Movements are append-only; there is no delete.
type GormInventoryTransactionRepository struct {
	db *gorm.DB
}

// NewGormInventoryTransactionRepository creates a new GormInventoryTransactionRepository
func NewGormInventoryTransactionRepository(db *gorm.DB) *GormInventoryTransactionRepository {
	return &GormInventoryTransactionRepository{db: db}
}

// FindByIDForBusiness finds a movement by ID within a business
func (r *GormInventoryTransactionRepository) FindByIDForBusiness(ctx context.Context, id, businessID uuid.UUID) (*invoicing.InventoryTransaction, error) {
	var movement invoicing.InventoryTransaction
	if err := businessscope.Conn(ctx, r.db).
		Scopes(businessscope.Scope(businessID)).
		Where("id = ?", id).
		First(&movement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// FindAllForBusiness finds the movements of a business, returning the page
// and the total matching count
func (r *GormInventoryTransactionRepository) FindAllForBusiness(ctx context.Context, businessID uuid.UUID, filter shared.Filter) ([]invoicing.InventoryTransaction, int64, error) {
	base := businessscope.Conn(ctx, r.db).
		Model(&invoicing.InventoryTransaction{}).
		Scopes(businessscope.Scope(businessID))

	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			base = base.Where("product_id = ?", value)
		case "type":
			base = base.Where("type = ?", value)
		}
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movements []invoicing.InventoryTransaction
	if err := applyPagination(base, filter, InventoryTransactionSortFields, "created_at DESC").Find(&movements).Error; err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}

// FindAllForProduct finds every movement of a product, oldest first
func (r *GormInventoryTransactionRepository) FindAllForProduct(ctx context.Context, productID, businessID uuid.UUID) ([]invoicing.InventoryTransaction, error) {
	var movements []invoicing.InventoryTransaction
	if err := businessscope.Conn(ctx, r.db).
		Scopes(businessscope.Scope(businessID)).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Save records a movement
func (r *GormInventoryTransactionRepository) Save(ctx context.Context, movement *invoicing.InventoryTransaction) error {
	return businessscope.Conn(ctx, r.db).Save(movement).Error
}

// Ensure GormInventoryTransactionRepository implements InventoryTransactionRepository
var _ invoicing.InventoryTransactionRepository = (*GormInventoryTransactionRepository)(nil)
