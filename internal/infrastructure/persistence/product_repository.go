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

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByIDForBusiness finds a product by ID within a business
func (r *GormProductRepository) FindByIDForBusiness(ctx context.Context, id, businessID uuid.UUID) (*invoicing.Product, error) {
	var product invoicing.Product
	if err := businessscope.Conn(ctx, r.db).
		Scopes(businessscope.Scope(businessID)).
		Where("id = ?", id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindAllForBusiness finds the products of a business, returning the page
// and the total matching count
func (r *GormProductRepository) FindAllForBusiness(ctx context.Context, businessID uuid.UUID, filter shared.Filter) ([]invoicing.Product, int64, error) {
	base := businessscope.Conn(ctx, r.db).
		Model(&invoicing.Product{}).
		Scopes(businessscope.Scope(businessID))
	base = r.applyFilterWithoutPagination(base, filter)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []invoicing.Product
	if err := applyPagination(base, filter, ProductSortFields, "name ASC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// CountForOwner counts products across every business of the organization owner
func (r *GormProductRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	if err := businessscope.Conn(ctx, r.db).
		Model(&invoicing.Product{}).
		Joins("JOIN businesses ON businesses.id = products.business_id").
		Where("businesses.owner_id = ?", ownerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *invoicing.Product) error {
	return businessscope.Conn(ctx, r.db).Save(product).Error
}

// Delete deletes a product within a business
func (r *GormProductRepository) Delete(ctx context.Context, id, businessID uuid.UUID) error {
	result := businessscope.Conn(ctx, r.db).
		Scopes(businessscope.Scope(businessID)).
		Delete(&invoicing.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilterWithoutPagination applies search and field filters to the query
func (r *GormProductRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR sku ILIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "category_id":
			query = query.Where("category_id = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		case "in_stock":
			if value == true {
				query = query.Where("stock > 0")
			}
		}
	}

	return query
}

// Ensure GormProductRepository implements ProductRepository
var _ invoicing.ProductRepository = (*GormProductRepository)(nil)
