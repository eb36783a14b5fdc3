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

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByIDForBusiness finds a category by ID within a business
func (r *GormCategoryRepository) FindByIDForBusiness(ctx context.Context, id, businessID uuid.UUID) (*invoicing.Category, error) {
	var category invoicing.Category
	if err := businessscope.Conn(ctx, r.db).
		Scopes(businessscope.Scope(businessID)).
		Where("id = ?", id).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// FindAllForBusiness finds the categories of a business, returning the page
// and the total matching count
func (r *GormCategoryRepository) FindAllForBusiness(ctx context.Context, businessID uuid.UUID, filter shared.Filter) ([]invoicing.Category, int64, error) {
	base := businessscope.Conn(ctx, r.db).
		Model(&invoicing.Category{}).
		Scopes(businessscope.Scope(businessID))

	if filter.Search != "" {
		base = base.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if kind, ok := filter.Filters["kind"]; ok {
		base = base.Where("kind = ?", kind)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var categories []invoicing.Category
	if err := applyPagination(base, filter, CategorySortFields, "name ASC").Find(&categories).Error; err != nil {
		return nil, 0, err
	}
	return categories, total, nil
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *invoicing.Category) error {
	return businessscope.Conn(ctx, r.db).Save(category).Error
}

// Delete deletes a category within a business
func (r *GormCategoryRepository) Delete(ctx context.Context, id, businessID uuid.UUID) error {
	result := businessscope.Conn(ctx, r.db).
		Scopes(businessscope.Scope(businessID)).
		Delete(&invoicing.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormCategoryRepository implements CategoryRepository
var _ invoicing.CategoryRepository = (*GormCategoryRepository)(nil)
