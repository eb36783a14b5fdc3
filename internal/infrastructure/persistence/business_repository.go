package persistence

import (
	"context"
	"errors"

	"github.com/fakturly/backend/internal/domain/identity"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/fakturly/backend/internal/infrastructure/persistence/businessscope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBusinessRepository implements BusinessRepository using GORM
type GormBusinessRepository struct {
	db *gorm.DB
}

// NewGormBusinessRepository creates a new GormBusinessRepository
func NewGormBusinessRepository(db *gorm.DB) *GormBusinessRepository {
	return &GormBusinessRepository{db: db}
}

// FindByID finds a business by its ID
func (r *GormBusinessRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Business, error) {
	var business identity.Business
	if err := businessscope.Conn(ctx, r.db).First(&business, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &business, nil
}

// FindActiveByID finds a business by ID, skipping deactivated ones
func (r *GormBusinessRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (*identity.Business, error) {
	var business identity.Business
	if err := businessscope.Conn(ctx, r.db).
		Where("id = ? AND is_active = ?", id, true).
		First(&business).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &business, nil
}

// FindActiveByIDAndOwner finds an active business owned by the given
// principal. Context resolution tries this first; a hit means the caller
// owns the business and no delegation edge needs to be consulted.
func (r *GormBusinessRepository) FindActiveByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*identity.Business, error) {
	var business identity.Business
	if err := businessscope.Conn(ctx, r.db).
		Where("id = ? AND owner_id = ? AND is_active = ?", id, ownerID, true).
		First(&business).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &business, nil
}

// FindAllByOwner finds every business owned by the given principal
func (r *GormBusinessRepository) FindAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]identity.Business, error) {
	var businesses []identity.Business
	if err := businessscope.Conn(ctx, r.db).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&businesses).Error; err != nil {
		return nil, err
	}
	return businesses, nil
}

// CountByOwner counts businesses owned by the given principal
func (r *GormBusinessRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	if err := businessscope.Conn(ctx, r.db).
		Model(&identity.Business{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a business
func (r *GormBusinessRepository) Save(ctx context.Context, business *identity.Business) error {
	return businessscope.Conn(ctx, r.db).Save(business).Error
}

// Delete deletes a business
func (r *GormBusinessRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := businessscope.Conn(ctx, r.db).Delete(&identity.Business{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormBusinessRepository implements BusinessRepository
var _ identity.BusinessRepository = (*GormBusinessRepository)(nil)
