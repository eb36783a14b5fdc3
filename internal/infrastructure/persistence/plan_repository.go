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

// GormSubscriptionPlanRepository implements SubscriptionPlanRepository using GORM
type GormSubscriptionPlanRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionPlanRepository creates a new GormSubscriptionPlanRepository
func NewGormSubscriptionPlanRepository(db *gorm.DB) *GormSubscriptionPlanRepository {
	return &GormSubscriptionPlanRepository{db: db}
}

// FindByID finds a plan by its ID
func (r *GormSubscriptionPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.SubscriptionPlan, error) {
	var plan identity.SubscriptionPlan
	if err := businessscope.Conn(ctx, r.db).First(&plan, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// FindByName finds a plan by its slug name
func (r *GormSubscriptionPlanRepository) FindByName(ctx context.Context, name string) (*identity.SubscriptionPlan, error) {
	var plan identity.SubscriptionPlan
	if err := businessscope.Conn(ctx, r.db).
		Where("name = ?", name).
		First(&plan).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// FindAll returns every plan
func (r *GormSubscriptionPlanRepository) FindAll(ctx context.Context) ([]identity.SubscriptionPlan, error) {
	var plans []identity.SubscriptionPlan
	if err := businessscope.Conn(ctx, r.db).Order("created_at ASC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// Save creates or updates a plan
func (r *GormSubscriptionPlanRepository) Save(ctx context.Context, plan *identity.SubscriptionPlan) error {
	return businessscope.Conn(ctx, r.db).Save(plan).Error
}

// Ensure GormSubscriptionPlanRepository implements SubscriptionPlanRepository
var _ identity.SubscriptionPlanRepository = (*GormSubscriptionPlanRepository)(nil)
