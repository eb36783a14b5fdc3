package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/fakturly/backend/internal/domain/invoicing"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/fakturly/backend/internal/infrastructure/persistence/businessscope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormExpenseRepository implements ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByIDForBusiness finds an expense by ID within a business
func (r *GormExpenseRepository) FindByIDForBusiness(ctx context.Context, id, businessID uuid.UUID) (*invoicing.Expense, error) {
	var expense invoicing.Expense
	if err := businessscope.Conn(ctx, r.db).
		Scopes(businessscope.Scope(businessID)).
		Where("id = ?", id).
		First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &expense, nil
}

// FindAllForBusiness finds the expenses of a business, returning the page
// and the total matching count
func (r *GormExpenseRepository) FindAllForBusiness(ctx context.Context, businessID uuid.UUID, filter shared.Filter) ([]invoicing.Expense, int64, error) {
	base := businessscope.Conn(ctx, r.db).
		Model(&invoicing.Expense{}).
		Scopes(businessscope.Scope(businessID))

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		base = base.Where("description ILIKE ? OR vendor ILIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "category_id":
			base = base.Where("category_id = ?", value)
		case "spent_after":
			base = base.Where("spent_at >= ?", value)
		case "spent_before":
			base = base.Where("spent_at < ?", value)
		}
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var expenses []invoicing.Expense
	if err := applyPagination(base, filter, ExpenseSortFields, "spent_at DESC").Find(&expenses).Error; err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

// CountForOwnerInMonth counts expenses across the organization spent within
// the calendar month containing at. Quotas box by the expense date, not the
// record date, so backdated entries land in their own month.
func (r *GormExpenseRepository) CountForOwnerInMonth(ctx context.Context, ownerID uuid.UUID, at time.Time) (int64, error) {
	start, end := monthBounds(at)

	var count int64
	if err := businessscope.Conn(ctx, r.db).
		Model(&invoicing.Expense{}).
		Joins("JOIN businesses ON businesses.id = expenses.business_id").
		Where("businesses.owner_id = ?", ownerID).
		Where("expenses.spent_at >= ? AND expenses.spent_at < ?", start, end).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an expense
func (r *GormExpenseRepository) Save(ctx context.Context, expense *invoicing.Expense) error {
	return businessscope.Conn(ctx, r.db).Save(expense).Error
}

// Delete deletes an expense within a business
func (r *GormExpenseRepository) Delete(ctx context.Context, id, businessID uuid.UUID) error {
	result := businessscope.Conn(ctx, r.db).
		Scopes(businessscope.Scope(businessID)).
		Delete(&invoicing.Expense{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormExpenseRepository implements ExpenseRepository
var _ invoicing.ExpenseRepository = (*GormExpenseRepository)(nil)
