package invoicing

import (
	"context"
	"errors"
	"time"

	"github.com/fakturly/backend/internal/application/billing"
	identityapp "github.com/fakturly/backend/internal/application/identity"
	"github.com/fakturly/backend/internal/domain/invoicing"
	"github.com/fakturly/backend/internal/domain/rbac"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateExpenseInput contains expense creation data
type CreateExpenseInput struct {
	Description string          `json:"description" binding:"required,max=500"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	SpentAt     time.Time       `json:"spent_at" binding:"required"`
	Vendor      string          `json:"vendor" binding:"max=255"`
	CategoryID  *uuid.UUID      `json:"category_id"`
}

// UpdateExpenseInput contains expense fields; nil fields are left unchanged
type UpdateExpenseInput struct {
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	SpentAt     *time.Time       `json:"spent_at"`
	Vendor      *string          `json:"vendor"`
	CategoryID  *uuid.UUID       `json:"category_id"`
}

// ExpenseService manages the expenses of a business
type ExpenseService struct {
	expenseRepo  invoicing.ExpenseRepository
	categoryRepo invoicing.CategoryRepository
	planLimits   *billing.PlanLimitService
	tx           shared.Transactor
	logger       *zap.Logger
}

// NewExpenseService creates a new expense service
func NewExpenseService(
	expenseRepo invoicing.ExpenseRepository,
	categoryRepo invoicing.CategoryRepository,
	planLimits *billing.PlanLimitService,
	tx shared.Transactor,
	logger *zap.Logger,
) *ExpenseService {
	return &ExpenseService{
		expenseRepo:  expenseRepo,
		categoryRepo: categoryRepo,
		planLimits:   planLimits,
		tx:           tx,
		logger:       logger,
	}
}

// ListExpenses returns the business's expenses
func (s *ExpenseService) ListExpenses(ctx context.Context, rc *identityapp.ResolvedContext, filter shared.Filter) (*shared.Paginated[invoicing.Expense], error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityExpense, rbac.VerbRead); err != nil {
		return nil, err
	}

	expenses, total, err := s.expenseRepo.FindAllForBusiness(ctx, rc.Business.ID, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(expenses, total, filter.Page, filter.PageSize)
	return &result, nil
}

// GetExpense returns one expense of the business
func (s *ExpenseService) GetExpense(ctx context.Context, rc *identityapp.ResolvedContext, id uuid.UUID) (*invoicing.Expense, error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityExpense, rbac.VerbRead); err != nil {
		return nil, err
	}
	return s.expenseRepo.FindByIDForBusiness(ctx, id, rc.Business.ID)
}

// CreateExpense records an expense, subject to the organization's monthly
// expense limit.
func (s *ExpenseService) CreateExpense(ctx context.Context, rc *identityapp.ResolvedContext, input CreateExpenseInput) (*invoicing.Expense, error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityExpense, rbac.VerbCreate); err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if err := s.checkCategory(ctx, rc.Business.ID, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	expense, err := invoicing.NewExpense(rc.Business.ID, input.Description, input.Amount, input.SpentAt, rc.UserID)
	if err != nil {
		return nil, err
	}
	expense.Vendor = input.Vendor
	expense.CategoryID = input.CategoryID

	// Monthly quota count and insert share one transaction
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.planLimits.EnforceLimit(ctx, rc.OwnerID(), billing.ResourceExpenses); err != nil {
			return err
		}
		if err := s.expenseRepo.Save(ctx, expense); err != nil {
			s.logger.Error("Failed to create expense", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Expense creation failed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return expense, nil
}

// UpdateExpense applies the non-nil fields of the input
func (s *ExpenseService) UpdateExpense(ctx context.Context, rc *identityapp.ResolvedContext, id uuid.UUID, input UpdateExpenseInput) (*invoicing.Expense, error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityExpense, rbac.VerbUpdate); err != nil {
		return nil, err
	}

	expense, err := s.expenseRepo.FindByIDForBusiness(ctx, id, rc.Business.ID)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		expense.Description = *input.Description
	}
	if input.Amount != nil {
		if input.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
		}
		expense.Amount = *input.Amount
	}
	if input.SpentAt != nil {
		expense.SpentAt = *input.SpentAt
	}
	if input.Vendor != nil {
		expense.Vendor = *input.Vendor
	}
	if input.CategoryID != nil {
		if *input.CategoryID == uuid.Nil {
			expense.CategoryID = nil
		} else {
			if err := s.checkCategory(ctx, rc.Business.ID, *input.CategoryID); err != nil {
				return nil, err
			}
			expense.CategoryID = input.CategoryID
		}
	}
	expense.UpdatedAt = time.Now()

	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		s.logger.Error("Failed to update expense", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Expense update failed")
	}
	return expense, nil
}

// DeleteExpense removes an expense
func (s *ExpenseService) DeleteExpense(ctx context.Context, rc *identityapp.ResolvedContext, id uuid.UUID) error {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityExpense, rbac.VerbDelete); err != nil {
		return err
	}
	return s.expenseRepo.Delete(ctx, id, rc.Business.ID)
}

// checkCategory verifies the category exists in the business and groups expenses
func (s *ExpenseService) checkCategory(ctx context.Context, businessID, categoryID uuid.UUID) error {
	category, err := s.categoryRepo.FindByIDForBusiness(ctx, categoryID, businessID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found in this business")
		}
		return err
	}
	if category.Kind != invoicing.CategoryKindExpense {
		return shared.NewDomainError("INVALID_CATEGORY", "Category is not an expense category")
	}
	return nil
}
