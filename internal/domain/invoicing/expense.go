package invoicing

import (
	"context"
	"strings"
	"time"

	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is money spent by a business
type Expense struct {
	shared.BusinessEntity
	Description string          `gorm:"type:varchar(500);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'AZN'"`
	SpentAt     time.Time       `gorm:"not null;index"`
	Vendor      string          `gorm:"type:varchar(255)"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Expense) TableName() string {
	return "expenses"
}

// NewExpense records an expense for a business
func NewExpense(businessID uuid.UUID, description string, amount decimal.Decimal, spentAt time.Time, createdBy uuid.UUID) (*Expense, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Expense description cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}

	if businessID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUSINESS", "Business is required")
	}

	return &Expense{
		BusinessEntity: shared.NewBusinessEntityWithCreator(businessID, createdBy),
		Description:    description,
		Amount:         amount,
		Currency:       "AZN",
		SpentAt:        spentAt,
	}, nil
}

// ExpenseRepository defines the interface for expense persistence
type ExpenseRepository interface {
	FindByIDForBusiness(ctx context.Context, id, businessID uuid.UUID) (*Expense, error)
	FindAllForBusiness(ctx context.Context, businessID uuid.UUID, filter shared.Filter) ([]Expense, int64, error)
	// CountForOwnerInMonth counts expenses across the organization created
	// within the calendar month containing at
	CountForOwnerInMonth(ctx context.Context, ownerID uuid.UUID, at time.Time) (int64, error)
	Save(ctx context.Context, expense *Expense) error
	Delete(ctx context.Context, id, businessID uuid.UUID) error
}
