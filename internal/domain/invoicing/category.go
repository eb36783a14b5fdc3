package invoicing

import (
	"context"
	"strings"
	"time"

	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CategoryKind separates product categories from expense categories
type CategoryKind string

const (
	CategoryKindProduct CategoryKind = "product"
	CategoryKindExpense CategoryKind = "expense"
)

// Category groups products or expenses within a business
type Category struct {
	shared.BusinessEntity
	Name        string       `gorm:"type:varchar(100);not null"`
	Kind        CategoryKind `gorm:"type:varchar(20);not null"`
	Description string       `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a category within a business
func NewCategory(businessID uuid.UUID, name string, kind CategoryKind, createdBy uuid.UUID) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name must be 1-100 characters")
	}
	if kind != CategoryKindProduct && kind != CategoryKindExpense {
		return nil, shared.NewDomainError("INVALID_KIND", "Unknown category kind")
	}

	if businessID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUSINESS", "Business is required")
	}

	return &Category{
		BusinessEntity: shared.NewBusinessEntityWithCreator(businessID, createdBy),
		Name:           name,
		Kind:           kind,
	}, nil
}

// Rename changes the category name
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name must be 1-100 characters")
	}
	c.Name = name
	c.UpdatedAt = time.Now()
	return nil
}

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	FindByIDForBusiness(ctx context.Context, id, businessID uuid.UUID) (*Category, error)
	FindAllForBusiness(ctx context.Context, businessID uuid.UUID, filter shared.Filter) ([]Category, int64, error)
	Save(ctx context.Context, category *Category) error
	Delete(ctx context.Context, id, businessID uuid.UUID) error
}
