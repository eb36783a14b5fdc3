package invoicing

import (
	"context"
	"strings"
	"time"

	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item or service of a business
type Product struct {
	shared.BusinessEntity
	Name        string          `gorm:"type:varchar(255);not null"`
	SKU         string          `gorm:"type:varchar(50)"`
	Description string          `gorm:"type:text"`
	Unit        string          `gorm:"type:varchar(20);not null;default:'pcs'"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Stock       decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index"`
	IsActive    bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a product within a business
func NewProduct(businessID uuid.UUID, name string, price decimal.Decimal, createdBy uuid.UUID) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 255 {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 255 characters")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}

	if businessID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUSINESS", "Business is required")
	}

	return &Product{
		BusinessEntity: shared.NewBusinessEntityWithCreator(businessID, createdBy),
		Name:           name,
		Unit:           "pcs",
		Price:          price,
		IsActive:       true,
	}, nil
}

// SetPrice updates the unit price
func (p *Product) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}
	p.Price = price
	p.UpdatedAt = time.Now()
	return nil
}

// AdjustStock applies a signed quantity delta. The resulting stock may not
// go negative.
func (p *Product) AdjustStock(delta decimal.Decimal) error {
	next := p.Stock.Add(delta)
	if next.IsNegative() {
		return shared.NewDomainError("INSUFFICIENT_STOCK", "Stock cannot go below zero")
	}
	p.Stock = next
	p.UpdatedAt = time.Now()
	return nil
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByIDForBusiness(ctx context.Context, id, businessID uuid.UUID) (*Product, error)
	FindAllForBusiness(ctx context.Context, businessID uuid.UUID, filter shared.Filter) ([]Product, int64, error)
	CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Save(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id, businessID uuid.UUID) error
}
