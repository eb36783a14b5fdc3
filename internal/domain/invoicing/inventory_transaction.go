package invoicing

import (
	"context"

	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryTransactionType is the direction of a stock movement
type InventoryTransactionType string

const (
	InventoryIn         InventoryTransactionType = "in"
	InventoryOut        InventoryTransactionType = "out"
	InventoryAdjustment InventoryTransactionType = "adjustment"
)

// InventoryTransaction is an immutable record of one stock movement
type InventoryTransaction struct {
	shared.BusinessEntity
	ProductID uuid.UUID                `gorm:"type:uuid;not null;index"`
	Type      InventoryTransactionType `gorm:"type:varchar(20);not null"`
	Quantity  decimal.Decimal          `gorm:"type:decimal(12,3);not null"`
	Note      string                   `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}

// NewInventoryTransaction records a stock movement. Quantity is always
// positive; the type carries the direction. Adjustments may carry a signed
// quantity.
func NewInventoryTransaction(businessID, productID uuid.UUID, txType InventoryTransactionType, quantity decimal.Decimal, createdBy uuid.UUID) (*InventoryTransaction, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Inventory transaction product is required")
	}
	switch txType {
	case InventoryIn, InventoryOut:
		if quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
	case InventoryAdjustment:
		if quantity.IsZero() {
			return nil, shared.NewDomainError("INVALID_QUANTITY", "Adjustment quantity cannot be zero")
		}
	default:
		return nil, shared.NewDomainError("INVALID_TYPE", "Unknown inventory transaction type")
	}

	if businessID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUSINESS", "Business is required")
	}

	return &InventoryTransaction{
		BusinessEntity: shared.NewBusinessEntityWithCreator(businessID, createdBy),
		ProductID:      productID,
		Type:           txType,
		Quantity:       quantity,
	}, nil
}

// StockDelta returns the signed effect of the movement on product stock
func (t *InventoryTransaction) StockDelta() decimal.Decimal {
	if t.Type == InventoryOut {
		return t.Quantity.Neg()
	}
	return t.Quantity
}

// InventoryTransactionRepository defines the interface for stock movement persistence
type InventoryTransactionRepository interface {
	FindByIDForBusiness(ctx context.Context, id, businessID uuid.UUID) (*InventoryTransaction, error)
	FindAllForBusiness(ctx context.Context, businessID uuid.UUID, filter shared.Filter) ([]InventoryTransaction, int64, error)
	FindAllForProduct(ctx context.Context, productID, businessID uuid.UUID) ([]InventoryTransaction, error)
	Save(ctx context.Context, tx *InventoryTransaction) error
}
