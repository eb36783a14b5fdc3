package invoicing

import (
	"context"
	"time"

	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod is the channel a payment arrived through
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "bank_transfer"
)

// Payment is money received against an invoice
type Payment struct {
	shared.BusinessEntity
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Method    PaymentMethod   `gorm:"type:varchar(20);not null;default:'bank_transfer'"`
	PaidAt    time.Time       `gorm:"not null"`
	Reference string          `gorm:"type:varchar(100)"`
	Notes     string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment records a payment against an invoice
func NewPayment(businessID, invoiceID uuid.UUID, amount decimal.Decimal, method PaymentMethod, paidAt time.Time, createdBy uuid.UUID) (*Payment, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Payment invoice is required")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	switch method {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer:
	default:
		return nil, shared.NewDomainError("INVALID_METHOD", "Unknown payment method")
	}

	if businessID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUSINESS", "Business is required")
	}

	return &Payment{
		BusinessEntity: shared.NewBusinessEntityWithCreator(businessID, createdBy),
		InvoiceID:      invoiceID,
		Amount:         amount,
		Method:         method,
		PaidAt:         paidAt,
	}, nil
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	FindByIDForBusiness(ctx context.Context, id, businessID uuid.UUID) (*Payment, error)
	FindAllForBusiness(ctx context.Context, businessID uuid.UUID, filter shared.Filter) ([]Payment, int64, error)
	FindAllForInvoice(ctx context.Context, invoiceID, businessID uuid.UUID) ([]Payment, error)
	Save(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, id, businessID uuid.UUID) error
}
