package invoicing

import (
	"context"
	"strings"
	"time"

	"github.com/fakturly/backend/internal/domain/rbac"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice is a bill issued by a business to one of its clients. CreatedBy
// and the client's assignment together drive the own_or_assigned visibility
// scope for sales reps.
type Invoice struct {
	shared.BusinessEntity
	ClientID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceNumber string          `gorm:"type:varchar(50);not null"`
	Status        InvoiceStatus   `gorm:"type:varchar(20);not null;default:'draft'"`
	IssueDate     time.Time       `gorm:"not null"`
	DueDate       time.Time       `gorm:"not null"`
	Currency      string          `gorm:"type:varchar(3);not null;default:'AZN'"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Theme         string          `gorm:"type:varchar(20)"`
	Notes         string          `gorm:"type:text"`
	Items         []InvoiceItem   `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceItem is one billed line of an invoice
type InvoiceItem struct {
	shared.BaseEntity
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// TableName returns the table name for GORM
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// NewInvoice creates a draft invoice for a client
func NewInvoice(businessID, clientID, createdBy uuid.UUID, number string, issueDate, dueDate time.Time) (*Invoice, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Invoice client is required")
	}
	if dueDate.Before(issueDate) {
		return nil, shared.NewDomainError("INVALID_DATES", "Due date cannot be before issue date")
	}

	if businessID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUSINESS", "Business is required")
	}

	return &Invoice{
		BusinessEntity: shared.NewBusinessEntityWithCreator(businessID, createdBy),
		ClientID:       clientID,
		InvoiceNumber:  number,
		Status:         InvoiceStatusDraft,
		IssueDate:      issueDate,
		DueDate:        dueDate,
		Currency:       "AZN",
	}, nil
}

// AddItem appends a line and recalculates totals
func (i *Invoice) AddItem(description string, quantity, unitPrice decimal.Decimal) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return shared.NewDomainError("INVALID_ITEM", "Item description cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_ITEM", "Item quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_ITEM", "Item price cannot be negative")
	}

	item := InvoiceItem{
		BaseEntity:  shared.NewBaseEntity(),
		InvoiceID:   i.ID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      quantity.Mul(unitPrice).Round(2),
	}
	i.Items = append(i.Items, item)
	i.recalculate()
	return nil
}

// SetTaxRate sets the tax rate percentage and recalculates totals
func (i *Invoice) SetTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewDomainError("INVALID_TAX", "Tax rate must be between 0 and 100")
	}
	i.TaxRate = rate
	i.recalculate()
	return nil
}

func (i *Invoice) recalculate() {
	subtotal := decimal.Zero
	for _, item := range i.Items {
		subtotal = subtotal.Add(item.Amount)
	}
	i.Subtotal = subtotal
	i.TaxAmount = subtotal.Mul(i.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	i.Total = i.Subtotal.Add(i.TaxAmount)
	i.UpdatedAt = time.Now()
}

// MarkSent transitions a draft invoice to sent
func (i *Invoice) MarkSent() error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATUS", "Only draft invoices can be sent")
	}
	i.Status = InvoiceStatusSent
	i.UpdatedAt = time.Now()
	return nil
}

// MarkPaid transitions the invoice to paid
func (i *Invoice) MarkPaid() error {
	if i.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATUS", "Cancelled invoices cannot be paid")
	}
	i.Status = InvoiceStatusPaid
	i.UpdatedAt = time.Now()
	return nil
}

// Cancel voids the invoice
func (i *Invoice) Cancel() error {
	if i.Status == InvoiceStatusPaid {
		return shared.NewDomainError("INVALID_STATUS", "Paid invoices cannot be cancelled")
	}
	i.Status = InvoiceStatusCancelled
	i.UpdatedAt = time.Now()
	return nil
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	FindByIDForBusiness(ctx context.Context, id, businessID uuid.UUID, vis rbac.Visibility) (*Invoice, error)
	FindAllForBusiness(ctx context.Context, businessID uuid.UUID, vis rbac.Visibility, filter shared.Filter) ([]Invoice, int64, error)
	// CountForOwnerInMonth counts invoices across the organization created
	// within the calendar month containing at
	CountForOwnerInMonth(ctx context.Context, ownerID uuid.UUID, at time.Time) (int64, error)
	Save(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, id, businessID uuid.UUID) error
}
