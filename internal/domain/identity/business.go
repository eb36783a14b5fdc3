package identity

import (
	"context"
	"strings"
	"time"

	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Business is the tenant unit: every tenant-scoped entity (client, invoice,
// product, expense, payment) belongs to exactly one business, and every
// business has exactly one owning principal.
type Business struct {
	shared.BaseEntity
	OwnerID             uuid.UUID `gorm:"type:uuid;not null;index"`
	Name                string    `gorm:"type:varchar(255);not null"`
	VOEN                string    `gorm:"type:varchar(20)"` // tax identifier
	LogoURL             string    `gorm:"type:varchar(500)"`
	Address             string    `gorm:"type:text"`
	City                string    `gorm:"type:varchar(100)"`
	Phone               string    `gorm:"type:varchar(20)"`
	Email               string    `gorm:"type:varchar(255)"`
	Website             string    `gorm:"type:varchar(255)"`
	BankName            string    `gorm:"type:varchar(255)"`
	IBAN                string    `gorm:"type:varchar(34)"`
	SWIFT               string    `gorm:"type:varchar(11)"`
	BudgetLimit         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:1000.00"`
	DefaultInvoiceTheme string          `gorm:"type:varchar(20);not null;default:'modern'"`
	IsActive            bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Business) TableName() string {
	return "businesses"
}

// NewBusiness creates a new business owned by the given principal
func NewBusiness(ownerID uuid.UUID, name string) (*Business, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Business name cannot be empty")
	}
	if len(name) > 255 {
		return nil, shared.NewDomainError("INVALID_NAME", "Business name cannot exceed 255 characters")
	}
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Business owner is required")
	}

	return &Business{
		BaseEntity:          shared.NewBaseEntity(),
		OwnerID:             ownerID,
		Name:                name,
		BudgetLimit:         decimal.NewFromInt(1000),
		DefaultInvoiceTheme: "modern",
		IsActive:            true,
	}, nil
}

// Rename changes the business name
func (b *Business) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Business name cannot be empty")
	}
	b.Name = name
	b.UpdatedAt = time.Now()
	return nil
}

// SetTheme changes the default invoice theme
func (b *Business) SetTheme(theme string) error {
	if theme == "" || len(theme) > 20 {
		return shared.NewDomainError("INVALID_THEME", "Invalid invoice theme")
	}
	b.DefaultInvoiceTheme = theme
	b.UpdatedAt = time.Now()
	return nil
}

// SetLogoURL sets the business logo URL
func (b *Business) SetLogoURL(url string) error {
	if len(url) > 500 {
		return shared.NewDomainError("INVALID_URL", "Logo URL cannot exceed 500 characters")
	}
	b.LogoURL = url
	b.UpdatedAt = time.Now()
	return nil
}

// Deactivate soft-disables the business; inactive businesses never resolve
// as an active business context.
func (b *Business) Deactivate() {
	b.IsActive = false
	b.UpdatedAt = time.Now()
}

// Activate re-enables the business
func (b *Business) Activate() {
	b.IsActive = true
	b.UpdatedAt = time.Now()
}

// IsOwnedBy returns true if the given principal owns this business
func (b *Business) IsOwnedBy(userID uuid.UUID) bool {
	return b.OwnerID == userID
}

// BusinessRepository defines the interface for business persistence
type BusinessRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Business, error)
	// FindActiveByID returns only businesses with IsActive = true
	FindActiveByID(ctx context.Context, id uuid.UUID) (*Business, error)
	// FindActiveByIDAndOwner is the ownership short-circuit lookup
	FindActiveByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*Business, error)
	FindAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]Business, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Save(ctx context.Context, business *Business) error
	Delete(ctx context.Context, id uuid.UUID) error
}
