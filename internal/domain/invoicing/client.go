// Package invoicing holds the tenant-scoped aggregates: clients, invoices,
// products, expenses, payments, categories and inventory movements. Every
// aggregate embeds shared.BusinessEntity and is only ever read or written
// through a resolved business context.
package invoicing

import (
	"context"
	"strings"
	"time"

	"github.com/fakturly/backend/internal/domain/rbac"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Client is a customer of a business. AssignedToID references the user a
// sales rep edge is keyed on; the assigned_only visibility scope filters
// on it.
type Client struct {
	shared.BusinessEntity
	Name         string     `gorm:"type:varchar(255);not null"`
	Email        string     `gorm:"type:varchar(255)"`
	Phone        string     `gorm:"type:varchar(20)"`
	Address      string     `gorm:"type:text"`
	VOEN         string     `gorm:"type:varchar(20)"`
	AssignedToID *uuid.UUID `gorm:"type:uuid;index"`
	Notes        string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}

// NewClient creates a client within a business
func NewClient(businessID uuid.UUID, name string, createdBy uuid.UUID) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 255 {
		return nil, shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 255 characters")
	}

	if businessID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUSINESS", "Business is required")
	}

	return &Client{
		BusinessEntity: shared.NewBusinessEntityWithCreator(businessID, createdBy),
		Name:           name,
	}, nil
}

// AssignTo assigns the client to a team member's user
func (c *Client) AssignTo(userID uuid.UUID) {
	if userID == uuid.Nil {
		c.AssignedToID = nil
	} else {
		c.AssignedToID = &userID
	}
	c.UpdatedAt = time.Now()
}

// IsAssignedTo reports whether the client is assigned to the given user
func (c *Client) IsAssignedTo(userID uuid.UUID) bool {
	return c.AssignedToID != nil && *c.AssignedToID == userID
}

// Rename changes the client name
func (c *Client) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	c.Name = name
	c.UpdatedAt = time.Now()
	return nil
}

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	// FindByIDForBusiness loads a client only if it falls within the
	// viewer's visibility; out-of-scope rows surface as not found.
	FindByIDForBusiness(ctx context.Context, id, businessID uuid.UUID, vis rbac.Visibility) (*Client, error)
	FindAllForBusiness(ctx context.Context, businessID uuid.UUID, vis rbac.Visibility, filter shared.Filter) ([]Client, int64, error)
	// CountForOwner counts clients across every business of the organization owner
	CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Save(ctx context.Context, client *Client) error
	Delete(ctx context.Context, id, businessID uuid.UUID) error
}
