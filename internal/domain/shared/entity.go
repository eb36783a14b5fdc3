package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
}

// BaseEntity provides common fields for all entities
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// GetCreatedAt returns the creation timestamp
func (e *BaseEntity) GetCreatedAt() time.Time {
	return e.CreatedAt
}

// GetUpdatedAt returns the last update timestamp
func (e *BaseEntity) GetUpdatedAt() time.Time {
	return e.UpdatedAt
}

// NewBaseEntity creates a new base entity with generated ID
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BusinessEntity provides common fields for business-scoped entities.
// Every tenant-scoped record carries exactly one BusinessID; CreatedBy is
// kept for role-based row visibility (own_or_assigned filtering).
type BusinessEntity struct {
	BaseEntity
	BusinessID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy  *uuid.UUID `gorm:"type:uuid;index"`
}

// NewBusinessEntity creates a new business-scoped entity
func NewBusinessEntity(businessID uuid.UUID) BusinessEntity {
	return BusinessEntity{
		BaseEntity: NewBaseEntity(),
		BusinessID: businessID,
	}
}

// NewBusinessEntityWithCreator creates a new business-scoped entity with creator info
func NewBusinessEntityWithCreator(businessID, createdBy uuid.UUID) BusinessEntity {
	return BusinessEntity{
		BaseEntity: NewBaseEntity(),
		BusinessID: businessID,
		CreatedBy:  &createdBy,
	}
}

// SetCreatedBy sets the creator user ID
func (e *BusinessEntity) SetCreatedBy(userID uuid.UUID) {
	e.CreatedBy = &userID
}

// GetCreatedBy returns the creator user ID
func (e *BusinessEntity) GetCreatedBy() *uuid.UUID {
	return e.CreatedBy
}
