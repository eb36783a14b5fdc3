package identity

import (
	"context"
	"time"

	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TeamMember is a delegation edge: it grants UserID a role within the
// organization rooted at CorporateOwnerID.
//
// CorporateOwnerID always points at the single root organization owner.
// It is resolved once when the edge is written (a manager inviting on the
// owner's behalf records the owner, not themself), so reads never need to
// chase delegation chains.
type TeamMember struct {
	shared.BaseEntity
	CorporateOwnerID uuid.UUID  `gorm:"type:uuid;not null;index:idx_team_members_owner"`
	BusinessID       *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_team_members_business_user"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_team_members_business_user"`
	Role             Role       `gorm:"type:varchar(20);not null"`
	MonthlyTarget    *decimal.Decimal `gorm:"type:decimal(10,2)"`
	LastLatitude     *decimal.Decimal `gorm:"type:decimal(9,6)"`
	LastLongitude    *decimal.Decimal `gorm:"type:decimal(9,6)"`
	LastLocationAt   *time.Time
}

// TableName returns the table name for GORM
func (TeamMember) TableName() string {
	return "team_members"
}

// NewTeamMember creates a delegation edge for a business within an organization
func NewTeamMember(corporateOwnerID, userID uuid.UUID, businessID *uuid.UUID, role Role) (*TeamMember, error) {
	if err := ValidateRole(role); err != nil {
		return nil, err
	}
	if corporateOwnerID == uuid.Nil || userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEMBER", "Owner and member are required")
	}
	if corporateOwnerID == userID {
		return nil, shared.NewDomainError("SELF_INVITE", "You cannot add yourself to your own team")
	}

	return &TeamMember{
		BaseEntity:       shared.NewBaseEntity(),
		CorporateOwnerID: corporateOwnerID,
		BusinessID:       businessID,
		UserID:           userID,
		Role:             role,
	}, nil
}

// ChangeRole reassigns the member's role
func (m *TeamMember) ChangeRole(role Role) error {
	if err := ValidateRole(role); err != nil {
		return err
	}
	m.Role = role
	m.UpdatedAt = time.Now()
	return nil
}

// SetMonthlyTarget sets the member's monthly sales target.
// Zero is a valid target; negative values are not.
func (m *TeamMember) SetMonthlyTarget(target decimal.Decimal) error {
	if target.IsNegative() {
		return shared.NewDomainError("INVALID_TARGET", "Monthly target cannot be negative")
	}
	if target.GreaterThan(decimal.RequireFromString("99999999.99")) {
		return shared.NewDomainError("INVALID_TARGET", "Monthly target exceeds the allowed maximum")
	}
	m.MonthlyTarget = &target
	m.UpdatedAt = time.Now()
	return nil
}

// UpdateLocation records the member's last known coordinates
func (m *TeamMember) UpdateLocation(latitude, longitude decimal.Decimal) error {
	if latitude.LessThan(decimal.NewFromInt(-90)) || latitude.GreaterThan(decimal.NewFromInt(90)) {
		return shared.NewDomainError("INVALID_LOCATION", "Latitude must be between -90 and 90")
	}
	if longitude.LessThan(decimal.NewFromInt(-180)) || longitude.GreaterThan(decimal.NewFromInt(180)) {
		return shared.NewDomainError("INVALID_LOCATION", "Longitude must be between -180 and 180")
	}
	now := time.Now()
	m.LastLatitude = &latitude
	m.LastLongitude = &longitude
	m.LastLocationAt = &now
	m.UpdatedAt = now
	return nil
}

// BelongsToBusiness returns true if the edge covers the given business.
// An edge with a nil BusinessID is organization-wide (legacy schema rows).
func (m *TeamMember) BelongsToBusiness(businessID uuid.UUID) bool {
	return m.BusinessID == nil || *m.BusinessID == businessID
}

// TeamMemberRepository defines the interface for team member persistence
type TeamMemberRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TeamMember, error)
	// FindEdge looks up the delegation edge from an organization owner to a
	// member, restricted to edges covering businessID (or org-wide edges).
	FindEdge(ctx context.Context, corporateOwnerID, userID uuid.UUID, businessID uuid.UUID) (*TeamMember, error)
	// FindByOwnerAndUser finds any edge between an owner and a user
	FindByOwnerAndUser(ctx context.Context, corporateOwnerID, userID uuid.UUID) (*TeamMember, error)
	// FindAnyByUser finds the edge a user holds as a member of any
	// organization. Used for the single legacy hop when a business owner is
	// themself a delegated member.
	FindAnyByUser(ctx context.Context, userID uuid.UUID) (*TeamMember, error)
	FindAllByOwner(ctx context.Context, corporateOwnerID uuid.UUID) ([]TeamMember, error)
	CountByOwner(ctx context.Context, corporateOwnerID uuid.UUID) (int64, error)
	// ExistsForBusinessAndUser backs the (business, user) uniqueness invariant
	ExistsForBusinessAndUser(ctx context.Context, businessID, userID uuid.UUID) (bool, error)
	Save(ctx context.Context, member *TeamMember) error
	Delete(ctx context.Context, id uuid.UUID) error
}
