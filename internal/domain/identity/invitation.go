package identity

import (
	"context"
	"strings"
	"time"

	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TeamMemberInvitation is a pending delegation: an invite sent to an email
// address that has no account yet. When that email registers, the invitation
// is consumed exactly once and a TeamMember edge is created.
type TeamMemberInvitation struct {
	shared.BaseEntity
	InviterID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	BusinessID *uuid.UUID `gorm:"type:uuid;index"`
	Email      string     `gorm:"type:varchar(255);not null;index"`
	Role       Role       `gorm:"type:varchar(20);not null"`
	IsUsed     bool       `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (TeamMemberInvitation) TableName() string {
	return "team_member_invitations"
}

// NewTeamMemberInvitation creates a pending invitation.
// InviterID must already be the corporate owner: callers resolve manager
// invites to the root owner before constructing the invitation.
func NewTeamMemberInvitation(inviterID uuid.UUID, businessID *uuid.UUID, email string, role Role) (*TeamMemberInvitation, error) {
	if err := ValidateRole(role); err != nil {
		return nil, err
	}
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("INVALID_EMAIL", "A valid email address is required")
	}
	if inviterID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVITER", "Inviter is required")
	}

	return &TeamMemberInvitation{
		BaseEntity: shared.NewBaseEntity(),
		InviterID:  inviterID,
		BusinessID: businessID,
		Email:      email,
		Role:       role,
	}, nil
}

// Consume marks the invitation as used. Consuming twice is an invariant
// violation surfaced as a conflict, never silently ignored.
func (i *TeamMemberInvitation) Consume() error {
	if i.IsUsed {
		return shared.NewDomainError("INVITATION_USED", "Invitation has already been used")
	}
	i.IsUsed = true
	i.UpdatedAt = time.Now()
	return nil
}

// TeamMemberInvitationRepository defines the interface for invitation persistence
type TeamMemberInvitationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TeamMemberInvitation, error)
	// FindPendingByEmail matches case-insensitively and returns only unused invitations
	FindPendingByEmail(ctx context.Context, email string) ([]TeamMemberInvitation, error)
	// FindAllPendingByInviter lists unused invitations sent on behalf of an organization
	FindAllPendingByInviter(ctx context.Context, inviterID uuid.UUID) ([]TeamMemberInvitation, error)
	// ExistsPending checks for an open invitation from an inviter to an email
	ExistsPending(ctx context.Context, inviterID uuid.UUID, email string) (bool, error)
	// CountPendingByInviter counts unused invitations; these occupy team-member quota
	CountPendingByInviter(ctx context.Context, inviterID uuid.UUID) (int64, error)
	Save(ctx context.Context, invitation *TeamMemberInvitation) error
	Delete(ctx context.Context, id uuid.UUID) error
}
