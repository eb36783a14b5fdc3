package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/fakturly/backend/internal/domain/identity"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/fakturly/backend/internal/infrastructure/persistence/businessscope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTeamMemberInvitationRepository implements TeamMemberInvitationRepository using GORM
type GormTeamMemberInvitationRepository struct {
	db *gorm.DB
}

// NewGormTeamMemberInvitationRepository creates a new GormTeamMemberInvitationRepository
func NewGormTeamMemberInvitationRepository(db *gorm.DB) *GormTeamMemberInvitationRepository {
	return &GormTeamMemberInvitationRepository{db: db}
}

// FindByID finds an invitation by its ID
func (r *GormTeamMemberInvitationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.TeamMemberInvitation, error) {
	var invitation identity.TeamMemberInvitation
	if err := businessscope.Conn(ctx, r.db).First(&invitation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invitation, nil
}

// FindPendingByEmail finds unused invitations addressed to the email,
// matching case-insensitively. Registration consumes these.
func (r *GormTeamMemberInvitationRepository) FindPendingByEmail(ctx context.Context, email string) ([]identity.TeamMemberInvitation, error) {
	var invitations []identity.TeamMemberInvitation
	if err := businessscope.Conn(ctx, r.db).
		Where("LOWER(email) = ? AND is_used = ?", strings.ToLower(strings.TrimSpace(email)), false).
		Order("created_at ASC").
		Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

// FindAllPendingByInviter lists unused invitations sent on behalf of an organization
func (r *GormTeamMemberInvitationRepository) FindAllPendingByInviter(ctx context.Context, inviterID uuid.UUID) ([]identity.TeamMemberInvitation, error) {
	var invitations []identity.TeamMemberInvitation
	if err := businessscope.Conn(ctx, r.db).
		Where("inviter_id = ? AND is_used = ?", inviterID, false).
		Order("created_at ASC").
		Find(&invitations).Error; err != nil {
		return nil, err
	}
	return invitations, nil
}

// ExistsPending checks for an open invitation from an inviter to an email
func (r *GormTeamMemberInvitationRepository) ExistsPending(ctx context.Context, inviterID uuid.UUID, email string) (bool, error) {
	var count int64
	if err := businessscope.Conn(ctx, r.db).
		Model(&identity.TeamMemberInvitation{}).
		Where("inviter_id = ? AND LOWER(email) = ? AND is_used = ?",
			inviterID, strings.ToLower(strings.TrimSpace(email)), false).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountPendingByInviter counts unused invitations sent by the inviter.
// Pending invitations occupy team-member quota until consumed.
func (r *GormTeamMemberInvitationRepository) CountPendingByInviter(ctx context.Context, inviterID uuid.UUID) (int64, error) {
	var count int64
	if err := businessscope.Conn(ctx, r.db).
		Model(&identity.TeamMemberInvitation{}).
		Where("inviter_id = ? AND is_used = ?", inviterID, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an invitation
func (r *GormTeamMemberInvitationRepository) Save(ctx context.Context, invitation *identity.TeamMemberInvitation) error {
	return businessscope.Conn(ctx, r.db).Save(invitation).Error
}

// Delete deletes an invitation
func (r *GormTeamMemberInvitationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := businessscope.Conn(ctx, r.db).Delete(&identity.TeamMemberInvitation{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormTeamMemberInvitationRepository implements TeamMemberInvitationRepository
var _ identity.TeamMemberInvitationRepository = (*GormTeamMemberInvitationRepository)(nil)
