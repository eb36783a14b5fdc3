package identity

import (
	"context"
	"errors"

	"github.com/fakturly/backend/internal/application/billing"
	"github.com/fakturly/backend/internal/domain/identity"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TeamService manages delegation edges and invitations within an organization
type TeamService struct {
	userRepo       identity.UserRepository
	memberRepo     identity.TeamMemberRepository
	invitationRepo identity.TeamMemberInvitationRepository
	planLimits     *billing.PlanLimitService
	tx             shared.Transactor
	logger         *zap.Logger
}

// NewTeamService creates a new team service
func NewTeamService(
	userRepo identity.UserRepository,
	memberRepo identity.TeamMemberRepository,
	invitationRepo identity.TeamMemberInvitationRepository,
	planLimits *billing.PlanLimitService,
	tx shared.Transactor,
	logger *zap.Logger,
) *TeamService {
	return &TeamService{
		userRepo:       userRepo,
		memberRepo:     memberRepo,
		invitationRepo: invitationRepo,
		planLimits:     planLimits,
		tx:             tx,
		logger:         logger,
	}
}

// corporateOwnerFor resolves the root organization owner for a business.
// Legacy data allows a business owner to themself be a delegated member; the
// root is then one hop up.
func (s *TeamService) corporateOwnerFor(ctx context.Context, business *identity.Business) (uuid.UUID, error) {
	parent, err := s.memberRepo.FindAnyByUser(ctx, business.OwnerID)
	if err == nil {
		return parent.CorporateOwnerID, nil
	}
	if errors.Is(err, shared.ErrNotFound) {
		return business.OwnerID, nil
	}
	return uuid.Nil, err
}

// ListTeam returns the organization's delegation edges joined with their
// users, plus pending invitations.
func (s *TeamService) ListTeam(ctx context.Context, rc *ResolvedContext) (*TeamView, error) {
	if !rc.Role.CanManageTeam() {
		return nil, shared.ErrForbidden
	}

	corporateOwner, err := s.corporateOwnerFor(ctx, rc.Business)
	if err != nil {
		return nil, err
	}

	members, err := s.memberRepo.FindAllByOwner(ctx, corporateOwner)
	if err != nil {
		return nil, err
	}

	views := make([]TeamMemberView, 0, len(members))
	for i := range members {
		user, err := s.userRepo.FindByID(ctx, members[i].UserID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		views = append(views, NewTeamMemberView(&members[i], user))
	}

	invitations, err := s.invitationRepo.FindAllPendingByInviter(ctx, corporateOwner)
	if err != nil {
		return nil, err
	}

	return &TeamView{Members: views, Invitations: invitations}, nil
}

// InviteMember adds a user to the team. If the email already has an account
// the delegation edge is created immediately; otherwise a pending invitation
// is stored and consumed when that email registers. Either outcome occupies
// one unit of team-member quota.
func (s *TeamService) InviteMember(ctx context.Context, rc *ResolvedContext, input InviteMemberInput) (*InviteResult, error) {
	if !rc.Role.CanManageTeam() {
		return nil, shared.ErrForbidden
	}
	if err := identity.ValidateRole(input.Role); err != nil {
		return nil, err
	}

	email := identity.NormalizeEmail(input.Email)

	corporateOwner, err := s.corporateOwnerFor(ctx, rc.Business)
	if err != nil {
		return nil, err
	}

	businessID := rc.Business.ID

	// Quota check, duplicate check and write share one transaction so two
	// concurrent invites cannot both slip under the limit
	var result *InviteResult
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.planLimits.EnforceLimit(ctx, corporateOwner, billing.ResourceTeamMembers); err != nil {
			return err
		}

		invitee, err := s.userRepo.FindByEmail(ctx, email)
		if err != nil {
			if !errors.Is(err, shared.ErrNotFound) {
				return err
			}
			result, err = s.createInvitation(ctx, corporateOwner, businessID, email, input.Role)
			return err
		}

		if invitee.ID == rc.UserID || invitee.ID == corporateOwner {
			return shared.NewDomainError("SELF_INVITE", "You cannot add yourself to your own team")
		}

		taken, err := s.memberRepo.ExistsForBusinessAndUser(ctx, businessID, invitee.ID)
		if err != nil {
			return err
		}
		if taken {
			return shared.ErrDuplicateTeamMember
		}

		member, err := identity.NewTeamMember(corporateOwner, invitee.ID, &businessID, input.Role)
		if err != nil {
			return err
		}
		if err := s.memberRepo.Save(ctx, member); err != nil {
			s.logger.Error("Failed to save team member", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Invitation failed")
		}

		s.logger.Info("Team member added",
			zap.String("corporate_owner_id", corporateOwner.String()),
			zap.String("member_user_id", invitee.ID.String()),
			zap.String("role", string(input.Role)),
		)

		view := NewTeamMemberView(member, invitee)
		result = &InviteResult{Status: InviteStatusMemberAdded, Member: &view}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *TeamService) createInvitation(ctx context.Context, corporateOwner, businessID uuid.UUID, email string, role identity.Role) (*InviteResult, error) {
	pending, err := s.invitationRepo.ExistsPending(ctx, corporateOwner, email)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, shared.NewDomainError("DUPLICATE_INVITATION", "An invitation for this email is already pending")
	}

	invitation, err := identity.NewTeamMemberInvitation(corporateOwner, &businessID, email, role)
	if err != nil {
		return nil, err
	}
	if err := s.invitationRepo.Save(ctx, invitation); err != nil {
		s.logger.Error("Failed to save invitation", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Invitation failed")
	}

	s.logger.Info("Invitation created",
		zap.String("corporate_owner_id", corporateOwner.String()),
		zap.String("email", email),
		zap.String("role", string(role)),
	)
	return &InviteResult{Status: InviteStatusInvitationSent, Invitation: invitation}, nil
}

// loadManagedMember fetches a member edge and verifies the caller may manage
// it. Edges of other organizations surface as not found.
func (s *TeamService) loadManagedMember(ctx context.Context, rc *ResolvedContext, memberID uuid.UUID) (*identity.TeamMember, error) {
	if !rc.Role.CanManageTeam() {
		return nil, shared.ErrForbidden
	}

	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	corporateOwner, err := s.corporateOwnerFor(ctx, rc.Business)
	if err != nil {
		return nil, err
	}
	if member.CorporateOwnerID != corporateOwner {
		return nil, shared.ErrNotFound
	}

	if member.UserID == rc.UserID {
		return nil, shared.ErrSelfModification
	}
	// Managers are peers: only the owner may touch a manager's edge
	if rc.Role == identity.RoleManager && member.Role == identity.RoleManager {
		return nil, shared.NewDomainError("PERMISSION_DENIED", "Managers cannot modify other managers")
	}

	return member, nil
}

// ChangeMemberRole reassigns a member's role
func (s *TeamService) ChangeMemberRole(ctx context.Context, rc *ResolvedContext, memberID uuid.UUID, role identity.Role) (*identity.TeamMember, error) {
	member, err := s.loadManagedMember(ctx, rc, memberID)
	if err != nil {
		return nil, err
	}

	if err := member.ChangeRole(role); err != nil {
		return nil, err
	}
	if err := s.memberRepo.Save(ctx, member); err != nil {
		s.logger.Error("Failed to change member role", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Role change failed")
	}
	return member, nil
}

// SetMonthlyTarget sets a member's monthly sales target
func (s *TeamService) SetMonthlyTarget(ctx context.Context, rc *ResolvedContext, memberID uuid.UUID, target decimal.Decimal) (*identity.TeamMember, error) {
	member, err := s.loadManagedMember(ctx, rc, memberID)
	if err != nil {
		return nil, err
	}

	if err := member.SetMonthlyTarget(target); err != nil {
		return nil, err
	}
	if err := s.memberRepo.Save(ctx, member); err != nil {
		s.logger.Error("Failed to set monthly target", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Target update failed")
	}
	return member, nil
}

// RemoveMember deletes a delegation edge
func (s *TeamService) RemoveMember(ctx context.Context, rc *ResolvedContext, memberID uuid.UUID) error {
	member, err := s.loadManagedMember(ctx, rc, memberID)
	if err != nil {
		return err
	}

	if err := s.memberRepo.Delete(ctx, member.ID); err != nil {
		s.logger.Error("Failed to remove team member", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Member removal failed")
	}

	s.logger.Info("Team member removed",
		zap.String("member_id", member.ID.String()),
		zap.String("removed_by", rc.UserID.String()),
	)
	return nil
}

// RevokeInvitation deletes a pending invitation, releasing its quota unit
func (s *TeamService) RevokeInvitation(ctx context.Context, rc *ResolvedContext, invitationID uuid.UUID) error {
	if !rc.Role.CanManageTeam() {
		return shared.ErrForbidden
	}

	invitation, err := s.invitationRepo.FindByID(ctx, invitationID)
	if err != nil {
		return err
	}

	corporateOwner, err := s.corporateOwnerFor(ctx, rc.Business)
	if err != nil {
		return err
	}
	if invitation.InviterID != corporateOwner || invitation.IsUsed {
		return shared.ErrNotFound
	}

	return s.invitationRepo.Delete(ctx, invitation.ID)
}

// UpdateMyLocation records the acting member's coordinates. Owners hold no
// delegation edge and have nowhere to record a location.
func (s *TeamService) UpdateMyLocation(ctx context.Context, rc *ResolvedContext, input UpdateLocationInput) (*identity.TeamMember, error) {
	if rc.Member == nil {
		return nil, shared.NewDomainError("NOT_A_MEMBER", "Only team members report location")
	}

	if err := rc.Member.UpdateLocation(input.Latitude, input.Longitude); err != nil {
		return nil, err
	}
	if err := s.memberRepo.Save(ctx, rc.Member); err != nil {
		s.logger.Error("Failed to update member location", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Location update failed")
	}
	return rc.Member, nil
}
