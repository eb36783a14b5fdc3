package identity

import (
	"context"
	"testing"

	"github.com/fakturly/backend/internal/application/billing"
	"github.com/fakturly/backend/internal/domain/identity"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// passthroughTx runs the function without a real transaction
type passthroughTx struct{}

func (passthroughTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type teamFixture struct {
	users       *mockUserRepository
	members     *mockTeamMemberRepository
	invitations *mockInvitationRepository
	service     *TeamService
}

// newTeamFixture builds a team service whose plan limit checks always pass:
// the owner carries the premium membership, which caps nothing.
func newTeamFixture(t *testing.T, owner *identity.User) *teamFixture {
	t.Helper()
	f := &teamFixture{
		users:       new(mockUserRepository),
		members:     new(mockTeamMemberRepository),
		invitations: new(mockInvitationRepository),
	}
	planLimits := billing.NewPlanLimitService(billing.PlanLimitRepositories{
		Users:       f.users,
		Members:     f.members,
		Invitations: f.invitations,
	}, "", zap.NewNop())
	f.service = NewTeamService(f.users, f.members, f.invitations, planLimits, passthroughTx{}, zap.NewNop())

	owner.Membership = identity.MembershipPremium
	f.users.On("FindByID", mock.Anything, owner.ID).Return(owner, nil)
	return f
}

func newOwnerContext(t *testing.T, owner *identity.User) *ResolvedContext {
	t.Helper()
	business := newTestBusiness(t, owner.ID)
	return &ResolvedContext{Business: business, UserID: owner.ID, Role: identity.RoleOwner}
}

func TestTeamService_InviteMember(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the edge directly for an existing account", func(t *testing.T) {
		owner, err := identity.NewUser("owner@example.com", "password123", "O", "Owner")
		require.NoError(t, err)
		f := newTeamFixture(t, owner)
		rc := newOwnerContext(t, owner)

		invitee, err := identity.NewUser("rep@example.com", "password123", "Sales", "Rep")
		require.NoError(t, err)

		f.members.On("FindAnyByUser", ctx, owner.ID).Return(nil, shared.ErrNotFound)
		f.users.On("FindByEmail", ctx, "rep@example.com").Return(invitee, nil)
		f.members.On("ExistsForBusinessAndUser", ctx, rc.Business.ID, invitee.ID).Return(false, nil)
		f.members.On("Save", ctx, mock.AnythingOfType("*identity.TeamMember")).Return(nil)

		result, err := f.service.InviteMember(ctx, rc, InviteMemberInput{Email: "Rep@Example.com", Role: identity.RoleSalesRep})

		require.NoError(t, err)
		assert.Equal(t, InviteStatusMemberAdded, result.Status)
		require.NotNil(t, result.Member)
		assert.Equal(t, invitee.ID, result.Member.UserID)
		assert.Equal(t, identity.RoleSalesRep, result.Member.Role)
	})

	t.Run("stores a pending invitation for an unknown email", func(t *testing.T) {
		owner, err := identity.NewUser("owner@example.com", "password123", "O", "Owner")
		require.NoError(t, err)
		f := newTeamFixture(t, owner)
		rc := newOwnerContext(t, owner)

		f.members.On("FindAnyByUser", ctx, owner.ID).Return(nil, shared.ErrNotFound)
		f.users.On("FindByEmail", ctx, "future@example.com").Return(nil, shared.ErrNotFound)
		f.invitations.On("ExistsPending", ctx, owner.ID, "future@example.com").Return(false, nil)
		f.invitations.On("Save", ctx, mock.AnythingOfType("*identity.TeamMemberInvitation")).Return(nil)

		result, err := f.service.InviteMember(ctx, rc, InviteMemberInput{Email: "future@example.com", Role: identity.RoleAccountant})

		require.NoError(t, err)
		assert.Equal(t, InviteStatusInvitationSent, result.Status)
		require.NotNil(t, result.Invitation)
		assert.Equal(t, owner.ID, result.Invitation.InviterID)
	})

	t.Run("blocks self-invitation", func(t *testing.T) {
		owner, err := identity.NewUser("owner@example.com", "password123", "O", "Owner")
		require.NoError(t, err)
		f := newTeamFixture(t, owner)
		rc := newOwnerContext(t, owner)

		f.members.On("FindAnyByUser", ctx, owner.ID).Return(nil, shared.ErrNotFound)
		f.users.On("FindByEmail", ctx, "owner@example.com").Return(owner, nil)

		_, err = f.service.InviteMember(ctx, rc, InviteMemberInput{Email: "owner@example.com", Role: identity.RoleManager})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "SELF_INVITE", domainErr.Code)
	})

	t.Run("rejects a duplicate member", func(t *testing.T) {
		owner, err := identity.NewUser("owner@example.com", "password123", "O", "Owner")
		require.NoError(t, err)
		f := newTeamFixture(t, owner)
		rc := newOwnerContext(t, owner)

		invitee, err := identity.NewUser("dup@example.com", "password123", "D", "Member")
		require.NoError(t, err)

		f.members.On("FindAnyByUser", ctx, owner.ID).Return(nil, shared.ErrNotFound)
		f.users.On("FindByEmail", ctx, "dup@example.com").Return(invitee, nil)
		f.members.On("ExistsForBusinessAndUser", ctx, rc.Business.ID, invitee.ID).Return(true, nil)

		_, err = f.service.InviteMember(ctx, rc, InviteMemberInput{Email: "dup@example.com", Role: identity.RoleSalesRep})

		assert.ErrorIs(t, err, shared.ErrDuplicateTeamMember)
	})

	t.Run("attaches a manager's invite to the corporate owner", func(t *testing.T) {
		owner, err := identity.NewUser("owner@example.com", "password123", "O", "Owner")
		require.NoError(t, err)
		f := newTeamFixture(t, owner)

		manager, err := identity.NewUser("manager@example.com", "password123", "M", "Manager")
		require.NoError(t, err)
		business := newTestBusiness(t, owner.ID)
		managerEdge := newTestEdge(t, owner.ID, manager.ID, &business.ID, identity.RoleManager)
		rc := &ResolvedContext{Business: business, UserID: manager.ID, Role: identity.RoleManager, Member: managerEdge}

		f.members.On("FindAnyByUser", ctx, owner.ID).Return(nil, shared.ErrNotFound)
		f.users.On("FindByEmail", ctx, "future@example.com").Return(nil, shared.ErrNotFound)
		f.invitations.On("ExistsPending", ctx, owner.ID, "future@example.com").Return(false, nil)
		f.invitations.On("Save", ctx, mock.AnythingOfType("*identity.TeamMemberInvitation")).Return(nil)

		result, err := f.service.InviteMember(ctx, rc, InviteMemberInput{Email: "future@example.com", Role: identity.RoleSalesRep})

		require.NoError(t, err)
		assert.Equal(t, owner.ID, result.Invitation.InviterID)
	})

	t.Run("denies roles without team management rights", func(t *testing.T) {
		owner, err := identity.NewUser("owner@example.com", "password123", "O", "Owner")
		require.NoError(t, err)
		f := newTeamFixture(t, owner)
		business := newTestBusiness(t, owner.ID)
		rc := &ResolvedContext{Business: business, UserID: uuid.New(), Role: identity.RoleAccountant}

		_, err = f.service.InviteMember(ctx, rc, InviteMemberInput{Email: "x@example.com", Role: identity.RoleSalesRep})

		assert.ErrorIs(t, err, shared.ErrForbidden)
	})
}

func TestTeamService_ManageMembers(t *testing.T) {
	ctx := context.Background()

	t.Run("owner changes a member's role", func(t *testing.T) {
		owner, err := identity.NewUser("owner@example.com", "password123", "O", "Owner")
		require.NoError(t, err)
		f := newTeamFixture(t, owner)
		rc := newOwnerContext(t, owner)

		edge := newTestEdge(t, owner.ID, uuid.New(), &rc.Business.ID, identity.RoleSalesRep)

		f.members.On("FindByID", ctx, edge.ID).Return(edge, nil)
		f.members.On("FindAnyByUser", ctx, owner.ID).Return(nil, shared.ErrNotFound)
		f.members.On("Save", ctx, edge).Return(nil)

		updated, err := f.service.ChangeMemberRole(ctx, rc, edge.ID, identity.RoleAccountant)

		require.NoError(t, err)
		assert.Equal(t, identity.RoleAccountant, updated.Role)
	})

	t.Run("member cannot change their own role", func(t *testing.T) {
		owner, err := identity.NewUser("owner@example.com", "password123", "O", "Owner")
		require.NoError(t, err)
		f := newTeamFixture(t, owner)

		managerID := uuid.New()
		business := newTestBusiness(t, owner.ID)
		edge := newTestEdge(t, owner.ID, managerID, &business.ID, identity.RoleManager)
		rc := &ResolvedContext{Business: business, UserID: managerID, Role: identity.RoleManager, Member: edge}

		f.members.On("FindByID", ctx, edge.ID).Return(edge, nil)
		f.members.On("FindAnyByUser", ctx, owner.ID).Return(nil, shared.ErrNotFound)

		_, err = f.service.ChangeMemberRole(ctx, rc, edge.ID, identity.RoleSalesRep)

		assert.ErrorIs(t, err, shared.ErrSelfModification)
	})

	t.Run("manager cannot remove another manager", func(t *testing.T) {
		owner, err := identity.NewUser("owner@example.com", "password123", "O", "Owner")
		require.NoError(t, err)
		f := newTeamFixture(t, owner)

		business := newTestBusiness(t, owner.ID)
		actingManager := newTestEdge(t, owner.ID, uuid.New(), &business.ID, identity.RoleManager)
		otherManager := newTestEdge(t, owner.ID, uuid.New(), &business.ID, identity.RoleManager)
		rc := &ResolvedContext{Business: business, UserID: actingManager.UserID, Role: identity.RoleManager, Member: actingManager}

		f.members.On("FindByID", ctx, otherManager.ID).Return(otherManager, nil)
		f.members.On("FindAnyByUser", ctx, owner.ID).Return(nil, shared.ErrNotFound)

		err = f.service.RemoveMember(ctx, rc, otherManager.ID)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PERMISSION_DENIED", domainErr.Code)
		f.members.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("edges of other organizations surface as not found", func(t *testing.T) {
		owner, err := identity.NewUser("owner@example.com", "password123", "O", "Owner")
		require.NoError(t, err)
		f := newTeamFixture(t, owner)
		rc := newOwnerContext(t, owner)

		foreignEdge := newTestEdge(t, uuid.New(), uuid.New(), nil, identity.RoleSalesRep)

		f.members.On("FindByID", ctx, foreignEdge.ID).Return(foreignEdge, nil)
		f.members.On("FindAnyByUser", ctx, owner.ID).Return(nil, shared.ErrNotFound)

		err = f.service.RemoveMember(ctx, rc, foreignEdge.ID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("sets a monthly target", func(t *testing.T) {
		owner, err := identity.NewUser("owner@example.com", "password123", "O", "Owner")
		require.NoError(t, err)
		f := newTeamFixture(t, owner)
		rc := newOwnerContext(t, owner)

		edge := newTestEdge(t, owner.ID, uuid.New(), &rc.Business.ID, identity.RoleSalesRep)

		f.members.On("FindByID", ctx, edge.ID).Return(edge, nil)
		f.members.On("FindAnyByUser", ctx, owner.ID).Return(nil, shared.ErrNotFound)
		f.members.On("Save", ctx, edge).Return(nil)

		updated, err := f.service.SetMonthlyTarget(ctx, rc, edge.ID, decimal.NewFromInt(5000))

		require.NoError(t, err)
		require.NotNil(t, updated.MonthlyTarget)
		assert.True(t, updated.MonthlyTarget.Equal(decimal.NewFromInt(5000)))
	})
}

func TestTeamService_UpdateMyLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("records coordinates on the acting member's edge", func(t *testing.T) {
		owner, err := identity.NewUser("owner@example.com", "password123", "O", "Owner")
		require.NoError(t, err)
		f := newTeamFixture(t, owner)

		business := newTestBusiness(t, owner.ID)
		edge := newTestEdge(t, owner.ID, uuid.New(), &business.ID, identity.RoleSalesRep)
		rc := &ResolvedContext{Business: business, UserID: edge.UserID, Role: identity.RoleSalesRep, Member: edge}

		f.members.On("Save", ctx, edge).Return(nil)

		updated, err := f.service.UpdateMyLocation(ctx, rc, UpdateLocationInput{
			Latitude:  decimal.RequireFromString("40.4093"),
			Longitude: decimal.RequireFromString("49.8671"),
		})

		require.NoError(t, err)
		require.NotNil(t, updated.LastLatitude)
		assert.NotNil(t, updated.LastLocationAt)
	})

	t.Run("owners have no edge to record a location on", func(t *testing.T) {
		owner, err := identity.NewUser("owner@example.com", "password123", "O", "Owner")
		require.NoError(t, err)
		f := newTeamFixture(t, owner)
		rc := newOwnerContext(t, owner)

		_, err = f.service.UpdateMyLocation(ctx, rc, UpdateLocationInput{
			Latitude:  decimal.NewFromInt(40),
			Longitude: decimal.NewFromInt(49),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_A_MEMBER", domainErr.Code)
	})
}
