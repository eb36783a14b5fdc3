package identity

import (
	"context"
	"testing"

	"github.com/fakturly/backend/internal/domain/identity"
	"github.com/fakturly/backend/internal/domain/rbac"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBusiness(t *testing.T, ownerID uuid.UUID) *identity.Business {
	t.Helper()
	business, err := identity.NewBusiness(ownerID, "Test Business")
	require.NoError(t, err)
	return business
}

func newTestEdge(t *testing.T, ownerID, userID uuid.UUID, businessID *uuid.UUID, role identity.Role) *identity.TeamMember {
	t.Helper()
	member, err := identity.NewTeamMember(ownerID, userID, businessID, role)
	require.NoError(t, err)
	return member
}

func TestContextResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves the owner without consulting delegation edges", func(t *testing.T) {
		businesses := new(mockBusinessRepository)
		members := new(mockTeamMemberRepository)
		resolver := NewContextResolver(businesses, members, zap.NewNop())

		ownerID := uuid.New()
		business := newTestBusiness(t, ownerID)

		businesses.On("FindActiveByIDAndOwner", ctx, business.ID, ownerID).Return(business, nil)

		rc, err := resolver.Resolve(ctx, ownerID, business.ID)

		require.NoError(t, err)
		assert.Equal(t, identity.RoleOwner, rc.Role)
		assert.False(t, rc.IsTeamMember())
		assert.Equal(t, ownerID, rc.OwnerID())
		members.AssertNotCalled(t, "FindEdge")
	})

	t.Run("resolves a delegated member through the edge", func(t *testing.T) {
		businesses := new(mockBusinessRepository)
		members := new(mockTeamMemberRepository)
		resolver := NewContextResolver(businesses, members, zap.NewNop())

		ownerID := uuid.New()
		userID := uuid.New()
		business := newTestBusiness(t, ownerID)
		edge := newTestEdge(t, ownerID, userID, &business.ID, identity.RoleAccountant)

		businesses.On("FindActiveByIDAndOwner", ctx, business.ID, userID).Return(nil, shared.ErrNotFound)
		businesses.On("FindActiveByID", ctx, business.ID).Return(business, nil)
		members.On("FindEdge", ctx, ownerID, userID, business.ID).Return(edge, nil)

		rc, err := resolver.Resolve(ctx, userID, business.ID)

		require.NoError(t, err)
		assert.Equal(t, identity.RoleAccountant, rc.Role)
		assert.True(t, rc.IsTeamMember())
		assert.Equal(t, ownerID, rc.OwnerID())
		assert.Equal(t, rbac.Visibility{Role: identity.RoleAccountant, UserID: userID}, rc.Visibility())
	})

	t.Run("follows one legacy hop when the business owner is a member", func(t *testing.T) {
		businesses := new(mockBusinessRepository)
		members := new(mockTeamMemberRepository)
		resolver := NewContextResolver(businesses, members, zap.NewNop())

		rootOwnerID := uuid.New()
		subOwnerID := uuid.New()
		userID := uuid.New()
		business := newTestBusiness(t, subOwnerID)
		parentEdge := newTestEdge(t, rootOwnerID, subOwnerID, nil, identity.RoleManager)
		edge := newTestEdge(t, rootOwnerID, userID, &business.ID, identity.RoleSalesRep)

		businesses.On("FindActiveByIDAndOwner", ctx, business.ID, userID).Return(nil, shared.ErrNotFound)
		businesses.On("FindActiveByID", ctx, business.ID).Return(business, nil)
		members.On("FindEdge", ctx, subOwnerID, userID, business.ID).Return(nil, shared.ErrNotFound)
		members.On("FindAnyByUser", ctx, subOwnerID).Return(parentEdge, nil)
		members.On("FindEdge", ctx, rootOwnerID, userID, business.ID).Return(edge, nil)

		rc, err := resolver.Resolve(ctx, userID, business.ID)

		require.NoError(t, err)
		assert.Equal(t, identity.RoleSalesRep, rc.Role)
		assert.True(t, rc.IsTeamMember())
	})

	t.Run("denies access indistinguishably from a missing business", func(t *testing.T) {
		businesses := new(mockBusinessRepository)
		members := new(mockTeamMemberRepository)
		resolver := NewContextResolver(businesses, members, zap.NewNop())

		ownerID := uuid.New()
		strangerID := uuid.New()
		business := newTestBusiness(t, ownerID)

		businesses.On("FindActiveByIDAndOwner", ctx, business.ID, strangerID).Return(nil, shared.ErrNotFound)
		businesses.On("FindActiveByID", ctx, business.ID).Return(business, nil)
		members.On("FindEdge", ctx, ownerID, strangerID, business.ID).Return(nil, shared.ErrNotFound)
		members.On("FindAnyByUser", ctx, ownerID).Return(nil, shared.ErrNotFound)

		_, deniedErr := resolver.Resolve(ctx, strangerID, business.ID)

		missingID := uuid.New()
		businesses.On("FindActiveByIDAndOwner", ctx, missingID, strangerID).Return(nil, shared.ErrNotFound)
		businesses.On("FindActiveByID", ctx, missingID).Return(nil, shared.ErrNotFound)

		_, missingErr := resolver.Resolve(ctx, strangerID, missingID)

		assert.ErrorIs(t, deniedErr, shared.ErrNotFound)
		assert.ErrorIs(t, missingErr, shared.ErrNotFound)
		assert.Equal(t, deniedErr, missingErr)
	})

	t.Run("rejects an empty business id", func(t *testing.T) {
		resolver := NewContextResolver(new(mockBusinessRepository), new(mockTeamMemberRepository), zap.NewNop())

		_, err := resolver.Resolve(ctx, uuid.New(), uuid.Nil)

		assert.ErrorIs(t, err, shared.ErrNoActiveBusiness)
	})

	t.Run("never resolves an inactive business", func(t *testing.T) {
		businesses := new(mockBusinessRepository)
		members := new(mockTeamMemberRepository)
		resolver := NewContextResolver(businesses, members, zap.NewNop())

		ownerID := uuid.New()
		business := newTestBusiness(t, ownerID)
		business.Deactivate()

		// Active-only lookups miss deactivated rows entirely
		businesses.On("FindActiveByIDAndOwner", ctx, business.ID, ownerID).Return(nil, shared.ErrNotFound)
		businesses.On("FindActiveByID", ctx, business.ID).Return(nil, shared.ErrNotFound)

		_, err := resolver.Resolve(ctx, ownerID, business.ID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
