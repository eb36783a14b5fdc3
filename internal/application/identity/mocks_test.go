package identity

import (
	"context"

	"github.com/fakturly/backend/internal/domain/identity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock implementations shared by the service tests in this package

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockBusinessRepository struct {
	mock.Mock
}

func (m *mockBusinessRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Business), args.Error(1)
}

func (m *mockBusinessRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (*identity.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Business), args.Error(1)
}

func (m *mockBusinessRepository) FindActiveByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*identity.Business, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Business), args.Error(1)
}

func (m *mockBusinessRepository) FindAllByOwner(ctx context.Context, ownerID uuid.UUID) ([]identity.Business, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Business), args.Error(1)
}

func (m *mockBusinessRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockBusinessRepository) Save(ctx context.Context, business *identity.Business) error {
	args := m.Called(ctx, business)
	return args.Error(0)
}

func (m *mockBusinessRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockTeamMemberRepository struct {
	mock.Mock
}

func (m *mockTeamMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.TeamMember, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.TeamMember), args.Error(1)
}

func (m *mockTeamMemberRepository) FindEdge(ctx context.Context, corporateOwnerID, userID, businessID uuid.UUID) (*identity.TeamMember, error) {
	args := m.Called(ctx, corporateOwnerID, userID, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.TeamMember), args.Error(1)
}

func (m *mockTeamMemberRepository) FindByOwnerAndUser(ctx context.Context, corporateOwnerID, userID uuid.UUID) (*identity.TeamMember, error) {
	args := m.Called(ctx, corporateOwnerID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.TeamMember), args.Error(1)
}

func (m *mockTeamMemberRepository) FindAnyByUser(ctx context.Context, userID uuid.UUID) (*identity.TeamMember, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.TeamMember), args.Error(1)
}

func (m *mockTeamMemberRepository) FindAllByOwner(ctx context.Context, corporateOwnerID uuid.UUID) ([]identity.TeamMember, error) {
	args := m.Called(ctx, corporateOwnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.TeamMember), args.Error(1)
}

func (m *mockTeamMemberRepository) CountByOwner(ctx context.Context, corporateOwnerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, corporateOwnerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTeamMemberRepository) ExistsForBusinessAndUser(ctx context.Context, businessID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, businessID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockTeamMemberRepository) Save(ctx context.Context, member *identity.TeamMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *mockTeamMemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockInvitationRepository struct {
	mock.Mock
}

func (m *mockInvitationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.TeamMemberInvitation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.TeamMemberInvitation), args.Error(1)
}

func (m *mockInvitationRepository) FindPendingByEmail(ctx context.Context, email string) ([]identity.TeamMemberInvitation, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.TeamMemberInvitation), args.Error(1)
}

func (m *mockInvitationRepository) FindAllPendingByInviter(ctx context.Context, inviterID uuid.UUID) ([]identity.TeamMemberInvitation, error) {
	args := m.Called(ctx, inviterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.TeamMemberInvitation), args.Error(1)
}

func (m *mockInvitationRepository) ExistsPending(ctx context.Context, inviterID uuid.UUID, email string) (bool, error) {
	args := m.Called(ctx, inviterID, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockInvitationRepository) CountPendingByInviter(ctx context.Context, inviterID uuid.UUID) (int64, error) {
	args := m.Called(ctx, inviterID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockInvitationRepository) Save(ctx context.Context, invitation *identity.TeamMemberInvitation) error {
	args := m.Called(ctx, invitation)
	return args.Error(0)
}

func (m *mockInvitationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
