package billing

import (
	"context"
	"testing"
	"time"

	"github.com/fakturly/backend/internal/domain/identity"
	"github.com/fakturly/backend/internal/domain/invoicing"
	"github.com/fakturly/backend/internal/domain/rbac"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Mock implementations

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

type mockPlanRepository struct {
	mock.Mock
}

func (m *mockPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.SubscriptionPlan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.SubscriptionPlan), args.Error(1)
}

func (m *mockPlanRepository) FindByName(ctx context.Context, name string) (*identity.SubscriptionPlan, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.SubscriptionPlan), args.Error(1)
}

func (m *mockPlanRepository) FindAll(ctx context.Context) ([]identity.SubscriptionPlan, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.SubscriptionPlan), args.Error(1)
}

func (m *mockPlanRepository) Save(ctx context.Context, plan *identity.SubscriptionPlan) error {
	args := m.Called(ctx, plan)
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

type mockClientRepository struct {
	mock.Mock
}

func (m *mockClientRepository) FindByIDForBusiness(ctx context.Context, id, businessID uuid.UUID, vis rbac.Visibility) (*invoicing.Client, error) {
	args := m.Called(ctx, id, businessID, vis)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Client), args.Error(1)
}

func (m *mockClientRepository) FindAllForBusiness(ctx context.Context, businessID uuid.UUID, vis rbac.Visibility, filter shared.Filter) ([]invoicing.Client, int64, error) {
	args := m.Called(ctx, businessID, vis, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]invoicing.Client), args.Get(1).(int64), args.Error(2)
}

func (m *mockClientRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockClientRepository) Save(ctx context.Context, client *invoicing.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *mockClientRepository) Delete(ctx context.Context, id, businessID uuid.UUID) error {
	args := m.Called(ctx, id, businessID)
	return args.Error(0)
}

type mockInvoiceRepository struct {
	mock.Mock
}

func (m *mockInvoiceRepository) FindByIDForBusiness(ctx context.Context, id, businessID uuid.UUID, vis rbac.Visibility) (*invoicing.Invoice, error) {
	args := m.Called(ctx, id, businessID, vis)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *mockInvoiceRepository) FindAllForBusiness(ctx context.Context, businessID uuid.UUID, vis rbac.Visibility, filter shared.Filter) ([]invoicing.Invoice, int64, error) {
	args := m.Called(ctx, businessID, vis, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]invoicing.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *mockInvoiceRepository) CountForOwnerInMonth(ctx context.Context, ownerID uuid.UUID, at time.Time) (int64, error) {
	args := m.Called(ctx, ownerID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *mockInvoiceRepository) Delete(ctx context.Context, id, businessID uuid.UUID) error {
	args := m.Called(ctx, id, businessID)
	return args.Error(0)
}

type mockExpenseRepository struct {
	mock.Mock
}

func (m *mockExpenseRepository) FindByIDForBusiness(ctx context.Context, id, businessID uuid.UUID) (*invoicing.Expense, error) {
	args := m.Called(ctx, id, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Expense), args.Error(1)
}

func (m *mockExpenseRepository) FindAllForBusiness(ctx context.Context, businessID uuid.UUID, filter shared.Filter) ([]invoicing.Expense, int64, error) {
	args := m.Called(ctx, businessID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]invoicing.Expense), args.Get(1).(int64), args.Error(2)
}

func (m *mockExpenseRepository) CountForOwnerInMonth(ctx context.Context, ownerID uuid.UUID, at time.Time) (int64, error) {
	args := m.Called(ctx, ownerID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockExpenseRepository) Save(ctx context.Context, expense *invoicing.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *mockExpenseRepository) Delete(ctx context.Context, id, businessID uuid.UUID) error {
	args := m.Called(ctx, id, businessID)
	return args.Error(0)
}

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) FindByIDForBusiness(ctx context.Context, id, businessID uuid.UUID) (*invoicing.Product, error) {
	args := m.Called(ctx, id, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Product), args.Error(1)
}

func (m *mockProductRepository) FindAllForBusiness(ctx context.Context, businessID uuid.UUID, filter shared.Filter) ([]invoicing.Product, int64, error) {
	args := m.Called(ctx, businessID, filter)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]invoicing.Product), args.Get(1).(int64), args.Error(2)
}

func (m *mockProductRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProductRepository) Save(ctx context.Context, product *invoicing.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id, businessID uuid.UUID) error {
	args := m.Called(ctx, id, businessID)
	return args.Error(0)
}

// Test fixtures

type planLimitFixture struct {
	users       *mockUserRepository
	plans       *mockPlanRepository
	businesses  *mockBusinessRepository
	members     *mockTeamMemberRepository
	invitations *mockInvitationRepository
	clients     *mockClientRepository
	invoices    *mockInvoiceRepository
	expenses    *mockExpenseRepository
	products    *mockProductRepository
	service     *PlanLimitService
}

func newPlanLimitFixture(demoEmail string) *planLimitFixture {
	f := &planLimitFixture{
		users:       new(mockUserRepository),
		plans:       new(mockPlanRepository),
		businesses:  new(mockBusinessRepository),
		members:     new(mockTeamMemberRepository),
		invitations: new(mockInvitationRepository),
		clients:     new(mockClientRepository),
		invoices:    new(mockInvoiceRepository),
		expenses:    new(mockExpenseRepository),
		products:    new(mockProductRepository),
	}
	f.service = NewPlanLimitService(PlanLimitRepositories{
		Users:       f.users,
		Plans:       f.plans,
		Businesses:  f.businesses,
		Members:     f.members,
		Invitations: f.invitations,
		Clients:     f.clients,
		Invoices:    f.invoices,
		Expenses:    f.expenses,
		Products:    f.products,
	}, demoEmail, zap.NewNop())
	return f
}

func freeOwner(t *testing.T, email string) *identity.User {
	t.Helper()
	owner, err := identity.NewUser(email, "password123", "Test", "Owner")
	require.NoError(t, err)
	return owner
}

func TestPlanLimitService_CheckLimit(t *testing.T) {
	ctx := context.Background()

	t.Run("allows creation below the free plan client limit", func(t *testing.T) {
		f := newPlanLimitFixture("")
		owner := freeOwner(t, "owner@example.com")

		f.users.On("FindByID", ctx, owner.ID).Return(owner, nil)
		f.clients.On("CountForOwner", ctx, owner.ID).Return(int64(9), nil)

		result, err := f.service.CheckLimit(ctx, owner.ID, ResourceClients)

		require.NoError(t, err)
		assert.True(t, result.Allowed)
		require.NotNil(t, result.Limit)
		assert.Equal(t, 10, *result.Limit)
		assert.Equal(t, int64(9), result.Current)
	})

	t.Run("denies creation at the free plan invoice limit", func(t *testing.T) {
		f := newPlanLimitFixture("")
		owner := freeOwner(t, "owner@example.com")

		f.users.On("FindByID", ctx, owner.ID).Return(owner, nil)
		f.invoices.On("CountForOwnerInMonth", ctx, owner.ID, mock.AnythingOfType("time.Time")).Return(int64(5), nil)

		result, err := f.service.CheckLimit(ctx, owner.ID, ResourceInvoices)

		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, int64(5), result.Current)

		err = f.service.EnforceLimit(ctx, owner.ID, ResourceInvoices)
		var limitErr *PlanLimitError
		require.ErrorAs(t, err, &limitErr)
		assert.Equal(t, ResourceInvoices, limitErr.Resource)
		assert.Equal(t, 5, limitErr.Limit)
	})

	t.Run("treats a nil plan limit as unlimited", func(t *testing.T) {
		f := newPlanLimitFixture("")
		owner := freeOwner(t, "owner@example.com")
		owner.Membership = identity.MembershipPremium

		f.users.On("FindByID", ctx, owner.ID).Return(owner, nil)

		result, err := f.service.CheckLimit(ctx, owner.ID, ResourceClients)

		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Nil(t, result.Limit)
		f.clients.AssertNotCalled(t, "CountForOwner", ctx, owner.ID)
	})

	t.Run("uses the subscription plan row over the legacy membership", func(t *testing.T) {
		f := newPlanLimitFixture("")
		owner := freeOwner(t, "owner@example.com")
		plan, err := identity.NewSubscriptionPlan("custom", "Custom")
		require.NoError(t, err)
		limit := 3
		plan.ClientsLimit = &limit
		owner.AssignPlan(plan.ID)

		f.users.On("FindByID", ctx, owner.ID).Return(owner, nil)
		f.plans.On("FindByID", ctx, plan.ID).Return(plan, nil)
		f.clients.On("CountForOwner", ctx, owner.ID).Return(int64(3), nil)

		result, err := f.service.CheckLimit(ctx, owner.ID, ResourceClients)

		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, 3, *result.Limit)
	})

	t.Run("falls back to the membership plan when the plan row is missing", func(t *testing.T) {
		f := newPlanLimitFixture("")
		owner := freeOwner(t, "owner@example.com")
		danglingID := uuid.New()
		owner.AssignPlan(danglingID)

		f.users.On("FindByID", ctx, owner.ID).Return(owner, nil)
		f.plans.On("FindByID", ctx, danglingID).Return(nil, shared.ErrNotFound)
		f.clients.On("CountForOwner", ctx, owner.ID).Return(int64(10), nil)

		result, err := f.service.CheckLimit(ctx, owner.ID, ResourceClients)

		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, 10, *result.Limit)
	})

	t.Run("counts pending invitations toward the team member quota", func(t *testing.T) {
		f := newPlanLimitFixture("")
		owner := freeOwner(t, "owner@example.com")
		owner.Membership = identity.MembershipPremium
		plan, err := identity.NewSubscriptionPlan("team", "Team")
		require.NoError(t, err)
		limit := 5
		plan.TeamMembersLimit = &limit
		owner.AssignPlan(plan.ID)

		f.users.On("FindByID", ctx, owner.ID).Return(owner, nil)
		f.plans.On("FindByID", ctx, plan.ID).Return(plan, nil)
		f.members.On("CountByOwner", ctx, owner.ID).Return(int64(3), nil)
		f.invitations.On("CountPendingByInviter", ctx, owner.ID).Return(int64(2), nil)

		result, err := f.service.CheckLimit(ctx, owner.ID, ResourceTeamMembers)

		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, int64(5), result.Current)
	})

	t.Run("demo account bypasses every limit", func(t *testing.T) {
		f := newPlanLimitFixture("Demo@Example.com")
		owner := freeOwner(t, "demo@example.com")

		f.users.On("FindByID", ctx, owner.ID).Return(owner, nil)

		result, err := f.service.CheckLimit(ctx, owner.ID, ResourceInvoices)

		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Nil(t, result.Limit)
		f.invoices.AssertNotCalled(t, "CountForOwnerInMonth", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPlanLimitService_Status(t *testing.T) {
	ctx := context.Background()

	t.Run("reports usage for every resource", func(t *testing.T) {
		f := newPlanLimitFixture("")
		owner := freeOwner(t, "owner@example.com")

		f.users.On("FindByID", ctx, owner.ID).Return(owner, nil)
		f.invoices.On("CountForOwnerInMonth", ctx, owner.ID, mock.AnythingOfType("time.Time")).Return(int64(2), nil)
		f.clients.On("CountForOwner", ctx, owner.ID).Return(int64(4), nil)
		f.expenses.On("CountForOwnerInMonth", ctx, owner.ID, mock.AnythingOfType("time.Time")).Return(int64(1), nil)
		f.businesses.On("CountByOwner", ctx, owner.ID).Return(int64(1), nil)
		f.products.On("CountForOwner", ctx, owner.ID).Return(int64(12), nil)
		f.members.On("CountByOwner", ctx, owner.ID).Return(int64(0), nil)
		f.invitations.On("CountPendingByInviter", ctx, owner.ID).Return(int64(0), nil)

		status, err := f.service.Status(ctx, owner.ID)

		require.NoError(t, err)
		assert.Equal(t, "free", status.PlanName)
		assert.Equal(t, "Pulsuz", status.PlanLabel)
		assert.False(t, status.Features.ForecastAnalytics)
		assert.Len(t, status.Usage, 6)
		assert.Equal(t, int64(2), status.Usage[ResourceInvoices].Current)
		require.NotNil(t, status.Usage[ResourceInvoices].Limit)
		assert.Equal(t, 5, *status.Usage[ResourceInvoices].Limit)
	})
}
