// Integration tests for business-level data isolation:
// - data created in business A is invisible to business B
// - context resolution denies users without an edge into the business
// - role-based row visibility restricts sales reps to own or assigned rows
package integration

import (
	"context"
	"testing"

	identityapp "github.com/fakturly/backend/internal/application/identity"
	identitydomain "github.com/fakturly/backend/internal/domain/identity"
	"github.com/fakturly/backend/internal/domain/invoicing"
	"github.com/fakturly/backend/internal/domain/rbac"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/fakturly/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// IsolationTestSetup provides test infrastructure with two separate organizations
type IsolationTestSetup struct {
	DB         *TestDB
	UserRepo   *persistence.GormUserRepository
	ClientRepo *persistence.GormClientRepository
	MemberRepo *persistence.GormTeamMemberRepository
	Resolver   *identityapp.ContextResolver

	OwnerA    *identitydomain.User
	OwnerB    *identitydomain.User
	BusinessA *identitydomain.Business
	BusinessB *identitydomain.Business
}

// NewIsolationTestSetup creates two owners, each with one business
func NewIsolationTestSetup(t *testing.T) *IsolationTestSetup {
	t.Helper()

	testDB := NewTestDB(t)
	ctx := context.Background()

	userRepo := persistence.NewGormUserRepository(testDB.DB)
	businessRepo := persistence.NewGormBusinessRepository(testDB.DB)
	memberRepo := persistence.NewGormTeamMemberRepository(testDB.DB)
	clientRepo := persistence.NewGormClientRepository(testDB.DB)

	ownerA, err := identitydomain.NewUser("owner-a@example.com", "password123", "Aysel", "Aliyeva")
	require.NoError(t, err)
	require.NoError(t, userRepo.Save(ctx, ownerA))

	ownerB, err := identitydomain.NewUser("owner-b@example.com", "password123", "Babek", "Bagirov")
	require.NoError(t, err)
	require.NoError(t, userRepo.Save(ctx, ownerB))

	businessA, err := identitydomain.NewBusiness(ownerA.ID, "Business A")
	require.NoError(t, err)
	require.NoError(t, businessRepo.Save(ctx, businessA))

	businessB, err := identitydomain.NewBusiness(ownerB.ID, "Business B")
	require.NoError(t, err)
	require.NoError(t, businessRepo.Save(ctx, businessB))

	return &IsolationTestSetup{
		DB:         testDB,
		UserRepo:   userRepo,
		ClientRepo: clientRepo,
		MemberRepo: memberRepo,
		Resolver:   identityapp.NewContextResolver(businessRepo, memberRepo, zap.NewNop()),
		OwnerA:     ownerA,
		OwnerB:     ownerB,
		BusinessA:  businessA,
		BusinessB:  businessB,
	}
}

func (s *IsolationTestSetup) createClient(t *testing.T, businessID uuid.UUID, name string, createdBy uuid.UUID) *invoicing.Client {
	t.Helper()

	client, err := invoicing.NewClient(businessID, name, createdBy)
	require.NoError(t, err)
	require.NoError(t, s.ClientRepo.Save(context.Background(), client))
	return client
}

func TestBusinessIsolation_DataIsolation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewIsolationTestSetup(t)
	ctx := context.Background()

	clientA := setup.createClient(t, setup.BusinessA.ID, "Client of A", setup.OwnerA.ID)

	t.Run("client_created_in_business_A_not_visible_to_business_B", func(t *testing.T) {
		visB := rbac.OwnerVisibility(setup.OwnerB.ID)

		clients, total, err := setup.ClientRepo.FindAllForBusiness(ctx, setup.BusinessB.ID, visB, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Empty(t, clients)
		assert.Zero(t, total)

		_, err = setup.ClientRepo.FindByIDForBusiness(ctx, clientA.ID, setup.BusinessB.ID, visB)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("client_visible_within_its_own_business", func(t *testing.T) {
		visA := rbac.OwnerVisibility(setup.OwnerA.ID)

		found, err := setup.ClientRepo.FindByIDForBusiness(ctx, clientA.ID, setup.BusinessA.ID, visA)
		require.NoError(t, err)
		assert.Equal(t, "Client of A", found.Name)
	})
}

func TestBusinessIsolation_ContextResolution(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewIsolationTestSetup(t)
	ctx := context.Background()

	t.Run("owner_resolves_own_business", func(t *testing.T) {
		rc, err := setup.Resolver.Resolve(ctx, setup.OwnerA.ID, setup.BusinessA.ID)
		require.NoError(t, err)
		assert.Equal(t, identitydomain.RoleOwner, rc.Role)
		assert.False(t, rc.IsTeamMember())
		assert.Equal(t, setup.OwnerA.ID, rc.OwnerID())
	})

	t.Run("user_without_edge_cannot_resolve_foreign_business", func(t *testing.T) {
		_, err := setup.Resolver.Resolve(ctx, setup.OwnerB.ID, setup.BusinessA.ID)
		assert.Error(t, err)
	})

	t.Run("team_member_resolves_with_granted_role", func(t *testing.T) {
		rep, err := identitydomain.NewUser("rep@example.com", "password123", "Rashad", "Rzayev")
		require.NoError(t, err)
		require.NoError(t, setup.UserRepo.Save(ctx, rep))

		edge, err := identitydomain.NewTeamMember(setup.OwnerA.ID, rep.ID, &setup.BusinessA.ID, identitydomain.RoleSalesRep)
		require.NoError(t, err)
		require.NoError(t, setup.MemberRepo.Save(ctx, edge))

		rc, err := setup.Resolver.Resolve(ctx, rep.ID, setup.BusinessA.ID)
		require.NoError(t, err)
		assert.Equal(t, identitydomain.RoleSalesRep, rc.Role)
		assert.True(t, rc.IsTeamMember())
		// Plan limits are still charged against the organization owner
		assert.Equal(t, setup.OwnerA.ID, rc.OwnerID())
	})
}

func TestBusinessIsolation_RowVisibility(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	setup := NewIsolationTestSetup(t)
	ctx := context.Background()

	rep, err := identitydomain.NewUser("rep2@example.com", "password123", "Samir", "Safarov")
	require.NoError(t, err)
	require.NoError(t, setup.UserRepo.Save(ctx, rep))

	ownersClient := setup.createClient(t, setup.BusinessA.ID, "Owner's client", setup.OwnerA.ID)
	repsClient := setup.createClient(t, setup.BusinessA.ID, "Rep's client", rep.ID)

	assigned := setup.createClient(t, setup.BusinessA.ID, "Assigned client", setup.OwnerA.ID)
	assigned.AssignTo(rep.ID)
	require.NoError(t, setup.ClientRepo.Save(ctx, assigned))

	t.Run("owner_sees_every_row", func(t *testing.T) {
		clients, total, err := setup.ClientRepo.FindAllForBusiness(ctx, setup.BusinessA.ID,
			rbac.OwnerVisibility(setup.OwnerA.ID), shared.DefaultFilter())
		require.NoError(t, err)
		assert.Len(t, clients, 3)
		assert.EqualValues(t, 3, total)
	})

	t.Run("sales_rep_sees_only_own_and_assigned_rows", func(t *testing.T) {
		vis := rbac.Visibility{Role: identitydomain.RoleSalesRep, UserID: rep.ID}

		clients, total, err := setup.ClientRepo.FindAllForBusiness(ctx, setup.BusinessA.ID, vis, shared.DefaultFilter())
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)

		names := make([]string, 0, len(clients))
		for _, c := range clients {
			names = append(names, c.Name)
		}
		assert.ElementsMatch(t, []string{"Rep's client", "Assigned client"}, names)
	})

	t.Run("sales_rep_cannot_load_unassigned_row_by_id", func(t *testing.T) {
		vis := rbac.Visibility{Role: identitydomain.RoleSalesRep, UserID: rep.ID}

		_, err := setup.ClientRepo.FindByIDForBusiness(ctx, ownersClient.ID, setup.BusinessA.ID, vis)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		found, err := setup.ClientRepo.FindByIDForBusiness(ctx, repsClient.ID, setup.BusinessA.ID, vis)
		require.NoError(t, err)
		assert.Equal(t, "Rep's client", found.Name)
	})
}
