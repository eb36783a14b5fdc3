package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTeamMemberInvitation(t *testing.T) {
	t.Run("creates invitation successfully", func(t *testing.T) {
		inviterID := uuid.New()
		businessID := uuid.New()

		inv, err := NewTeamMemberInvitation(inviterID, &businessID, "new@example.com", RoleSalesRep)

		require.NoError(t, err)
		assert.Equal(t, inviterID, inv.InviterID)
		assert.Equal(t, "new@example.com", inv.Email)
		assert.Equal(t, RoleSalesRep, inv.Role)
		assert.False(t, inv.IsUsed)
	})

	t.Run("normalizes email to lowercase", func(t *testing.T) {
		inv, err := NewTeamMemberInvitation(uuid.New(), nil, "New@Example.COM", RoleAccountant)

		require.NoError(t, err)
		assert.Equal(t, "new@example.com", inv.Email)
	})

	t.Run("fails with invalid email", func(t *testing.T) {
		inv, err := NewTeamMemberInvitation(uuid.New(), nil, "not-an-email", RoleAccountant)

		assert.Error(t, err)
		assert.Nil(t, inv)
	})

	t.Run("fails with owner role", func(t *testing.T) {
		inv, err := NewTeamMemberInvitation(uuid.New(), nil, "new@example.com", RoleOwner)

		assert.Error(t, err)
		assert.Nil(t, inv)
	})
}

func TestTeamMemberInvitation_Consume(t *testing.T) {
	t.Run("consumes once", func(t *testing.T) {
		inv, _ := NewTeamMemberInvitation(uuid.New(), nil, "new@example.com", RoleSalesRep)

		err := inv.Consume()

		require.NoError(t, err)
		assert.True(t, inv.IsUsed)
	})

	t.Run("fails on second consumption", func(t *testing.T) {
		inv, _ := NewTeamMemberInvitation(uuid.New(), nil, "new@example.com", RoleSalesRep)
		require.NoError(t, inv.Consume())

		err := inv.Consume()

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already been used")
	})
}
