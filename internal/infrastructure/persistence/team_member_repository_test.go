package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fakturly/backend/internal/domain/identity"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestGormTeamMemberRepository_FindEdge(t *testing.T) {
	t.Run("finds business-specific edge", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTeamMemberRepository(db)

		edgeID := uuid.New()
		ownerID := uuid.New()
		userID := uuid.New()
		businessID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "corporate_owner_id", "business_id", "user_id", "role"}).
			AddRow(edgeID, ownerID, businessID, userID, "MANAGER")

		// edges with a NULL business cover every business of the organization
		mock.ExpectQuery(`SELECT \* FROM "team_members" WHERE \(corporate_owner_id = \$1 AND user_id = \$2\) AND \(business_id = \$3 OR business_id IS NULL\) ORDER BY .*`).
			WithArgs(ownerID, userID, businessID, 1).
			WillReturnRows(rows)

		member, err := repo.FindEdge(context.Background(), ownerID, userID, businessID)

		assert.NoError(t, err)
		assert.NotNil(t, member)
		assert.Equal(t, identity.RoleManager, member.Role)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when no edge covers the business", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTeamMemberRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "team_members" WHERE .*`).
			WillReturnError(gorm.ErrRecordNotFound)

		member, err := repo.FindEdge(context.Background(), uuid.New(), uuid.New(), uuid.New())

		assert.Nil(t, member)
		assert.Equal(t, shared.ErrNotFound, err)
	})
}

func TestGormTeamMemberRepository_ExistsForBusinessAndUser(t *testing.T) {
	t.Run("counts org-wide edges as covering the business", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTeamMemberRepository(db)

		userID := uuid.New()
		businessID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "team_members" WHERE user_id = \$1 AND \(business_id = \$2 OR business_id IS NULL\)`).
			WithArgs(userID, businessID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsForBusinessAndUser(context.Background(), businessID, userID)

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTeamMemberInvitationRepository_ExistsPending(t *testing.T) {
	t.Run("matches email case-insensitively", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormTeamMemberInvitationRepository(db)

		inviterID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "team_member_invitations" WHERE inviter_id = \$1 AND LOWER\(email\) = \$2 AND is_used = \$3`).
			WithArgs(inviterID, "new@example.com", false).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsPending(context.Background(), inviterID, "New@Example.com")

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
