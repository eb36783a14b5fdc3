package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGormExpenseRepository_CountForOwnerInMonth(t *testing.T) {
	t.Run("boxes the month by the expense date", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormExpenseRepository(db)

		ownerID := uuid.New()
		at := time.Date(2026, time.August, 15, 10, 0, 0, 0, time.UTC)
		start := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

		// A backdated expense counts in its own month, so the predicate
		// must be on spent_at, not created_at
		mock.ExpectQuery(`SELECT count\(\*\) FROM "expenses" JOIN businesses ON businesses\.id = expenses\.business_id WHERE businesses\.owner_id = \$1 AND \(expenses\.spent_at >= \$2 AND expenses\.spent_at < \$3\)`).
			WithArgs(ownerID, start, end).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.CountForOwnerInMonth(context.Background(), ownerID, at)

		assert.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
