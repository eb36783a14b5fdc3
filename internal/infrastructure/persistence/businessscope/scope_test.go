package businessscope

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fakturly/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type scopedModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"size:100"`
}

func (scopedModel) TableName() string { return "scoped_models" }

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func contextWithBusiness(businessID string) context.Context {
	ctx := context.Background()
	if businessID != "" {
		ctx, _ = logger.WithBusinessID(ctx, logger.FromContext(ctx), businessID)
	}
	return ctx
}

func TestBusinessDB_WithContext(t *testing.T) {
	businessID := uuid.New()

	t.Run("applies business filter from context", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "scoped_models" WHERE business_id = \$1`).
			WithArgs(businessID.String()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "business_id", "name"}))

		bdb := NewBusinessDB(db)
		var got []scopedModel
		err := bdb.WithContext(contextWithBusiness(businessID.String())).Find(&got).Error

		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("errors when business is missing", func(t *testing.T) {
		db, _, mockDB := setupMockDB(t)
		defer mockDB.Close()

		bdb := NewBusinessDB(db)
		var got []scopedModel
		err := bdb.WithContext(context.Background()).Find(&got).Error

		assert.ErrorIs(t, err, ErrBusinessIDRequired)
	})

	t.Run("errors on malformed business id", func(t *testing.T) {
		db, _, mockDB := setupMockDB(t)
		defer mockDB.Close()

		bdb := NewBusinessDB(db)
		var got []scopedModel
		err := bdb.WithContext(contextWithBusiness("not-a-uuid")).Find(&got).Error

		assert.ErrorIs(t, err, ErrInvalidBusinessID)
	})
}

func TestBusinessDB_WithBusiness(t *testing.T) {
	businessID := uuid.New()

	t.Run("applies explicit business filter", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "scoped_models" WHERE business_id = \$1`).
			WithArgs(businessID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "business_id", "name"}))

		bdb := NewBusinessDB(db)
		var got []scopedModel
		err := bdb.WithBusiness(context.Background(), businessID).Find(&got).Error

		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects nil business id", func(t *testing.T) {
		db, _, mockDB := setupMockDB(t)
		defer mockDB.Close()

		bdb := NewBusinessDB(db)
		var got []scopedModel
		err := bdb.WithBusiness(context.Background(), uuid.Nil).Find(&got).Error

		assert.ErrorIs(t, err, ErrBusinessIDRequired)
	})
}

func TestBusinessDB_Transaction(t *testing.T) {
	t.Run("threads the transaction through the context", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		bdb := NewBusinessDB(db)
		err := bdb.Transaction(context.Background(), func(ctx context.Context) error {
			tx := TxFrom(ctx)
			require.NotNil(t, tx)
			// Conn must route queries through the open transaction
			assert.Equal(t, tx.Statement.ConnPool, Conn(ctx, db).Statement.ConnPool)
			return nil
		})

		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		db, mock, mockDB := setupMockDB(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		bdb := NewBusinessDB(db)
		err := bdb.Transaction(context.Background(), func(ctx context.Context) error {
			return assert.AnError
		})

		assert.ErrorIs(t, err, assert.AnError)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConn(t *testing.T) {
	t.Run("falls back to the base connection without a transaction", func(t *testing.T) {
		db, _, mockDB := setupMockDB(t)
		defer mockDB.Close()

		assert.Nil(t, TxFrom(context.Background()))
		assert.NotNil(t, Conn(context.Background(), db))
	})
}
