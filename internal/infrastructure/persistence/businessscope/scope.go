// Package businessscope provides business-level (tenant) scoping for GORM.
//
// Every tenant-scoped table carries a business_id column. This package
// applies WHERE business_id = ? automatically so a repository can never
// read or write another tenant's rows by omission.
//
// Usage:
//
//	db := businessscope.NewBusinessDB(gormDB)
//	scoped := db.WithBusiness(businessID)
//	scoped.Find(&clients) // WHERE business_id = 'xxx' is auto-added
package businessscope

import (
	"context"
	"errors"

	"github.com/fakturly/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrBusinessIDRequired is returned when a business ID is required but missing
var ErrBusinessIDRequired = errors.New("business_id is required but not found in context")

// ErrInvalidBusinessID is returned when the business ID is not a UUID
var ErrInvalidBusinessID = errors.New("invalid business_id format")

// Scope applies business filtering to GORM queries
func Scope(businessID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("business_id = ?", businessID)
	}
}

// ScopeString applies business filtering using a string business ID
func ScopeString(businessID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("business_id = ?", businessID)
	}
}

// BusinessDB wraps a GORM DB with automatic business scoping
type BusinessDB struct {
	db       *gorm.DB
	required bool
}

// NewBusinessDB creates a BusinessDB that requires a business ID
func NewBusinessDB(db *gorm.DB) *BusinessDB {
	return &BusinessDB{db: db, required: true}
}

// DB returns the underlying GORM DB without business scoping.
// This bypasses tenant isolation; only identity-level repositories
// (users, businesses, team members) should use it.
func (b *BusinessDB) DB() *gorm.DB {
	return b.db
}

// WithContext returns a GORM DB scoped to the business stored in context by
// the business-context middleware. If no business is resolved and scoping is
// required, the returned DB errors on any operation instead of leaking rows.
func (b *BusinessDB) WithContext(ctx context.Context) *gorm.DB {
	businessID := logger.GetBusinessID(ctx)

	if businessID == "" {
		db := b.db.WithContext(ctx)
		if b.required {
			_ = db.AddError(ErrBusinessIDRequired)
		}
		return db
	}
	if _, err := uuid.Parse(businessID); err != nil {
		db := b.db.WithContext(ctx)
		_ = db.AddError(ErrInvalidBusinessID)
		return db
	}

	return b.db.WithContext(ctx).Scopes(ScopeString(businessID))
}

// WithBusiness returns a GORM DB scoped to a specific business ID
func (b *BusinessDB) WithBusiness(ctx context.Context, businessID uuid.UUID) *gorm.DB {
	if businessID == uuid.Nil {
		db := b.db.WithContext(ctx)
		_ = db.AddError(ErrBusinessIDRequired)
		return db
	}
	return b.db.WithContext(ctx).Scopes(Scope(businessID))
}

type txKey struct{}

// WithTx returns a context carrying an open transaction for Conn to pick up
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFrom returns the transaction carried by the context, or nil
func TxFrom(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txKey{}).(*gorm.DB)
	return tx
}

// Conn returns the transaction carried by the context when one is open,
// otherwise the given connection. Repositories route every query through
// this so calls made inside Transaction share one snapshot.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx := TxFrom(ctx); tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// Transaction executes fn within a transaction, threading it through the
// context handed to fn. Quota-checked creates run through this so the limit
// count and the insert see the same snapshot.
func (b *BusinessDB) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx))
	})
}

// Unscoped returns the underlying DB without any business scoping.
// Only for system-level operations and migrations.
func (b *BusinessDB) Unscoped() *gorm.DB {
	return b.db
}
