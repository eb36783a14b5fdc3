package persistence

import (
	"context"
	"errors"

	"github.com/fakturly/backend/internal/domain/invoicing"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/fakturly/backend/internal/infrastructure/persistence/businessscope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByIDForBusiness finds a payment by ID within a business
func (r *GormPaymentRepository) FindByIDForBusiness(ctx context.Context, id, businessID uuid.UUID) (*invoicing.Payment, error) {
	var payment invoicing.Payment
	if err := businessscope.Conn(ctx, r.db).
		Scopes(businessscope.Scope(businessID)).
		Where("id = ?", id).
		First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// FindAllForBusiness finds the payments of a business, returning the page
// and the total matching count
func (r *GormPaymentRepository) FindAllForBusiness(ctx context.Context, businessID uuid.UUID, filter shared.Filter) ([]invoicing.Payment, int64, error) {
	base := businessscope.Conn(ctx, r.db).
		Model(&invoicing.Payment{}).
		Scopes(businessscope.Scope(businessID))

	for key, value := range filter.Filters {
		switch key {
		case "invoice_id":
			base = base.Where("invoice_id = ?", value)
		case "method":
			base = base.Where("method = ?", value)
		}
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []invoicing.Payment
	if err := applyPagination(base, filter, PaymentSortFields, "paid_at DESC").Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// FindAllForInvoice finds every payment recorded against an invoice
func (r *GormPaymentRepository) FindAllForInvoice(ctx context.Context, invoiceID, businessID uuid.UUID) ([]invoicing.Payment, error) {
	var payments []invoicing.Payment
	if err := businessscope.Conn(ctx, r.db).
		Scopes(businessscope.Scope(businessID)).
		Where("invoice_id = ?", invoiceID).
		Order("paid_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *invoicing.Payment) error {
	return businessscope.Conn(ctx, r.db).Save(payment).Error
}

// Delete deletes a payment within a business
func (r *GormPaymentRepository) Delete(ctx context.Context, id, businessID uuid.UUID) error {
	result := businessscope.Conn(ctx, r.db).
		Scopes(businessscope.Scope(businessID)).
		Delete(&invoicing.Payment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ invoicing.PaymentRepository = (*GormPaymentRepository)(nil)
