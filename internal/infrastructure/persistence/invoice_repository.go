package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/fakturly/backend/internal/domain/invoicing"
	"github.com/fakturly/backend/internal/domain/rbac"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/fakturly/backend/internal/infrastructure/persistence/businessscope"
	"github.com/fakturly/backend/internal/infrastructure/persistence/rolescope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByIDForBusiness finds an invoice with its items within a business,
// narrowed to the viewer's visibility
func (r *GormInvoiceRepository) FindByIDForBusiness(ctx context.Context, id, businessID uuid.UUID, vis rbac.Visibility) (*invoicing.Invoice, error) {
	var invoice invoicing.Invoice
	query := businessscope.Conn(ctx, r.db).
		Scopes(businessscope.Scope(businessID)).
		Preload("Items").
		Where("invoices.id = ?", id)
	query = rolescope.NewFilter(vis.Role, vis.UserID).Apply(query, rbac.EntityInvoice)

	if err := query.First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAllForBusiness finds the invoices of a business visible to the viewer,
// returning the page and the total matching count
func (r *GormInvoiceRepository) FindAllForBusiness(ctx context.Context, businessID uuid.UUID, vis rbac.Visibility, filter shared.Filter) ([]invoicing.Invoice, int64, error) {
	base := businessscope.Conn(ctx, r.db).
		Model(&invoicing.Invoice{}).
		Scopes(businessscope.Scope(businessID))
	base = rolescope.NewFilter(vis.Role, vis.UserID).Apply(base, rbac.EntityInvoice)
	base = r.applyFilterWithoutPagination(base, filter)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []invoicing.Invoice
	if err := applyPagination(base.Preload("Items"), filter, InvoiceSortFields, "created_at DESC").Find(&invoices).Error; err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// CountForOwnerInMonth counts invoices across the organization created
// within the calendar month containing at. Monthly plan limits reset on
// month boundaries, not rolling windows.
func (r *GormInvoiceRepository) CountForOwnerInMonth(ctx context.Context, ownerID uuid.UUID, at time.Time) (int64, error) {
	start, end := monthBounds(at)

	var count int64
	if err := businessscope.Conn(ctx, r.db).
		Model(&invoicing.Invoice{}).
		Joins("JOIN businesses ON businesses.id = invoices.business_id").
		Where("businesses.owner_id = ?", ownerID).
		Where("invoices.created_at >= ? AND invoices.created_at < ?", start, end).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an invoice together with its items
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	return businessscope.Conn(ctx, r.db).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(invoice).Error
}

// Delete deletes an invoice and its items within a business
func (r *GormInvoiceRepository) Delete(ctx context.Context, id, businessID uuid.UUID) error {
	return businessscope.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Scopes(businessscope.Scope(businessID)).
			Delete(&invoicing.Invoice{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Delete(&invoicing.InvoiceItem{}, "invoice_id = ?", id).Error
	})
}

// applyFilterWithoutPagination applies search and field filters to the query
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ? OR notes ILIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "client_id":
			query = query.Where("client_id = ?", value)
		case "issued_after":
			query = query.Where("issue_date >= ?", value)
		case "issued_before":
			query = query.Where("issue_date < ?", value)
		}
	}

	return query
}

// monthBounds returns the UTC calendar month containing at as [start, end)
func monthBounds(at time.Time) (time.Time, time.Time) {
	at = at.UTC()
	start := time.Date(at.Year(), at.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)
