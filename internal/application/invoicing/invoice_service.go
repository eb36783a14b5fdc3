package invoicing

import (
	"context"
	"time"

	"github.com/fakturly/backend/internal/application/billing"
	identityapp "github.com/fakturly/backend/internal/application/identity"
	"github.com/fakturly/backend/internal/domain/invoicing"
	"github.com/fakturly/backend/internal/domain/rbac"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceItemInput is one billed line of a new invoice
type InvoiceItemInput struct {
	Description string          `json:"description" binding:"required,max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreateInvoiceInput contains invoice creation data
type CreateInvoiceInput struct {
	ClientID      uuid.UUID          `json:"client_id" binding:"required"`
	InvoiceNumber string             `json:"invoice_number" binding:"required,max=50"`
	IssueDate     time.Time          `json:"issue_date" binding:"required"`
	DueDate       time.Time          `json:"due_date" binding:"required"`
	TaxRate       decimal.Decimal    `json:"tax_rate"`
	Theme         string             `json:"theme" binding:"max=20"`
	Notes         string             `json:"notes"`
	Items         []InvoiceItemInput `json:"items" binding:"required,min=1,dive"`
}

// UpdateInvoiceInput contains invoice fields; nil fields are left unchanged
type UpdateInvoiceInput struct {
	DueDate *time.Time `json:"due_date"`
	Theme   *string    `json:"theme"`
	Notes   *string    `json:"notes"`
}

// InvoiceService manages the invoices of a business
type InvoiceService struct {
	invoiceRepo invoicing.InvoiceRepository
	clientRepo  invoicing.ClientRepository
	planLimits  *billing.PlanLimitService
	tx          shared.Transactor
	logger      *zap.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo invoicing.InvoiceRepository,
	clientRepo invoicing.ClientRepository,
	planLimits *billing.PlanLimitService,
	tx shared.Transactor,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		planLimits:  planLimits,
		tx:          tx,
		logger:      logger,
	}
}

// ListInvoices returns the invoices visible to the caller
func (s *InvoiceService) ListInvoices(ctx context.Context, rc *identityapp.ResolvedContext, filter shared.Filter) (*shared.Paginated[invoicing.Invoice], error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityInvoice, rbac.VerbRead); err != nil {
		return nil, err
	}

	invoices, total, err := s.invoiceRepo.FindAllForBusiness(ctx, rc.Business.ID, rc.Visibility(), filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(invoices, total, filter.Page, filter.PageSize)
	return &result, nil
}

// GetInvoice returns one invoice if it falls within the caller's visibility
func (s *InvoiceService) GetInvoice(ctx context.Context, rc *identityapp.ResolvedContext, id uuid.UUID) (*invoicing.Invoice, error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityInvoice, rbac.VerbRead); err != nil {
		return nil, err
	}
	return s.invoiceRepo.FindByIDForBusiness(ctx, id, rc.Business.ID, rc.Visibility())
}

// CreateInvoice creates a draft invoice, subject to the organization's
// monthly invoice limit. The client must be visible to the caller: a sales
// rep cannot bill a client outside their assignment.
func (s *InvoiceService) CreateInvoice(ctx context.Context, rc *identityapp.ResolvedContext, input CreateInvoiceInput) (*invoicing.Invoice, error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityInvoice, rbac.VerbCreate); err != nil {
		return nil, err
	}

	if _, err := s.clientRepo.FindByIDForBusiness(ctx, input.ClientID, rc.Business.ID, rc.Visibility()); err != nil {
		return nil, err
	}

	invoice, err := invoicing.NewInvoice(rc.Business.ID, input.ClientID, rc.UserID, input.InvoiceNumber, input.IssueDate, input.DueDate)
	if err != nil {
		return nil, err
	}

	for _, item := range input.Items {
		if err := invoice.AddItem(item.Description, item.Quantity, item.UnitPrice); err != nil {
			return nil, err
		}
	}
	if err := invoice.SetTaxRate(input.TaxRate); err != nil {
		return nil, err
	}

	invoice.Theme = input.Theme
	if invoice.Theme == "" {
		invoice.Theme = rc.Business.DefaultInvoiceTheme
	}
	invoice.Notes = input.Notes

	// Monthly quota count and insert share one transaction
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.planLimits.EnforceLimit(ctx, rc.OwnerID(), billing.ResourceInvoices); err != nil {
			return err
		}
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			s.logger.Error("Failed to create invoice", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Invoice creation failed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("business_id", rc.Business.ID.String()),
		zap.String("number", invoice.InvoiceNumber),
	)
	return invoice, nil
}

// UpdateInvoice applies the non-nil fields of the input
func (s *InvoiceService) UpdateInvoice(ctx context.Context, rc *identityapp.ResolvedContext, id uuid.UUID, input UpdateInvoiceInput) (*invoicing.Invoice, error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityInvoice, rbac.VerbUpdate); err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.FindByIDForBusiness(ctx, id, rc.Business.ID, rc.Visibility())
	if err != nil {
		return nil, err
	}

	if input.DueDate != nil {
		if input.DueDate.Before(invoice.IssueDate) {
			return nil, shared.NewDomainError("INVALID_DATES", "Due date cannot be before issue date")
		}
		invoice.DueDate = *input.DueDate
	}
	if input.Theme != nil {
		invoice.Theme = *input.Theme
	}
	if input.Notes != nil {
		invoice.Notes = *input.Notes
	}
	invoice.UpdatedAt = time.Now()

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		s.logger.Error("Failed to update invoice", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Invoice update failed")
	}
	return invoice, nil
}

// ChangeInvoiceStatus runs one lifecycle transition on a visible invoice
func (s *InvoiceService) ChangeInvoiceStatus(ctx context.Context, rc *identityapp.ResolvedContext, id uuid.UUID, status invoicing.InvoiceStatus) (*invoicing.Invoice, error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityInvoice, rbac.VerbUpdate); err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.FindByIDForBusiness(ctx, id, rc.Business.ID, rc.Visibility())
	if err != nil {
		return nil, err
	}

	switch status {
	case invoicing.InvoiceStatusSent:
		err = invoice.MarkSent()
	case invoicing.InvoiceStatusPaid:
		err = invoice.MarkPaid()
	case invoicing.InvoiceStatusCancelled:
		err = invoice.Cancel()
	default:
		err = shared.NewDomainError("INVALID_STATUS", "Unknown invoice status transition")
	}
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		s.logger.Error("Failed to change invoice status", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Status change failed")
	}
	return invoice, nil
}

// DeleteInvoice removes an invoice and its items. The role gate denies this
// verb to sales reps even for their own invoices.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, rc *identityapp.ResolvedContext, id uuid.UUID) error {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityInvoice, rbac.VerbDelete); err != nil {
		return err
	}

	if _, err := s.invoiceRepo.FindByIDForBusiness(ctx, id, rc.Business.ID, rc.Visibility()); err != nil {
		return err
	}
	return s.invoiceRepo.Delete(ctx, id, rc.Business.ID)
}
