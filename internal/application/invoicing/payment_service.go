package invoicing

import (
	"context"
	"time"

	identityapp "github.com/fakturly/backend/internal/application/identity"
	"github.com/fakturly/backend/internal/domain/invoicing"
	"github.com/fakturly/backend/internal/domain/rbac"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreatePaymentInput contains payment creation data
type CreatePaymentInput struct {
	InvoiceID uuid.UUID               `json:"invoice_id" binding:"required"`
	Amount    decimal.Decimal         `json:"amount" binding:"required"`
	Method    invoicing.PaymentMethod `json:"method" binding:"required"`
	PaidAt    time.Time               `json:"paid_at" binding:"required"`
	Reference string                  `json:"reference" binding:"max=100"`
	Notes     string                  `json:"notes"`
}

// PaymentService records payments against invoices
type PaymentService struct {
	paymentRepo invoicing.PaymentRepository
	invoiceRepo invoicing.InvoiceRepository
	logger      *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	paymentRepo invoicing.PaymentRepository,
	invoiceRepo invoicing.InvoiceRepository,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

// ListPayments returns the business's payments
func (s *PaymentService) ListPayments(ctx context.Context, rc *identityapp.ResolvedContext, filter shared.Filter) (*shared.Paginated[invoicing.Payment], error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityPayment, rbac.VerbRead); err != nil {
		return nil, err
	}

	payments, total, err := s.paymentRepo.FindAllForBusiness(ctx, rc.Business.ID, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(payments, total, filter.Page, filter.PageSize)
	return &result, nil
}

// ListPaymentsForInvoice returns every payment recorded against one invoice,
// oldest first. The invoice itself must be visible to the caller.
func (s *PaymentService) ListPaymentsForInvoice(ctx context.Context, rc *identityapp.ResolvedContext, invoiceID uuid.UUID) ([]invoicing.Payment, error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityPayment, rbac.VerbRead); err != nil {
		return nil, err
	}
	if _, err := s.invoiceRepo.FindByIDForBusiness(ctx, invoiceID, rc.Business.ID, rc.Visibility()); err != nil {
		return nil, err
	}
	return s.paymentRepo.FindAllForInvoice(ctx, invoiceID, rc.Business.ID)
}

// RecordPayment stores a payment against a visible invoice. When the paid
// total reaches the invoice total the invoice transitions to paid.
func (s *PaymentService) RecordPayment(ctx context.Context, rc *identityapp.ResolvedContext, input CreatePaymentInput) (*invoicing.Payment, error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityPayment, rbac.VerbCreate); err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.FindByIDForBusiness(ctx, input.InvoiceID, rc.Business.ID, rc.Visibility())
	if err != nil {
		return nil, err
	}
	if invoice.Status == invoicing.InvoiceStatusCancelled {
		return nil, shared.NewDomainError("INVALID_STATUS", "Cancelled invoices cannot receive payments")
	}

	payment, err := invoicing.NewPayment(rc.Business.ID, invoice.ID, input.Amount, input.Method, input.PaidAt, rc.UserID)
	if err != nil {
		return nil, err
	}
	payment.Reference = input.Reference
	payment.Notes = input.Notes

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		s.logger.Error("Failed to record payment", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Payment recording failed")
	}

	if err := s.settleIfPaid(ctx, invoice); err != nil {
		s.logger.Error("Failed to settle invoice after payment",
			zap.String("invoice_id", invoice.ID.String()), zap.Error(err))
	}

	return payment, nil
}

// DeletePayment removes a payment record
func (s *PaymentService) DeletePayment(ctx context.Context, rc *identityapp.ResolvedContext, id uuid.UUID) error {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityPayment, rbac.VerbDelete); err != nil {
		return err
	}
	return s.paymentRepo.Delete(ctx, id, rc.Business.ID)
}

// settleIfPaid marks the invoice paid once its payments cover the total
func (s *PaymentService) settleIfPaid(ctx context.Context, invoice *invoicing.Invoice) error {
	if invoice.Status == invoicing.InvoiceStatusPaid {
		return nil
	}

	payments, err := s.paymentRepo.FindAllForInvoice(ctx, invoice.ID, invoice.BusinessID)
	if err != nil {
		return err
	}

	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	if paid.LessThan(invoice.Total) {
		return nil
	}

	if err := invoice.MarkPaid(); err != nil {
		return err
	}
	return s.invoiceRepo.Save(ctx, invoice)
}
