package invoicing

import (
	"context"

	identityapp "github.com/fakturly/backend/internal/application/identity"
	"github.com/fakturly/backend/internal/domain/invoicing"
	"github.com/fakturly/backend/internal/domain/rbac"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordMovementInput contains stock movement data
type RecordMovementInput struct {
	ProductID uuid.UUID                          `json:"product_id" binding:"required"`
	Type      invoicing.InventoryTransactionType `json:"type" binding:"required"`
	Quantity  decimal.Decimal                    `json:"quantity" binding:"required"`
	Note      string                             `json:"note" binding:"max=500"`
}

// InventoryService records stock movements and keeps product stock in step.
// Movements are append-only: corrections are new adjustment movements, never
// edits of history.
type InventoryService struct {
	movementRepo invoicing.InventoryTransactionRepository
	productRepo  invoicing.ProductRepository
	logger       *zap.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	movementRepo invoicing.InventoryTransactionRepository,
	productRepo invoicing.ProductRepository,
	logger *zap.Logger,
) *InventoryService {
	return &InventoryService{
		movementRepo: movementRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// ListMovements returns the business's stock movements
func (s *InventoryService) ListMovements(ctx context.Context, rc *identityapp.ResolvedContext, filter shared.Filter) (*shared.Paginated[invoicing.InventoryTransaction], error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityInventoryTransaction, rbac.VerbRead); err != nil {
		return nil, err
	}

	movements, total, err := s.movementRepo.FindAllForBusiness(ctx, rc.Business.ID, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(movements, total, filter.Page, filter.PageSize)
	return &result, nil
}

// ListMovementsForProduct returns a product's movement history, oldest first
func (s *InventoryService) ListMovementsForProduct(ctx context.Context, rc *identityapp.ResolvedContext, productID uuid.UUID) ([]invoicing.InventoryTransaction, error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityInventoryTransaction, rbac.VerbRead); err != nil {
		return nil, err
	}
	if _, err := s.productRepo.FindByIDForBusiness(ctx, productID, rc.Business.ID); err != nil {
		return nil, err
	}
	return s.movementRepo.FindAllForProduct(ctx, productID, rc.Business.ID)
}

// RecordMovement stores a stock movement and applies its delta to the
// product. A movement that would drive stock negative is rejected before
// anything is written.
func (s *InventoryService) RecordMovement(ctx context.Context, rc *identityapp.ResolvedContext, input RecordMovementInput) (*invoicing.InventoryTransaction, error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityInventoryTransaction, rbac.VerbCreate); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByIDForBusiness(ctx, input.ProductID, rc.Business.ID)
	if err != nil {
		return nil, err
	}

	movement, err := invoicing.NewInventoryTransaction(rc.Business.ID, product.ID, input.Type, input.Quantity, rc.UserID)
	if err != nil {
		return nil, err
	}
	movement.Note = input.Note

	if err := product.AdjustStock(movement.StockDelta()); err != nil {
		return nil, err
	}

	if err := s.movementRepo.Save(ctx, movement); err != nil {
		s.logger.Error("Failed to record stock movement", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Stock movement failed")
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		s.logger.Error("Failed to apply stock delta",
			zap.String("product_id", product.ID.String()), zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Stock movement failed")
	}

	return movement, nil
}
