package invoicing

import (
	"context"
	"errors"

	"github.com/fakturly/backend/internal/application/billing"
	identityapp "github.com/fakturly/backend/internal/application/identity"
	"github.com/fakturly/backend/internal/domain/invoicing"
	"github.com/fakturly/backend/internal/domain/rbac"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductInput contains product creation data
type CreateProductInput struct {
	Name        string          `json:"name" binding:"required,max=255"`
	SKU         string          `json:"sku" binding:"max=50"`
	Description string          `json:"description"`
	Unit        string          `json:"unit" binding:"max=20"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  *uuid.UUID      `json:"category_id"`
}

// UpdateProductInput contains product fields; nil fields are left unchanged
type UpdateProductInput struct {
	Name        *string          `json:"name"`
	SKU         *string          `json:"sku"`
	Description *string          `json:"description"`
	Unit        *string          `json:"unit"`
	Price       *decimal.Decimal `json:"price"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	IsActive    *bool            `json:"is_active"`
}

// ProductService manages the products of a business
type ProductService struct {
	productRepo  invoicing.ProductRepository
	categoryRepo invoicing.CategoryRepository
	planLimits   *billing.PlanLimitService
	tx           shared.Transactor
	logger       *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(
	productRepo invoicing.ProductRepository,
	categoryRepo invoicing.CategoryRepository,
	planLimits *billing.PlanLimitService,
	tx shared.Transactor,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		planLimits:   planLimits,
		tx:           tx,
		logger:       logger,
	}
}

// ListProducts returns the business's products
func (s *ProductService) ListProducts(ctx context.Context, rc *identityapp.ResolvedContext, filter shared.Filter) (*shared.Paginated[invoicing.Product], error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityProduct, rbac.VerbRead); err != nil {
		return nil, err
	}

	products, total, err := s.productRepo.FindAllForBusiness(ctx, rc.Business.ID, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(products, total, filter.Page, filter.PageSize)
	return &result, nil
}

// GetProduct returns one product of the business
func (s *ProductService) GetProduct(ctx context.Context, rc *identityapp.ResolvedContext, id uuid.UUID) (*invoicing.Product, error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityProduct, rbac.VerbRead); err != nil {
		return nil, err
	}
	return s.productRepo.FindByIDForBusiness(ctx, id, rc.Business.ID)
}

// CreateProduct creates a product, subject to the organization's product limit
func (s *ProductService) CreateProduct(ctx context.Context, rc *identityapp.ResolvedContext, input CreateProductInput) (*invoicing.Product, error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityProduct, rbac.VerbCreate); err != nil {
		return nil, err
	}

	if input.CategoryID != nil {
		if err := s.checkCategory(ctx, rc.Business.ID, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	product, err := invoicing.NewProduct(rc.Business.ID, input.Name, input.Price, rc.UserID)
	if err != nil {
		return nil, err
	}
	product.SKU = input.SKU
	product.Description = input.Description
	if input.Unit != "" {
		product.Unit = input.Unit
	}
	product.CategoryID = input.CategoryID

	// Product quota count and insert share one transaction
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.planLimits.EnforceLimit(ctx, rc.OwnerID(), billing.ResourceProducts); err != nil {
			return err
		}
		if err := s.productRepo.Save(ctx, product); err != nil {
			s.logger.Error("Failed to create product", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Product creation failed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct applies the non-nil fields of the input
func (s *ProductService) UpdateProduct(ctx context.Context, rc *identityapp.ResolvedContext, id uuid.UUID, input UpdateProductInput) (*invoicing.Product, error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityProduct, rbac.VerbUpdate); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByIDForBusiness(ctx, id, rc.Business.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.SKU != nil {
		product.SKU = *input.SKU
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Unit != nil {
		product.Unit = *input.Unit
	}
	if input.Price != nil {
		if err := product.SetPrice(*input.Price); err != nil {
			return nil, err
		}
	}
	if input.CategoryID != nil {
		if *input.CategoryID == uuid.Nil {
			product.CategoryID = nil
		} else {
			if err := s.checkCategory(ctx, rc.Business.ID, *input.CategoryID); err != nil {
				return nil, err
			}
			product.CategoryID = input.CategoryID
		}
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		s.logger.Error("Failed to update product", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Product update failed")
	}
	return product, nil
}

// DeleteProduct removes a product
func (s *ProductService) DeleteProduct(ctx context.Context, rc *identityapp.ResolvedContext, id uuid.UUID) error {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityProduct, rbac.VerbDelete); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id, rc.Business.ID)
}

// checkCategory verifies the category exists in the business and groups products
func (s *ProductService) checkCategory(ctx context.Context, businessID, categoryID uuid.UUID) error {
	category, err := s.categoryRepo.FindByIDForBusiness(ctx, categoryID, businessID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CATEGORY", "Category not found in this business")
		}
		return err
	}
	if category.Kind != invoicing.CategoryKindProduct {
		return shared.NewDomainError("INVALID_CATEGORY", "Category is not a product category")
	}
	return nil
}
