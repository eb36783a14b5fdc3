package invoicing

import (
	"context"

	identityapp "github.com/fakturly/backend/internal/application/identity"
	"github.com/fakturly/backend/internal/domain/invoicing"
	"github.com/fakturly/backend/internal/domain/rbac"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateCategoryInput contains category creation data
type CreateCategoryInput struct {
	Name        string                 `json:"name" binding:"required,max=100"`
	Kind        invoicing.CategoryKind `json:"kind" binding:"required"`
	Description string                 `json:"description"`
}

// UpdateCategoryInput contains category fields; nil fields are left
// unchanged. The kind of a category never changes after creation.
type UpdateCategoryInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// CategoryService manages the categories of a business
type CategoryService struct {
	categoryRepo invoicing.CategoryRepository
	logger       *zap.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo invoicing.CategoryRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, logger: logger}
}

// ListCategories returns the business's categories
func (s *CategoryService) ListCategories(ctx context.Context, rc *identityapp.ResolvedContext, filter shared.Filter) (*shared.Paginated[invoicing.Category], error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityCategory, rbac.VerbRead); err != nil {
		return nil, err
	}

	categories, total, err := s.categoryRepo.FindAllForBusiness(ctx, rc.Business.ID, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(categories, total, filter.Page, filter.PageSize)
	return &result, nil
}

// GetCategory returns one category of the business
func (s *CategoryService) GetCategory(ctx context.Context, rc *identityapp.ResolvedContext, id uuid.UUID) (*invoicing.Category, error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityCategory, rbac.VerbRead); err != nil {
		return nil, err
	}
	return s.categoryRepo.FindByIDForBusiness(ctx, id, rc.Business.ID)
}

// CreateCategory creates a category
func (s *CategoryService) CreateCategory(ctx context.Context, rc *identityapp.ResolvedContext, input CreateCategoryInput) (*invoicing.Category, error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityCategory, rbac.VerbCreate); err != nil {
		return nil, err
	}

	category, err := invoicing.NewCategory(rc.Business.ID, input.Name, input.Kind, rc.UserID)
	if err != nil {
		return nil, err
	}
	category.Description = input.Description

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		s.logger.Error("Failed to create category", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Category creation failed")
	}
	return category, nil
}

// UpdateCategory applies the non-nil fields of the input
func (s *CategoryService) UpdateCategory(ctx context.Context, rc *identityapp.ResolvedContext, id uuid.UUID, input UpdateCategoryInput) (*invoicing.Category, error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityCategory, rbac.VerbUpdate); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.FindByIDForBusiness(ctx, id, rc.Business.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := category.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Description != nil {
		category.Description = *input.Description
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		s.logger.Error("Failed to update category", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Category update failed")
	}
	return category, nil
}

// DeleteCategory removes a category; products and expenses keep a dangling
// reference cleared by the database's ON DELETE SET NULL.
func (s *CategoryService) DeleteCategory(ctx context.Context, rc *identityapp.ResolvedContext, id uuid.UUID) error {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityCategory, rbac.VerbDelete); err != nil {
		return err
	}
	return s.categoryRepo.Delete(ctx, id, rc.Business.ID)
}
