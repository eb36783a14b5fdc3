package persistence

import (
	"context"
	"errors"

	"github.com/fakturly/backend/internal/domain/invoicing"
	"github.com/fakturly/backend/internal/domain/rbac"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/fakturly/backend/internal/infrastructure/persistence/businessscope"
	"github.com/fakturly/backend/internal/infrastructure/persistence/rolescope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClientRepository implements ClientRepository using GORM.
// Reads are narrowed twice: to the business and to the viewer's role scope.
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByIDForBusiness finds a client by ID within a business. A client
// outside the viewer's visibility comes back as not found, not forbidden.
func (r *GormClientRepository) FindByIDForBusiness(ctx context.Context, id, businessID uuid.UUID, vis rbac.Visibility) (*invoicing.Client, error) {
	var client invoicing.Client
	query := businessscope.Conn(ctx, r.db).
		Scopes(businessscope.Scope(businessID)).
		Where("id = ?", id)
	query = rolescope.NewFilter(vis.Role, vis.UserID).Apply(query, rbac.EntityClient)

	if err := query.First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &client, nil
}

// FindAllForBusiness finds the clients of a business visible to the viewer,
// returning the page and the total matching count
func (r *GormClientRepository) FindAllForBusiness(ctx context.Context, businessID uuid.UUID, vis rbac.Visibility, filter shared.Filter) ([]invoicing.Client, int64, error) {
	base := businessscope.Conn(ctx, r.db).
		Model(&invoicing.Client{}).
		Scopes(businessscope.Scope(businessID))
	base = rolescope.NewFilter(vis.Role, vis.UserID).Apply(base, rbac.EntityClient)
	base = r.applyFilterWithoutPagination(base, filter)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []invoicing.Client
	if err := applyPagination(base, filter, ClientSortFields, "name ASC").Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

// CountForOwner counts clients across every business of the organization
// owner. Plan limits are organization-wide, not per business.
func (r *GormClientRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	if err := businessscope.Conn(ctx, r.db).
		Model(&invoicing.Client{}).
		Joins("JOIN businesses ON businesses.id = clients.business_id").
		Where("businesses.owner_id = ?", ownerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *invoicing.Client) error {
	return businessscope.Conn(ctx, r.db).Save(client).Error
}

// Delete deletes a client within a business
func (r *GormClientRepository) Delete(ctx context.Context, id, businessID uuid.UUID) error {
	result := businessscope.Conn(ctx, r.db).
		Scopes(businessscope.Scope(businessID)).
		Delete(&invoicing.Client{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilterWithoutPagination applies search and field filters to the query
func (r *GormClientRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ? OR phone ILIKE ? OR voen ILIKE ?",
			pattern, pattern, pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "assigned_to":
			query = query.Where("assigned_to_id = ?", value)
		case "unassigned":
			if value == true {
				query = query.Where("assigned_to_id IS NULL")
			}
		}
	}

	return query
}

// applyPagination applies ordering and pagination shared by the invoicing
// repositories. The order column is validated against the entity's
// whitelist; anything else falls back to created_at.
func applyPagination(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultOrder string) *gorm.DB {
	if filter.OrderBy != "" {
		field := ValidateSortField(filter.OrderBy, allowed, "created_at")
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order(defaultOrder)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	return query
}

// Ensure GormClientRepository implements ClientRepository
var _ invoicing.ClientRepository = (*GormClientRepository)(nil)
