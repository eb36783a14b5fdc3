package persistence

import (
	"context"
	"errors"

	"github.com/fakturly/backend/internal/domain/identity"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/fakturly/backend/internal/infrastructure/persistence/businessscope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTeamMemberRepository implements TeamMemberRepository using GORM
type GormTeamMemberRepository struct {
	db *gorm.DB
}

// NewGormTeamMemberRepository creates a new GormTeamMemberRepository
func NewGormTeamMemberRepository(db *gorm.DB) *GormTeamMemberRepository {
	return &GormTeamMemberRepository{db: db}
}

// FindByID finds a team member edge by its ID
func (r *GormTeamMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.TeamMember, error) {
	var member identity.TeamMember
	if err := businessscope.Conn(ctx, r.db).First(&member, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

// FindEdge finds the delegation edge granting userID access to businessID
// within the organization rooted at corporateOwnerID. An edge with a NULL
// business covers every business of the organization.
func (r *GormTeamMemberRepository) FindEdge(ctx context.Context, corporateOwnerID, userID, businessID uuid.UUID) (*identity.TeamMember, error) {
	var member identity.TeamMember
	if err := businessscope.Conn(ctx, r.db).
		Where("corporate_owner_id = ? AND user_id = ?", corporateOwnerID, userID).
		Where("business_id = ? OR business_id IS NULL", businessID).
		Order("business_id NULLS LAST").
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

// FindByOwnerAndUser finds any edge between an owner and a user
func (r *GormTeamMemberRepository) FindByOwnerAndUser(ctx context.Context, corporateOwnerID, userID uuid.UUID) (*identity.TeamMember, error) {
	var member identity.TeamMember
	if err := businessscope.Conn(ctx, r.db).
		Where("corporate_owner_id = ? AND user_id = ?", corporateOwnerID, userID).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

// FindAnyByUser finds the oldest edge the user holds in any organization
func (r *GormTeamMemberRepository) FindAnyByUser(ctx context.Context, userID uuid.UUID) (*identity.TeamMember, error) {
	var member identity.TeamMember
	if err := businessscope.Conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

// FindAllByOwner finds every edge of the organization
func (r *GormTeamMemberRepository) FindAllByOwner(ctx context.Context, corporateOwnerID uuid.UUID) ([]identity.TeamMember, error) {
	var members []identity.TeamMember
	if err := businessscope.Conn(ctx, r.db).
		Where("corporate_owner_id = ?", corporateOwnerID).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// CountByOwner counts the edges of the organization
func (r *GormTeamMemberRepository) CountByOwner(ctx context.Context, corporateOwnerID uuid.UUID) (int64, error) {
	var count int64
	if err := businessscope.Conn(ctx, r.db).
		Model(&identity.TeamMember{}).
		Where("corporate_owner_id = ?", corporateOwnerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsForBusinessAndUser checks whether the user already has an edge for
// the business, counting org-wide edges as covering it
func (r *GormTeamMemberRepository) ExistsForBusinessAndUser(ctx context.Context, businessID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := businessscope.Conn(ctx, r.db).
		Model(&identity.TeamMember{}).
		Where("user_id = ?", userID).
		Where("business_id = ? OR business_id IS NULL", businessID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a team member edge
func (r *GormTeamMemberRepository) Save(ctx context.Context, member *identity.TeamMember) error {
	return businessscope.Conn(ctx, r.db).Save(member).Error
}

// Delete deletes a team member edge
func (r *GormTeamMemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := businessscope.Conn(ctx, r.db).Delete(&identity.TeamMember{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormTeamMemberRepository implements TeamMemberRepository
var _ identity.TeamMemberRepository = (*GormTeamMemberRepository)(nil)
