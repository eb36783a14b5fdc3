// Package identity holds the application services for accounts, businesses
// and teams, including the per-request business context resolver.
package identity

import (
	"context"
	"errors"

	"github.com/fakturly/backend/internal/domain/identity"
	"github.com/fakturly/backend/internal/domain/rbac"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResolvedContext is the business context of one request: which business is
// being acted on, as whom, and with what role. It is resolved once per
// request from the authenticated user and the requested business ID; tokens
// never carry it.
type ResolvedContext struct {
	Business *identity.Business
	UserID   uuid.UUID
	Role     identity.Role
	// Member is the delegation edge the access came through; nil when the
	// user owns the business.
	Member *identity.TeamMember
}

// IsTeamMember reports whether the context was resolved through a delegation edge
func (rc *ResolvedContext) IsTeamMember() bool {
	return rc.Member != nil
}

// OwnerID returns the owner of the resolved business. Plan limits are always
// evaluated against this principal.
func (rc *ResolvedContext) OwnerID() uuid.UUID {
	return rc.Business.OwnerID
}

// Visibility returns the row-level visibility of the acting principal
func (rc *ResolvedContext) Visibility() rbac.Visibility {
	return rbac.Visibility{Role: rc.Role, UserID: rc.UserID}
}

// ContextResolver resolves a (user, business) pair into a business context
type ContextResolver struct {
	businessRepo identity.BusinessRepository
	memberRepo   identity.TeamMemberRepository
	logger       *zap.Logger
}

// NewContextResolver creates a new context resolver
func NewContextResolver(
	businessRepo identity.BusinessRepository,
	memberRepo identity.TeamMemberRepository,
	logger *zap.Logger,
) *ContextResolver {
	return &ContextResolver{
		businessRepo: businessRepo,
		memberRepo:   memberRepo,
		logger:       logger,
	}
}

// Resolve determines how the user may access the business: as its owner, or
// through a delegation edge. Inactive businesses, unknown businesses and
// missing grants all return shared.ErrNotFound so a caller cannot probe
// which business IDs exist.
func (r *ContextResolver) Resolve(ctx context.Context, userID, businessID uuid.UUID) (*ResolvedContext, error) {
	if businessID == uuid.Nil {
		return nil, shared.ErrNoActiveBusiness
	}

	// Ownership short-circuit: a hit means no delegation edge needs
	// consulting.
	business, err := r.businessRepo.FindActiveByIDAndOwner(ctx, businessID, userID)
	if err == nil {
		return &ResolvedContext{
			Business: business,
			UserID:   userID,
			Role:     identity.RoleOwner,
		}, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	business, err = r.businessRepo.FindActiveByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	member, err := r.findEdge(ctx, business, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			r.logger.Debug("Business access denied",
				zap.String("user_id", userID.String()),
				zap.String("business_id", businessID.String()),
			)
		}
		return nil, err
	}

	return &ResolvedContext{
		Business: business,
		UserID:   userID,
		Role:     member.Role,
		Member:   member,
	}, nil
}

// findEdge looks up the delegation edge from the organization owning the
// business to the user. Legacy data allows a business owner to themself be a
// delegated member of a larger organization; in that case the edge hangs off
// the root owner instead, one hop up and never more.
func (r *ContextResolver) findEdge(ctx context.Context, business *identity.Business, userID uuid.UUID) (*identity.TeamMember, error) {
	member, err := r.memberRepo.FindEdge(ctx, business.OwnerID, userID, business.ID)
	if err == nil || !errors.Is(err, shared.ErrNotFound) {
		return member, err
	}

	parent, err := r.memberRepo.FindAnyByUser(ctx, business.OwnerID)
	if err != nil {
		return nil, err
	}
	if parent.CorporateOwnerID == business.OwnerID {
		return nil, shared.ErrNotFound
	}
	return r.memberRepo.FindEdge(ctx, parent.CorporateOwnerID, userID, business.ID)
}
