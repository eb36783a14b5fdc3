// Package billing evaluates subscription plan limits. Every quota check runs
// against the plan of the organization owner, never the acting user: a team
// member creating an invoice consumes the owner's allowance.
package billing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/fakturly/backend/internal/domain/identity"
	"github.com/fakturly/backend/internal/domain/invoicing"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Resource names a quota-limited resource kind
type Resource string

const (
	ResourceInvoices    Resource = "invoices"
	ResourceClients     Resource = "clients"
	ResourceExpenses    Resource = "expenses"
	ResourceBusinesses  Resource = "businesses"
	ResourceProducts    Resource = "products"
	ResourceTeamMembers Resource = "team_members"
)

// AllResources lists every quota-limited resource kind
func AllResources() []Resource {
	return []Resource{
		ResourceInvoices,
		ResourceClients,
		ResourceExpenses,
		ResourceBusinesses,
		ResourceProducts,
		ResourceTeamMembers,
	}
}

// PlanLimitError is returned when a create would exceed the plan limit
type PlanLimitError struct {
	Resource Resource
	Limit    int
	Current  int64
}

// Error implements the error interface
func (e *PlanLimitError) Error() string {
	return fmt.Sprintf("plan limit reached for %s: %d of %d used", e.Resource, e.Current, e.Limit)
}

// HTTPStatusCode returns the HTTP status code for this error (403 Forbidden)
func (e *PlanLimitError) HTTPStatusCode() int {
	return http.StatusForbidden
}

// LimitResult is the outcome of a single quota evaluation.
// A nil Limit means the plan places no cap on the resource.
type LimitResult struct {
	Resource Resource
	Allowed  bool
	Limit    *int
	Current  int64
}

// ResourceUsage pairs a plan limit with current consumption
type ResourceUsage struct {
	Limit   *int  `json:"limit"`
	Current int64 `json:"current"`
}

// PlanStatus is the full quota and feature picture of an organization
type PlanStatus struct {
	PlanName  string                     `json:"plan_name"`
	PlanLabel string                     `json:"plan_label"`
	Features  PlanFeatures               `json:"features"`
	Usage     map[Resource]ResourceUsage `json:"usage"`
}

// PlanFeatures is the feature flag set of the effective plan
type PlanFeatures struct {
	ForecastAnalytics bool `json:"forecast_analytics"`
	CSVExport         bool `json:"csv_export"`
	PremiumPDF        bool `json:"premium_pdf"`
	APIAccess         bool `json:"api_access"`
	CustomThemes      bool `json:"custom_themes"`
	WhiteLabel        bool `json:"white_label"`
}

// PlanLimitRepositories groups the persistence dependencies of the limit service
type PlanLimitRepositories struct {
	Users       identity.UserRepository
	Plans       identity.SubscriptionPlanRepository
	Businesses  identity.BusinessRepository
	Members     identity.TeamMemberRepository
	Invitations identity.TeamMemberInvitationRepository
	Clients     invoicing.ClientRepository
	Invoices    invoicing.InvoiceRepository
	Expenses    invoicing.ExpenseRepository
	Products    invoicing.ProductRepository
}

// PlanLimitService evaluates plan quotas for organization owners
type PlanLimitService struct {
	repos            PlanLimitRepositories
	demoAccountEmail string
	logger           *zap.Logger
	now              func() time.Time
}

// NewPlanLimitService creates a new plan limit service.
// demoAccountEmail, when non-empty, marks one account that bypasses every
// quota check (used for live product demos).
func NewPlanLimitService(repos PlanLimitRepositories, demoAccountEmail string, logger *zap.Logger) *PlanLimitService {
	return &PlanLimitService{
		repos:            repos,
		demoAccountEmail: identity.NormalizeEmail(demoAccountEmail),
		logger:           logger,
		now:              time.Now,
	}
}

// CheckLimit evaluates whether the organization owner may create one more
// instance of the resource under their effective plan.
func (s *PlanLimitService) CheckLimit(ctx context.Context, ownerID uuid.UUID, resource Resource) (*LimitResult, error) {
	owner, err := s.repos.Users.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if s.demoAccountEmail != "" && owner.Email == s.demoAccountEmail {
		return &LimitResult{Resource: resource, Allowed: true}, nil
	}

	plan, err := s.effectivePlan(ctx, owner)
	if err != nil {
		return nil, err
	}

	limit := limitFor(plan, resource)
	if limit == nil {
		return &LimitResult{Resource: resource, Allowed: true}, nil
	}

	current, err := s.currentUsage(ctx, ownerID, resource)
	if err != nil {
		return nil, err
	}

	allowed := current < int64(*limit)
	if !allowed {
		s.logger.Info("Plan limit reached",
			zap.String("owner_id", ownerID.String()),
			zap.String("resource", string(resource)),
			zap.String("plan", plan.Name),
			zap.Int("limit", *limit),
			zap.Int64("current", current),
		)
	}

	return &LimitResult{Resource: resource, Allowed: allowed, Limit: limit, Current: current}, nil
}

// EnforceLimit checks the quota and converts a denial into a PlanLimitError
func (s *PlanLimitService) EnforceLimit(ctx context.Context, ownerID uuid.UUID, resource Resource) error {
	result, err := s.CheckLimit(ctx, ownerID, resource)
	if err != nil {
		return err
	}
	if !result.Allowed {
		return &PlanLimitError{Resource: resource, Limit: *result.Limit, Current: result.Current}
	}
	return nil
}

// Status reports the owner's effective plan, its feature flags, and current
// usage against every limit.
func (s *PlanLimitService) Status(ctx context.Context, ownerID uuid.UUID) (*PlanStatus, error) {
	owner, err := s.repos.Users.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	plan, err := s.effectivePlan(ctx, owner)
	if err != nil {
		return nil, err
	}

	usage := make(map[Resource]ResourceUsage, len(AllResources()))
	for _, resource := range AllResources() {
		current, err := s.currentUsage(ctx, ownerID, resource)
		if err != nil {
			return nil, err
		}
		usage[resource] = ResourceUsage{Limit: limitFor(plan, resource), Current: current}
	}

	return &PlanStatus{
		PlanName:  plan.Name,
		PlanLabel: plan.Label,
		Features: PlanFeatures{
			ForecastAnalytics: plan.HasForecastAnalytics,
			CSVExport:         plan.HasCSVExport,
			PremiumPDF:        plan.HasPremiumPDF,
			APIAccess:         plan.HasAPIAccess,
			CustomThemes:      plan.HasCustomThemes,
			WhiteLabel:        plan.HasWhiteLabel,
		},
		Usage: usage,
	}, nil
}

// HasFeature reports whether the owner's effective plan includes a feature flag
func (s *PlanLimitService) HasFeature(ctx context.Context, ownerID uuid.UUID, pick func(PlanFeatures) bool) (bool, error) {
	status, err := s.Status(ctx, ownerID)
	if err != nil {
		return false, err
	}
	return pick(status.Features), nil
}

// effectivePlan resolves the plan row attached to the user, falling back to
// the builtin plan matching the legacy membership string.
func (s *PlanLimitService) effectivePlan(ctx context.Context, owner *identity.User) (*identity.SubscriptionPlan, error) {
	if owner.SubscriptionPlanID != nil {
		plan, err := s.repos.Plans.FindByID(ctx, *owner.SubscriptionPlanID)
		if err == nil {
			return plan, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		s.logger.Warn("User references a missing subscription plan, falling back to membership",
			zap.String("user_id", owner.ID.String()),
			zap.String("plan_id", owner.SubscriptionPlanID.String()),
		)
	}

	fallback := identity.DefaultPlanByName(owner.Membership)
	return &fallback, nil
}

func limitFor(plan *identity.SubscriptionPlan, resource Resource) *int {
	switch resource {
	case ResourceInvoices:
		return plan.InvoicesPerMonth
	case ResourceClients:
		return plan.ClientsLimit
	case ResourceExpenses:
		return plan.ExpensesPerMonth
	case ResourceBusinesses:
		return plan.BusinessesLimit
	case ResourceProducts:
		return plan.ProductsLimit
	case ResourceTeamMembers:
		return plan.TeamMembersLimit
	}
	return nil
}

// currentUsage counts consumption organization-wide. Invoices and expenses
// are month-boxed; pending invitations occupy team-member quota.
func (s *PlanLimitService) currentUsage(ctx context.Context, ownerID uuid.UUID, resource Resource) (int64, error) {
	switch resource {
	case ResourceInvoices:
		return s.repos.Invoices.CountForOwnerInMonth(ctx, ownerID, s.now())
	case ResourceClients:
		return s.repos.Clients.CountForOwner(ctx, ownerID)
	case ResourceExpenses:
		return s.repos.Expenses.CountForOwnerInMonth(ctx, ownerID, s.now())
	case ResourceBusinesses:
		return s.repos.Businesses.CountByOwner(ctx, ownerID)
	case ResourceProducts:
		return s.repos.Products.CountForOwner(ctx, ownerID)
	case ResourceTeamMembers:
		members, err := s.repos.Members.CountByOwner(ctx, ownerID)
		if err != nil {
			return 0, err
		}
		pending, err := s.repos.Invitations.CountPendingByInviter(ctx, ownerID)
		if err != nil {
			return 0, err
		}
		return members + pending, nil
	}
	return 0, shared.NewDomainError("UNKNOWN_RESOURCE", "Unknown quota resource")
}
