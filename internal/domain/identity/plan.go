package identity

import (
	"context"
	"time"

	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SubscriptionPlan is the quota and feature template for an organization.
// A nil limit means unlimited.
type SubscriptionPlan struct {
	shared.BaseEntity
	Name  string `gorm:"type:varchar(50);not null;uniqueIndex"` // slug, e.g. "free"
	Label string `gorm:"type:varchar(100);not null"`            // display name

	InvoicesPerMonth *int `gorm:"column:invoices_per_month"`
	ClientsLimit     *int `gorm:"column:clients_limit"`
	ExpensesPerMonth *int `gorm:"column:expenses_per_month"`
	BusinessesLimit  *int `gorm:"column:businesses_limit"`
	ProductsLimit    *int `gorm:"column:products_limit"`
	TeamMembersLimit *int `gorm:"column:team_members_limit"`

	HasForecastAnalytics bool `gorm:"not null;default:false"`
	HasCSVExport         bool `gorm:"not null;default:false"`
	HasPremiumPDF        bool `gorm:"not null;default:false"`
	HasAPIAccess         bool `gorm:"not null;default:false"`
	HasCustomThemes      bool `gorm:"not null;default:false"`
	HasWhiteLabel        bool `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

// NewSubscriptionPlan creates a plan with the given slug and label
func NewSubscriptionPlan(name, label string) (*SubscriptionPlan, error) {
	if name == "" || len(name) > 50 {
		return nil, shared.NewDomainError("INVALID_PLAN_NAME", "Plan name must be 1-50 characters")
	}
	if label == "" || len(label) > 100 {
		return nil, shared.NewDomainError("INVALID_PLAN_LABEL", "Plan label must be 1-100 characters")
	}
	return &SubscriptionPlan{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Label:      label,
	}, nil
}

// SetLimit updates a named limit; nil means unlimited
func (p *SubscriptionPlan) SetLimit(field string, limit *int) error {
	if limit != nil && *limit < 0 {
		return shared.NewDomainError("INVALID_LIMIT", "Plan limits cannot be negative")
	}
	switch field {
	case "invoices_per_month":
		p.InvoicesPerMonth = limit
	case "clients":
		p.ClientsLimit = limit
	case "expenses_per_month":
		p.ExpensesPerMonth = limit
	case "businesses":
		p.BusinessesLimit = limit
	case "products":
		p.ProductsLimit = limit
	case "team_members":
		p.TeamMembersLimit = limit
	default:
		return shared.NewDomainError("INVALID_LIMIT", "Unknown limit field")
	}
	p.UpdatedAt = time.Now()
	return nil
}

func intPtr(v int) *int { return &v }

// DefaultPlans returns the builtin plan rows seeded at startup. They also
// serve as the fallback when a user carries only a legacy membership string.
func DefaultPlans() []SubscriptionPlan {
	now := time.Now()
	base := func(name, label string) SubscriptionPlan {
		return SubscriptionPlan{
			BaseEntity: shared.BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
			Name:       name,
			Label:      label,
		}
	}

	free := base(string(MembershipFree), "Pulsuz")
	free.InvoicesPerMonth = intPtr(5)
	free.ClientsLimit = intPtr(10)
	free.ExpensesPerMonth = intPtr(20)
	free.BusinessesLimit = intPtr(1)
	free.ProductsLimit = intPtr(50)
	free.TeamMembersLimit = intPtr(0)

	pro := base(string(MembershipPro), "Pro")
	pro.InvoicesPerMonth = intPtr(100)
	pro.BusinessesLimit = intPtr(5)
	pro.ProductsLimit = intPtr(500)
	pro.TeamMembersLimit = intPtr(0)
	pro.HasForecastAnalytics = true
	pro.HasCSVExport = true
	pro.HasPremiumPDF = true

	premium := base(string(MembershipPremium), "Premium")
	premium.HasForecastAnalytics = true
	premium.HasCSVExport = true
	premium.HasPremiumPDF = true
	premium.HasAPIAccess = true
	premium.HasCustomThemes = true
	premium.HasWhiteLabel = true

	return []SubscriptionPlan{free, pro, premium}
}

// DefaultPlanByName returns the builtin plan for a legacy membership string,
// falling back to the free plan for unknown values.
func DefaultPlanByName(name Membership) SubscriptionPlan {
	plans := DefaultPlans()
	for _, p := range plans {
		if p.Name == string(name) {
			return p
		}
	}
	return plans[0]
}

// SubscriptionPlanRepository defines the interface for plan persistence
type SubscriptionPlanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SubscriptionPlan, error)
	FindByName(ctx context.Context, name string) (*SubscriptionPlan, error)
	FindAll(ctx context.Context) ([]SubscriptionPlan, error)
	Save(ctx context.Context, plan *SubscriptionPlan) error
}
