package identity

import (
	"context"
	"strings"
	"time"

	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Membership is the legacy plan-name string kept on the user for accounts
// created before subscription plans became rows. It is only consulted when
// SubscriptionPlanID is nil.
type Membership string

const (
	MembershipFree    Membership = "free"
	MembershipPro     Membership = "pro"
	MembershipPremium Membership = "premium"
)

// User represents a principal: an account that may own businesses and/or
// hold delegated roles in other organizations.
type User struct {
	shared.BaseEntity
	Email              string `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash       string `gorm:"type:varchar(255);not null"`
	FirstName          string `gorm:"type:varchar(100)"`
	LastName           string `gorm:"type:varchar(100)"`
	Phone              string `gorm:"type:varchar(20)"`
	AvatarURL          string `gorm:"type:varchar(500)"`
	Timezone           string `gorm:"type:varchar(50);default:'UTC'"`
	Language           string `gorm:"type:varchar(10);default:'az'"`
	SubscriptionPlanID *uuid.UUID `gorm:"type:uuid;index"`
	Membership         Membership `gorm:"type:varchar(10);not null;default:'free'"`
	IsEmailVerified    bool       `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new user with a bcrypt-hashed password.
// The email is normalized to lowercase; matching is always case-insensitive.
func NewUser(email, password, firstName, lastName string) (*User, error) {
	email = NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("INVALID_EMAIL", "A valid email address is required")
	}
	if len(password) < 8 {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    firstName,
		LastName:     lastName,
		Timezone:     "UTC",
		Language:     "az",
		Membership:   MembershipFree,
	}, nil
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckPassword verifies a plaintext password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword replaces the stored password hash
func (u *User) ChangePassword(newPassword string) error {
	if len(newPassword) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()
	return nil
}

// AssignPlan attaches a subscription plan row to the user
func (u *User) AssignPlan(planID uuid.UUID) {
	u.SubscriptionPlanID = &planID
	u.UpdatedAt = time.Now()
}

// SetAvatarURL sets the avatar URL
func (u *User) SetAvatarURL(url string) error {
	if len(url) > 500 {
		return shared.NewDomainError("INVALID_URL", "Avatar URL cannot exceed 500 characters")
	}
	u.AvatarURL = url
	u.UpdatedAt = time.Now()
	return nil
}

// FullName returns the user's display name
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByEmail matches case-insensitively
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
}
