package identity

import (
	"time"

	"github.com/fakturly/backend/internal/domain/identity"
	"github.com/fakturly/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterInput contains registration data
type RegisterInput struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" binding:"max=100"`
}

// LoginInput contains login credentials
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordInput contains password change data
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// UpdateProfileInput contains profile fields; nil fields are left unchanged
type UpdateProfileInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Language  *string `json:"language"`
	Timezone  *string `json:"timezone"`
}

// UserInfo is the API representation of a user
type UserInfo struct {
	ID              uuid.UUID `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	FullName        string    `json:"full_name"`
	Phone           string    `json:"phone,omitempty"`
	AvatarURL       string    `json:"avatar_url,omitempty"`
	Language        string    `json:"language"`
	Timezone        string    `json:"timezone"`
	Membership      string    `json:"membership"`
	IsEmailVerified bool      `json:"is_email_verified"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewUserInfo maps a user to its API representation
func NewUserInfo(user *identity.User) UserInfo {
	return UserInfo{
		ID:              user.ID,
		Email:           user.Email,
		FirstName:       user.FirstName,
		LastName:        user.LastName,
		FullName:        user.FullName(),
		Phone:           user.Phone,
		AvatarURL:       user.AvatarURL,
		Language:        user.Language,
		Timezone:        user.Timezone,
		Membership:      string(user.Membership),
		IsEmailVerified: user.IsEmailVerified,
		CreatedAt:       user.CreatedAt,
	}
}

// AuthResult is returned by register, login and refresh
type AuthResult struct {
	Tokens *auth.TokenPair `json:"tokens"`
	User   UserInfo        `json:"user"`
}

// CreateBusinessInput contains business creation data
type CreateBusinessInput struct {
	Name     string `json:"name" binding:"required,max=255"`
	VOEN     string `json:"voen" binding:"max=20"`
	Address  string `json:"address"`
	City     string `json:"city" binding:"max=100"`
	Phone    string `json:"phone" binding:"max=20"`
	Email    string `json:"email" binding:"omitempty,email"`
	Website  string `json:"website" binding:"max=255"`
	BankName string `json:"bank_name" binding:"max=255"`
	IBAN     string `json:"iban" binding:"max=34"`
	SWIFT    string `json:"swift" binding:"max=11"`
}

// UpdateBusinessInput contains business fields; nil fields are left unchanged
type UpdateBusinessInput struct {
	Name                *string `json:"name"`
	VOEN                *string `json:"voen"`
	Address             *string `json:"address"`
	City                *string `json:"city"`
	Phone               *string `json:"phone"`
	Email               *string `json:"email"`
	Website             *string `json:"website"`
	BankName            *string `json:"bank_name"`
	IBAN                *string `json:"iban"`
	SWIFT               *string `json:"swift"`
	DefaultInvoiceTheme *string `json:"default_invoice_theme"`
}

// InviteMemberInput contains team invitation data
type InviteMemberInput struct {
	Email string        `json:"email" binding:"required,email"`
	Role  identity.Role `json:"role" binding:"required"`
}

// InviteStatus distinguishes a direct edge from a pending invitation
type InviteStatus string

const (
	// InviteStatusMemberAdded means the email already had an account and the
	// delegation edge was created immediately
	InviteStatusMemberAdded InviteStatus = "member_added"
	// InviteStatusInvitationSent means no account exists yet; the invitation
	// will be consumed when that email registers
	InviteStatusInvitationSent InviteStatus = "invitation_sent"
)

// InviteResult is the outcome of a team invitation
type InviteResult struct {
	Status     InviteStatus                   `json:"status"`
	Member     *TeamMemberView                `json:"member,omitempty"`
	Invitation *identity.TeamMemberInvitation `json:"invitation,omitempty"`
}

// TeamMemberView is a delegation edge joined with its user's identity
type TeamMemberView struct {
	ID             uuid.UUID        `json:"id"`
	UserID         uuid.UUID        `json:"user_id"`
	BusinessID     *uuid.UUID       `json:"business_id,omitempty"`
	Email          string           `json:"email"`
	FullName       string           `json:"full_name"`
	Role           identity.Role    `json:"role"`
	MonthlyTarget  *decimal.Decimal `json:"monthly_target,omitempty"`
	LastLatitude   *decimal.Decimal `json:"last_latitude,omitempty"`
	LastLongitude  *decimal.Decimal `json:"last_longitude,omitempty"`
	LastLocationAt *time.Time       `json:"last_location_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// NewTeamMemberView joins a delegation edge with its user
func NewTeamMemberView(member *identity.TeamMember, user *identity.User) TeamMemberView {
	view := TeamMemberView{
		ID:             member.ID,
		UserID:         member.UserID,
		BusinessID:     member.BusinessID,
		Role:           member.Role,
		MonthlyTarget:  member.MonthlyTarget,
		LastLatitude:   member.LastLatitude,
		LastLongitude:  member.LastLongitude,
		LastLocationAt: member.LastLocationAt,
		CreatedAt:      member.CreatedAt,
	}
	if user != nil {
		view.Email = user.Email
		view.FullName = user.FullName()
	}
	return view
}

// TeamView is the full team picture: active edges plus pending invitations
type TeamView struct {
	Members     []TeamMemberView                `json:"members"`
	Invitations []identity.TeamMemberInvitation `json:"invitations"`
}

// ChangeMemberRoleInput contains role change data
type ChangeMemberRoleInput struct {
	Role identity.Role `json:"role" binding:"required"`
}

// SetMonthlyTargetInput contains the sales target amount
type SetMonthlyTargetInput struct {
	Target decimal.Decimal `json:"target" binding:"required"`
}

// UpdateLocationInput contains member geolocation coordinates
type UpdateLocationInput struct {
	Latitude  decimal.Decimal `json:"latitude" binding:"required"`
	Longitude decimal.Decimal `json:"longitude" binding:"required"`
}
