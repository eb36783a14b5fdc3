package identity

import (
	"context"
	"errors"

	"github.com/fakturly/backend/internal/domain/identity"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/fakturly/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthService handles registration, login and token lifecycle
type AuthService struct {
	userRepo       identity.UserRepository
	memberRepo     identity.TeamMemberRepository
	invitationRepo identity.TeamMemberInvitationRepository
	jwtService     *auth.JWTService
	blacklist      auth.TokenBlacklist
	logger         *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	memberRepo identity.TeamMemberRepository,
	invitationRepo identity.TeamMemberInvitationRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		memberRepo:     memberRepo,
		invitationRepo: invitationRepo,
		jwtService:     jwtService,
		blacklist:      blacklist,
		logger:         logger,
	}
}

// Register creates a new account and consumes any invitations pending for
// the email, turning each into a delegation edge.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := identity.NormalizeEmail(input.Email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Failed to check email existence", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Registration failed")
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
	}

	user, err := identity.NewUser(email, input.Password, input.FirstName, input.LastName)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Registration failed")
	}

	s.consumeInvitations(ctx, user)

	tokens, err := s.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		s.logger.Error("Failed to generate tokens", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Registration failed")
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
	)

	return &AuthResult{Tokens: tokens, User: NewUserInfo(user)}, nil
}

// consumeInvitations turns pending invitations for the email into delegation
// edges. Consumption is idempotent: an edge that already exists still marks
// the invitation used, and a failure on one invitation never blocks the
// registration that triggered it.
func (s *AuthService) consumeInvitations(ctx context.Context, user *identity.User) {
	invitations, err := s.invitationRepo.FindPendingByEmail(ctx, user.Email)
	if err != nil {
		s.logger.Error("Failed to load pending invitations",
			zap.String("email", user.Email), zap.Error(err))
		return
	}

	for i := range invitations {
		invitation := &invitations[i]

		_, err := s.memberRepo.FindByOwnerAndUser(ctx, invitation.InviterID, user.ID)
		switch {
		case err == nil:
			// Edge already exists, just retire the invitation
		case errors.Is(err, shared.ErrNotFound):
			member, err := identity.NewTeamMember(invitation.InviterID, user.ID, invitation.BusinessID, invitation.Role)
			if err != nil {
				s.logger.Warn("Skipping invalid invitation",
					zap.String("invitation_id", invitation.ID.String()), zap.Error(err))
				continue
			}
			if err := s.memberRepo.Save(ctx, member); err != nil {
				s.logger.Error("Failed to create team member from invitation",
					zap.String("invitation_id", invitation.ID.String()), zap.Error(err))
				continue
			}
		default:
			s.logger.Error("Failed to check existing membership",
				zap.String("invitation_id", invitation.ID.String()), zap.Error(err))
			continue
		}

		if err := invitation.Consume(); err != nil {
			continue
		}
		if err := s.invitationRepo.Save(ctx, invitation); err != nil {
			s.logger.Error("Failed to mark invitation used",
				zap.String("invitation_id", invitation.ID.String()), zap.Error(err))
		}
	}
}

// Login authenticates a user by email and password
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
		}
		s.logger.Error("Failed to find user by email", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Login failed")
	}

	if !user.CheckPassword(input.Password) {
		s.logger.Info("Failed login attempt", zap.String("email", user.Email))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	tokens, err := s.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		s.logger.Error("Failed to generate tokens", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Login failed")
	}

	return &AuthResult{Tokens: tokens, User: NewUserInfo(user)}, nil
}

// RefreshToken exchanges a valid refresh token for a new token pair.
// The old refresh token is blacklisted so each one is single-use.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}

	blacklisted, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("Failed to check token blacklist", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Token refresh failed")
	}
	if blacklisted {
		return nil, shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	}

	invalidated, err := s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
	if err != nil {
		s.logger.Error("Failed to check token invalidation", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Token refresh failed")
	}
	if invalidated {
		return nil, shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Invalid token")
	}

	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("Failed to blacklist consumed refresh token", zap.Error(err))
	}

	return s.jwtService.GenerateTokenPair(userID, claims.Email)
}

// Logout revokes the presented tokens. Invalid tokens are ignored: logging
// out with an expired token still succeeds.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if claims, err := s.jwtService.ValidateAccessToken(accessToken); err == nil {
		if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
			s.logger.Error("Failed to blacklist access token", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Logout failed")
		}
	}
	if refreshToken != "" {
		if claims, err := s.jwtService.ValidateRefreshToken(refreshToken); err == nil {
			if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
				s.logger.Error("Failed to blacklist refresh token", zap.Error(err))
				return shared.NewDomainError("INTERNAL_ERROR", "Logout failed")
			}
		}
	}
	return nil
}

// GetCurrentUser returns the authenticated user's profile
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := NewUserInfo(user)
	return &info, nil
}

// UpdateProfile applies the non-nil fields of the input to the user
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Language != nil {
		user.Language = *input.Language
	}
	if input.Timezone != nil {
		user.Timezone = *input.Timezone
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to update profile", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Profile update failed")
	}

	info := NewUserInfo(user)
	return &info, nil
}

// ChangePassword verifies the current password, sets the new one and revokes
// every outstanding token of the user.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.CheckPassword(input.CurrentPassword) {
		return shared.NewDomainError("INVALID_CREDENTIALS", "Current password is incorrect")
	}

	if err := user.ChangePassword(input.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save password change", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Password change failed")
	}

	ttl := s.jwtService.GetRefreshTokenExpiration()
	if err := s.blacklist.InvalidateUserTokens(ctx, userID.String(), ttl); err != nil {
		s.logger.Error("Failed to invalidate user tokens after password change", zap.Error(err))
	}

	s.logger.Info("Password changed", zap.String("user_id", userID.String()))
	return nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Token has expired")
	default:
		return shared.NewDomainError("INVALID_TOKEN", "Invalid token")
	}
}
