package identity

import (
	"context"
	"fmt"

	"github.com/fakturly/backend/internal/application/billing"
	"github.com/fakturly/backend/internal/domain/identity"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/fakturly/backend/internal/infrastructure/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxLogoSizeBytes = 2 << 20

var logoExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// BusinessService manages the businesses of an organization
type BusinessService struct {
	businessRepo identity.BusinessRepository
	planLimits   *billing.PlanLimitService
	objects      storage.ObjectStorage
	tx           shared.Transactor
	logger       *zap.Logger
}

// NewBusinessService creates a new business service
func NewBusinessService(
	businessRepo identity.BusinessRepository,
	planLimits *billing.PlanLimitService,
	objects storage.ObjectStorage,
	tx shared.Transactor,
	logger *zap.Logger,
) *BusinessService {
	return &BusinessService{
		businessRepo: businessRepo,
		planLimits:   planLimits,
		objects:      objects,
		tx:           tx,
		logger:       logger,
	}
}

// ListBusinesses returns every business the user owns
func (s *BusinessService) ListBusinesses(ctx context.Context, ownerID uuid.UUID) ([]identity.Business, error) {
	return s.businessRepo.FindAllByOwner(ctx, ownerID)
}

// CreateBusiness creates a business for the owner, subject to the plan's
// business limit. The limit check and the insert run in one transaction so
// the count cannot go stale between them.
func (s *BusinessService) CreateBusiness(ctx context.Context, ownerID uuid.UUID, input CreateBusinessInput) (*identity.Business, error) {
	business, err := identity.NewBusiness(ownerID, input.Name)
	if err != nil {
		return nil, err
	}
	business.VOEN = input.VOEN
	business.Address = input.Address
	business.City = input.City
	business.Phone = input.Phone
	business.Email = input.Email
	business.Website = input.Website
	business.BankName = input.BankName
	business.IBAN = input.IBAN
	business.SWIFT = input.SWIFT

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.planLimits.EnforceLimit(ctx, ownerID, billing.ResourceBusinesses); err != nil {
			return err
		}
		if err := s.businessRepo.Save(ctx, business); err != nil {
			s.logger.Error("Failed to create business", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Business creation failed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Business created",
		zap.String("business_id", business.ID.String()),
		zap.String("owner_id", ownerID.String()),
	)
	return business, nil
}

// GetBusiness returns the resolved business
func (s *BusinessService) GetBusiness(_ context.Context, rc *ResolvedContext) (*identity.Business, error) {
	return rc.Business, nil
}

// UpdateBusiness applies the non-nil fields of the input. Only the owner may
// change business details.
func (s *BusinessService) UpdateBusiness(ctx context.Context, rc *ResolvedContext, input UpdateBusinessInput) (*identity.Business, error) {
	if rc.Role != identity.RoleOwner {
		return nil, shared.ErrForbidden
	}

	business := rc.Business
	if input.Name != nil {
		if err := business.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.VOEN != nil {
		business.VOEN = *input.VOEN
	}
	if input.Address != nil {
		business.Address = *input.Address
	}
	if input.City != nil {
		business.City = *input.City
	}
	if input.Phone != nil {
		business.Phone = *input.Phone
	}
	if input.Email != nil {
		business.Email = *input.Email
	}
	if input.Website != nil {
		business.Website = *input.Website
	}
	if input.BankName != nil {
		business.BankName = *input.BankName
	}
	if input.IBAN != nil {
		business.IBAN = *input.IBAN
	}
	if input.SWIFT != nil {
		business.SWIFT = *input.SWIFT
	}
	if input.DefaultInvoiceTheme != nil {
		if err := business.SetTheme(*input.DefaultInvoiceTheme); err != nil {
			return nil, err
		}
	}

	if err := s.businessRepo.Save(ctx, business); err != nil {
		s.logger.Error("Failed to update business", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Business update failed")
	}
	return business, nil
}

// DeactivateBusiness soft-disables the business. Only the owner may do this;
// the business stops resolving as a context immediately.
func (s *BusinessService) DeactivateBusiness(ctx context.Context, rc *ResolvedContext) error {
	if rc.Role != identity.RoleOwner {
		return shared.ErrForbidden
	}

	rc.Business.Deactivate()
	if err := s.businessRepo.Save(ctx, rc.Business); err != nil {
		s.logger.Error("Failed to deactivate business", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Business deactivation failed")
	}

	s.logger.Info("Business deactivated", zap.String("business_id", rc.Business.ID.String()))
	return nil
}

// UploadLogo stores the logo in object storage and records its public URL.
// Only the owner may change the logo.
func (s *BusinessService) UploadLogo(ctx context.Context, rc *ResolvedContext, data []byte, contentType string) (*identity.Business, error) {
	if rc.Role != identity.RoleOwner {
		return nil, shared.ErrForbidden
	}

	ext, ok := logoExtensions[contentType]
	if !ok {
		return nil, shared.NewDomainError("INVALID_FILE_TYPE", "Logo must be a PNG, JPEG or WebP image")
	}
	if len(data) == 0 || len(data) > maxLogoSizeBytes {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "Logo must be between 1 byte and 2 MB")
	}

	key := fmt.Sprintf("businesses/%s/logo%s", rc.Business.ID, ext)
	if err := s.objects.Upload(ctx, key, data, contentType); err != nil {
		s.logger.Error("Failed to upload logo", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Logo upload failed")
	}

	if err := rc.Business.SetLogoURL(s.objects.PublicURL(key)); err != nil {
		return nil, err
	}
	if err := s.businessRepo.Save(ctx, rc.Business); err != nil {
		s.logger.Error("Failed to save logo URL", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Logo upload failed")
	}
	return rc.Business, nil
}
