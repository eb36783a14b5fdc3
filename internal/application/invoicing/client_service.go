// Package invoicing holds the application services for tenant-scoped
// entities. Every operation takes a resolved business context, passes the
// role gate, and threads the caller's visibility into repository reads.
package invoicing

import (
	"context"

	"github.com/fakturly/backend/internal/application/billing"
	identityapp "github.com/fakturly/backend/internal/application/identity"
	"github.com/fakturly/backend/internal/domain/invoicing"
	"github.com/fakturly/backend/internal/domain/rbac"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateClientInput contains client creation data
type CreateClientInput struct {
	Name         string     `json:"name" binding:"required,max=255"`
	Email        string     `json:"email" binding:"omitempty,email"`
	Phone        string     `json:"phone" binding:"max=20"`
	Address      string     `json:"address"`
	VOEN         string     `json:"voen" binding:"max=20"`
	Notes        string     `json:"notes"`
	AssignedToID *uuid.UUID `json:"assigned_to_id"`
}

// UpdateClientInput contains client fields; nil fields are left unchanged.
// Setting AssignedToID to the nil UUID clears the assignment.
type UpdateClientInput struct {
	Name         *string    `json:"name"`
	Email        *string    `json:"email"`
	Phone        *string    `json:"phone"`
	Address      *string    `json:"address"`
	VOEN         *string    `json:"voen"`
	Notes        *string    `json:"notes"`
	AssignedToID *uuid.UUID `json:"assigned_to_id"`
}

// ClientService manages the clients of a business
type ClientService struct {
	clientRepo invoicing.ClientRepository
	planLimits *billing.PlanLimitService
	tx         shared.Transactor
	logger     *zap.Logger
}

// NewClientService creates a new client service
func NewClientService(clientRepo invoicing.ClientRepository, planLimits *billing.PlanLimitService, tx shared.Transactor, logger *zap.Logger) *ClientService {
	return &ClientService{clientRepo: clientRepo, planLimits: planLimits, tx: tx, logger: logger}
}

// ListClients returns the clients visible to the caller
func (s *ClientService) ListClients(ctx context.Context, rc *identityapp.ResolvedContext, filter shared.Filter) (*shared.Paginated[invoicing.Client], error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityClient, rbac.VerbRead); err != nil {
		return nil, err
	}

	clients, total, err := s.clientRepo.FindAllForBusiness(ctx, rc.Business.ID, rc.Visibility(), filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(clients, total, filter.Page, filter.PageSize)
	return &result, nil
}

// GetClient returns one client if it falls within the caller's visibility
func (s *ClientService) GetClient(ctx context.Context, rc *identityapp.ResolvedContext, id uuid.UUID) (*invoicing.Client, error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityClient, rbac.VerbRead); err != nil {
		return nil, err
	}
	return s.clientRepo.FindByIDForBusiness(ctx, id, rc.Business.ID, rc.Visibility())
}

// CreateClient creates a client, subject to the organization's client limit.
// The limit check and the insert run in one transaction so the count cannot
// go stale between them.
func (s *ClientService) CreateClient(ctx context.Context, rc *identityapp.ResolvedContext, input CreateClientInput) (*invoicing.Client, error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityClient, rbac.VerbCreate); err != nil {
		return nil, err
	}

	client, err := invoicing.NewClient(rc.Business.ID, input.Name, rc.UserID)
	if err != nil {
		return nil, err
	}
	client.Email = input.Email
	client.Phone = input.Phone
	client.Address = input.Address
	client.VOEN = input.VOEN
	client.Notes = input.Notes
	if input.AssignedToID != nil {
		client.AssignTo(*input.AssignedToID)
	}

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.planLimits.EnforceLimit(ctx, rc.OwnerID(), billing.ResourceClients); err != nil {
			return err
		}
		if err := s.clientRepo.Save(ctx, client); err != nil {
			s.logger.Error("Failed to create client", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Client creation failed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// UpdateClient applies the non-nil fields of the input to a visible client
func (s *ClientService) UpdateClient(ctx context.Context, rc *identityapp.ResolvedContext, id uuid.UUID, input UpdateClientInput) (*invoicing.Client, error) {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityClient, rbac.VerbUpdate); err != nil {
		return nil, err
	}

	client, err := s.clientRepo.FindByIDForBusiness(ctx, id, rc.Business.ID, rc.Visibility())
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := client.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Email != nil {
		client.Email = *input.Email
	}
	if input.Phone != nil {
		client.Phone = *input.Phone
	}
	if input.Address != nil {
		client.Address = *input.Address
	}
	if input.VOEN != nil {
		client.VOEN = *input.VOEN
	}
	if input.Notes != nil {
		client.Notes = *input.Notes
	}
	if input.AssignedToID != nil {
		client.AssignTo(*input.AssignedToID)
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		s.logger.Error("Failed to update client", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Client update failed")
	}
	return client, nil
}

// DeleteClient removes a client. The role gate denies this verb to sales
// reps even for their assigned clients.
func (s *ClientService) DeleteClient(ctx context.Context, rc *identityapp.ResolvedContext, id uuid.UUID) error {
	if _, err := rbac.Authorize(rc.Role, rbac.EntityClient, rbac.VerbDelete); err != nil {
		return err
	}

	if _, err := s.clientRepo.FindByIDForBusiness(ctx, id, rc.Business.ID, rc.Visibility()); err != nil {
		return err
	}
	return s.clientRepo.Delete(ctx, id, rc.Business.ID)
}
