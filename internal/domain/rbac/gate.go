package rbac

import (
	"fmt"

	"github.com/fakturly/backend/internal/domain/identity"
	"github.com/fakturly/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Decision is the outcome of an authorization check: the verb was allowed
// and reads must be narrowed to the given scope.
type Decision struct {
	Role  identity.Role
	Scope Scope
}

// Visibility identifies the viewing principal for row-level narrowing.
// Repositories receive it on every read so a delegated member can never
// load rows outside their scope, even by direct ID.
type Visibility struct {
	Role   identity.Role
	UserID uuid.UUID
}

// OwnerVisibility is the unrestricted view of the business owner
func OwnerVisibility(userID uuid.UUID) Visibility {
	return Visibility{Role: identity.RoleOwner, UserID: userID}
}

// Authorize evaluates role x entity x verb against the permission table.
// Unknown roles, unknown entity types, and missing table cells all deny.
func Authorize(role identity.Role, entity EntityType, verb Verb) (Decision, error) {
	if err := ValidateEntityType(entity); err != nil {
		return Decision{}, err
	}

	// Owners and managers bypass the table entirely
	if role == identity.RoleOwner || role == identity.RoleManager {
		return Decision{Role: role, Scope: ScopeAll}, nil
	}

	perms, ok := rolePermissions[role]
	if !ok {
		return Decision{}, deny(role, entity, verb)
	}
	perm, ok := perms[entity]
	if !ok {
		return Decision{}, deny(role, entity, verb)
	}
	if !perm.Allows(verb) {
		return Decision{}, deny(role, entity, verb)
	}

	return Decision{Role: role, Scope: perm.Scope}, nil
}

// ScopeFor returns the visibility scope a role has over an entity type,
// independent of any verb. Roles with no cell see nothing.
func ScopeFor(role identity.Role, entity EntityType) Scope {
	if role == identity.RoleOwner || role == identity.RoleManager {
		return ScopeAll
	}
	perm, ok := rolePermissions[role][entity]
	if !ok {
		return ScopeNone
	}
	return perm.Scope
}

func deny(role identity.Role, entity EntityType, verb Verb) error {
	return shared.NewDomainError(
		"PERMISSION_DENIED",
		fmt.Sprintf("Role %s is not allowed to %s %s", role, verb, entity),
	)
}
