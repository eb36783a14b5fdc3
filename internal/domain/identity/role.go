package identity

import "github.com/fakturly/backend/internal/domain/shared"

// Role is the position a principal holds within a business.
// The wire values are stable: they are persisted and returned by the API.
type Role string

const (
	// RoleOwner is not stored on TeamMember rows; it is the synthesized
	// role of the principal who owns the resolved business.
	RoleOwner            Role = "OWNER"
	RoleManager          Role = "MANAGER"
	RoleAccountant       Role = "ACCOUNTANT"
	RoleInventoryManager Role = "INVENTORY_MANAGER"
	RoleSalesRep         Role = "SALES_REP"
)

// DelegatedRoles lists the roles assignable to team members.
// OWNER is excluded: ownership is a fact of the Business row, never a grant.
func DelegatedRoles() []Role {
	return []Role{RoleManager, RoleAccountant, RoleInventoryManager, RoleSalesRep}
}

// IsDelegated returns true if the role can be held by a team member
func (r Role) IsDelegated() bool {
	switch r {
	case RoleManager, RoleAccountant, RoleInventoryManager, RoleSalesRep:
		return true
	}
	return false
}

// CanManageTeam returns true if the role may invite or remove team members
func (r Role) CanManageTeam() bool {
	return r == RoleOwner || r == RoleManager
}

// ValidateRole checks that a role string is an assignable team role
func ValidateRole(r Role) error {
	if !r.IsDelegated() {
		return shared.NewDomainError("INVALID_ROLE", "Invalid team member role")
	}
	return nil
}
