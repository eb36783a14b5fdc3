package rbac

import "github.com/fakturly/backend/internal/domain/identity"

// Scope describes which rows of an entity type a role may see.
type Scope string

const (
	// ScopeAll grants visibility over every row in the business
	ScopeAll Scope = "all"
	// ScopeAssignedOnly restricts to rows assigned to the member
	ScopeAssignedOnly Scope = "assigned_only"
	// ScopeOwnOrAssigned restricts to rows the member created or rows
	// belonging to clients assigned to the member
	ScopeOwnOrAssigned Scope = "own_or_assigned"
	// ScopeNone yields the empty set
	ScopeNone Scope = "none"
)

// Permission is one cell of the role permission table
type Permission struct {
	Verbs map[Verb]bool
	Scope Scope
}

// Allows reports whether the permission covers the verb
func (p Permission) Allows(v Verb) bool {
	return p.Verbs[v]
}

func verbs(vs ...Verb) map[Verb]bool {
	m := make(map[Verb]bool, len(vs))
	for _, v := range vs {
		m[v] = true
	}
	return m
}

func fullAccess() Permission {
	return Permission{Verbs: verbs(VerbRead, VerbCreate, VerbUpdate, VerbDelete), Scope: ScopeAll}
}

func readOnly() Permission {
	return Permission{Verbs: verbs(VerbRead), Scope: ScopeAll}
}

// rolePermissions is the whole authorization policy for delegated roles.
// OWNER and MANAGER are not listed: both have unrestricted access and are
// short-circuited in the gate.
var rolePermissions = map[identity.Role]map[EntityType]Permission{
	identity.RoleAccountant: {
		EntityInvoice: fullAccess(),
		EntityExpense: fullAccess(),
		EntityPayment: fullAccess(),
		EntityClient:  readOnly(),
		EntityProduct: readOnly(),
	},
	identity.RoleInventoryManager: {
		EntityProduct:              fullAccess(),
		EntityInventoryTransaction: fullAccess(),
		EntityCategory:             fullAccess(),
	},
	identity.RoleSalesRep: {
		EntityClient: {
			Verbs: verbs(VerbRead, VerbCreate, VerbUpdate),
			Scope: ScopeAssignedOnly,
		},
		EntityInvoice: {
			Verbs: verbs(VerbRead, VerbCreate, VerbUpdate),
			Scope: ScopeOwnOrAssigned,
		},
		EntityProduct: readOnly(),
	},
}
