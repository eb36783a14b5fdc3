// Package rbac holds the static role permission table and the authorization
// gate evaluated on every business-scoped request. The table is data, not
// code: adding a role or entity type means adding rows, never new branches.
package rbac

import "github.com/fakturly/backend/internal/domain/shared"

// EntityType names a permissioned resource kind. The set is closed: requests
// for types outside it are rejected before the table is consulted.
type EntityType string

const (
	EntityClient               EntityType = "client"
	EntityInvoice              EntityType = "invoice"
	EntityProduct              EntityType = "product"
	EntityExpense              EntityType = "expense"
	EntityPayment              EntityType = "payment"
	EntityCategory             EntityType = "category"
	EntityInventoryTransaction EntityType = "inventory_transaction"
)

var knownEntities = map[EntityType]struct{}{
	EntityClient:               {},
	EntityInvoice:              {},
	EntityProduct:              {},
	EntityExpense:              {},
	EntityPayment:              {},
	EntityCategory:             {},
	EntityInventoryTransaction: {},
}

// ValidateEntityType rejects entity types outside the closed set
func ValidateEntityType(e EntityType) error {
	if _, ok := knownEntities[e]; !ok {
		return shared.NewDomainError("UNKNOWN_ENTITY_TYPE", "Unknown entity type")
	}
	return nil
}

// Verb is the abstract action performed on an entity
type Verb string

const (
	VerbRead   Verb = "read"
	VerbCreate Verb = "create"
	VerbUpdate Verb = "update"
	VerbDelete Verb = "delete"
)
