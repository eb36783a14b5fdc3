// Package rolescope narrows GORM queries to the rows a delegated role may
// see. It translates the visibility scope decided by the rbac gate into SQL:
//
//	all             no extra predicate
//	assigned_only   assigned_to_id = member
//	own_or_assigned created_by = member OR client assigned to member
//	none            1 = 0 (empty set, never an error)
//
// Business scoping is applied separately by businessscope; the two compose.
package rolescope

import (
	"github.com/fakturly/backend/internal/domain/identity"
	"github.com/fakturly/backend/internal/domain/rbac"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Filter narrows queries for one principal acting under one role
type Filter struct {
	role   identity.Role
	userID uuid.UUID
}

// NewFilter creates a visibility filter for a principal acting under a role
func NewFilter(role identity.Role, userID uuid.UUID) *Filter {
	return &Filter{role: role, userID: userID}
}

// Apply narrows db to the rows of entity the principal may see
func (f *Filter) Apply(db *gorm.DB, entity rbac.EntityType) *gorm.DB {
	scope := rbac.ScopeFor(f.role, entity)

	switch scope {
	case rbac.ScopeAll:
		return db

	case rbac.ScopeAssignedOnly:
		if f.userID == uuid.Nil {
			return db.Where("1 = 0")
		}
		return db.Where("assigned_to_id = ?", f.userID)

	case rbac.ScopeOwnOrAssigned:
		if f.userID == uuid.Nil {
			return db.Where("1 = 0")
		}
		return db.Where(
			"created_by = ? OR client_id IN (?)",
			f.userID,
			db.Session(&gorm.Session{NewDB: true}).
				Table("clients").
				Select("id").
				Where("assigned_to_id = ?", f.userID),
		)

	default:
		// ScopeNone and anything unknown yield the empty set
		return db.Where("1 = 0")
	}
}

// ScopeFor returns a GORM scope function for the entity type
func (f *Filter) ScopeFor(entity rbac.EntityType) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return f.Apply(db, entity)
	}
}

// CanSeeAll reports whether the role has unrestricted visibility over the
// entity type, letting repositories skip row-level checks
func (f *Filter) CanSeeAll(entity rbac.EntityType) bool {
	return rbac.ScopeFor(f.role, entity) == rbac.ScopeAll
}

// UserID returns the principal the filter narrows to
func (f *Filter) UserID() uuid.UUID {
	return f.userID
}
