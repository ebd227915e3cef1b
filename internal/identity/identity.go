// Package identity models the caller of a core operation. Role resolution is
// an external concern; core services only see the resolved Actor and check
// capability sets against it.
package identity

import "context"

type Role string

const (
	RoleCustomer         Role = "customer"
	RoleAdmin            Role = "admin"
	RoleInventoryManager Role = "inventory_manager"
	RoleSupplier         Role = "supplier"
)

// Actor is the per-request caller identity. SupplierID is set only for
// supplier users and scopes which requests they may decide on.
type Actor struct {
	UserID     string
	Role       Role
	SupplierID string
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// IsStaff reports whether the actor may act on behalf of the inventory team.
func (a Actor) IsStaff() bool {
	return a.Role == RoleAdmin || a.Role == RoleInventoryManager
}

func (a Actor) IsSupplier() bool { return a.Role == RoleSupplier }

// Lookup resolves a user id into an Actor. Implementations return
// sql.ErrNoRows-equivalent apperr.NotFound for unknown or soft-deleted users.
type Lookup interface {
	Resolve(ctx context.Context, userID string) (Actor, error)
}
