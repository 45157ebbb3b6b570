package shared

import "github.com/google/uuid"

// Role is the role an actor holds within its shop
type Role string

const (
	RoleOwner Role = "owner"
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleStaff:
		return true
	}
	return false
}

// Actor is the authenticated caller of a core operation. Every mutating
// operation receives one explicitly; the shop scope is never inferred.
type Actor struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     Role
}

// NewActor creates an actor for the given shop and user
func NewActor(tenantID, userID uuid.UUID, role Role) Actor {
	return Actor{TenantID: tenantID, UserID: userID, Role: role}
}

// Validate ensures the actor is bound to a shop
func (a Actor) Validate() error {
	if a.TenantID == uuid.Nil {
		return NewValidationError("shop scope is required")
	}
	return nil
}

// UserRef returns the user ID as a nullable reference for audit columns
func (a Actor) UserRef() *uuid.UUID {
	if a.UserID == uuid.Nil {
		return nil
	}
	id := a.UserID
	return &id
}
