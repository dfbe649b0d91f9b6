package service

import (
	"fmt"

	"hospital-operations-backend/internal/models"
)

// Actor is the staff member on whose behalf an operation runs.
// Roles come from the caller; services never look up a session.
type Actor struct {
	StaffID uint
	Role    models.Role
}

// IDPtr returns the staff id for nullable actor columns.
func (a Actor) IDPtr() *uint {
	if a.StaffID == 0 {
		return nil
	}
	id := a.StaffID
	return &id
}

func (a Actor) is(roles ...models.Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// require fails with ErrForbidden unless the actor holds one of roles.
func (a Actor) require(action string, roles ...models.Role) error {
	if a.is(roles...) {
		return nil
	}
	return fmt.Errorf("%w: %s requires role %v, got %q", ErrForbidden, action, roles, a.Role)
}
