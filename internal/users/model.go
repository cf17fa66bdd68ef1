// Package users stores identities mirrored from the auth provider via
// webhook. The provider owns the account lifecycle; this is a read model.
package users

import "time"

// Role is the coarse authorization level attached to a user.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// User is an identity record keyed by the auth provider's user id.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
