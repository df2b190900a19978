package types

import (
	"github.com/freshfold/laundry-backend/pkg/enums"
	"github.com/google/uuid"
)

// Actor is the caller of a domain operation. The zero value is an anonymous guest.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
	Name   string
	Email  string
}

// Authenticated reports whether the actor carries a user id.
func (a Actor) Authenticated() bool {
	return a.UserID != uuid.Nil
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Authenticated() && a.Role == enums.RoleAdmin
}

// UserIDPtr returns the user id or nil for guests.
func (a Actor) UserIDPtr() *uuid.UUID {
	if !a.Authenticated() {
		return nil
	}
	id := a.UserID
	return &id
}
