package types

import (
	"testing"

	"github.com/freshfold/laundry-backend/pkg/enums"
	"github.com/google/uuid"
)

func TestActor(t *testing.T) {
	var guest Actor
	if guest.Authenticated() || guest.IsAdmin() || guest.UserIDPtr() != nil {
		t.Fatal("zero actor must be an anonymous guest")
	}

	id := uuid.New()
	customer := Actor{UserID: id, Role: enums.RoleCustomer}
	if !customer.Authenticated() || customer.IsAdmin() {
		t.Fatal("customer flags wrong")
	}
	if ptr := customer.UserIDPtr(); ptr == nil || *ptr != id {
		t.Fatal("expected user id pointer")
	}

	admin := Actor{UserID: uuid.New(), Role: enums.RoleAdmin}
	if !admin.IsAdmin() {
		t.Fatal("expected admin")
	}
	if (Actor{Role: enums.RoleAdmin}).IsAdmin() {
		t.Fatal("role without user id must not be admin")
	}
}
