package subscriptions

import (
	"context"
	"testing"

	"github.com/freshfold/laundry-backend/pkg/db/dbtest"
	"github.com/freshfold/laundry-backend/pkg/db/models"
	"github.com/freshfold/laundry-backend/pkg/enums"
	"github.com/google/uuid"
)

func TestRepositoryFindCurrentSkipsCancelled(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	userID := uuid.New()

	old := &models.Subscription{UserID: userID, PlanID: "starter", PlanName: "Starter", Price: 19.99, Status: enums.SubscriptionStatusCancelled, PickupsPerMonth: 2, MaxWeightKg: 7}
	if err := repo.Create(ctx, old); err != nil {
		t.Fatalf("create: %v", err)
	}
	sub, err := repo.FindCurrent(ctx, userID)
	if err != nil || sub != nil {
		t.Fatalf("expected nil current, got %+v %v", sub, err)
	}

	paused := &models.Subscription{UserID: userID, PlanID: "family", PlanName: "Family", Price: 49.99, Status: enums.SubscriptionStatusPaused, PickupsPerMonth: 4, MaxWeightKg: 18}
	if err := repo.Create(ctx, paused); err != nil {
		t.Fatalf("create: %v", err)
	}
	sub, err = repo.FindCurrent(ctx, userID)
	if err != nil || sub == nil || sub.ID != paused.ID {
		t.Fatalf("expected paused subscription, got %+v %v", sub, err)
	}

	n, err := repo.CountByStatus(ctx, enums.SubscriptionStatusCancelled)
	if err != nil || n != 1 {
		t.Fatalf("expected one cancelled, got %d %v", n, err)
	}
}
