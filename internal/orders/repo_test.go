package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshfold/laundry-backend/pkg/db/dbtest"
	"github.com/freshfold/laundry-backend/pkg/db/models"
	"github.com/freshfold/laundry-backend/pkg/enums"
	"github.com/freshfold/laundry-backend/pkg/tracking"
)

func seedOrder(t *testing.T, repo Repository) *models.Order {
	t.Helper()
	order := &models.Order{
		TrackingID:         tracking.NewTrackingID(),
		Type:               enums.OrderTypeOneOff,
		PlanName:           "One-Off Service",
		Suburb:             "Geelong",
		PickupDate:         "2025-03-12",
		PickupTimeSlot:     "8:00 AM - 10:00 AM",
		DeliveryPreference: enums.DeliveryStandard,
		GuestEmail:         strPtr("guest@example.com"),
		WeightKg:           5,
		BaseCost:           29.95,
		Subtotal:           29.95,
		GST:                3,
		Total:              32.95,
		Status:             enums.OrderStatusPlaced,
		PaymentStatus:      enums.PaymentStatusPending,
		TrackingURL:        "https://freshfold.example/track",
	}
	require.NoError(t, repo.Create(context.Background(), order))
	return order
}

func TestRepositoryColumnUpdates(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	order := seedOrder(t, repo)

	require.NoError(t, repo.UpdatePaymentStatus(ctx, order.ID, enums.PaymentStatusPaid))
	driverID := uuid.New()
	require.NoError(t, repo.AssignDriver(ctx, order.ID, driverID, "Alex"))

	stored, err := repo.FindByTrackingID(ctx, order.TrackingID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, stored.PaymentStatus)
	require.NotNil(t, stored.DriverID)
	assert.Equal(t, driverID, *stored.DriverID)
	assert.Equal(t, "Alex", *stored.DriverName)
}

func TestRepositoryMissingRows(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	_, err := repo.FindByID(ctx, uuid.New())
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(repo.UpdatePaymentStatus(ctx, uuid.New(), enums.PaymentStatusPaid)))
	assert.True(t, IsNotFound(repo.AssignDriver(ctx, uuid.New(), uuid.New(), "Alex")))
}

func TestRepositoryRejectsDuplicateTrackingID(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	order := seedOrder(t, repo)

	dup := *order
	dup.ID = uuid.Nil
	err := repo.Create(context.Background(), &dup)
	require.Error(t, err)
}
