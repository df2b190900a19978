package orders

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/freshfold/laundry-backend/internal/pricing"
	"github.com/freshfold/laundry-backend/internal/promos"
	"github.com/freshfold/laundry-backend/pkg/config"
	"github.com/freshfold/laundry-backend/pkg/db"
	"github.com/freshfold/laundry-backend/pkg/db/dbtest"
	"github.com/freshfold/laundry-backend/pkg/db/models"
	"github.com/freshfold/laundry-backend/pkg/enums"
	pkgerrors "github.com/freshfold/laundry-backend/pkg/errors"
	"github.com/freshfold/laundry-backend/pkg/outbox"
	"github.com/freshfold/laundry-backend/pkg/types"
)

var fixedNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

type stubQR struct {
	err error
}

func (s stubQR) Generate(content string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "qr:" + content, nil
}

type countingMetrics struct {
	created map[string]int
}

func (m *countingMetrics) OrderCreated(orderType string) {
	if m.created == nil {
		m.created = map[string]int{}
	}
	m.created[orderType]++
}

type stubUsers struct {
	user *models.User
}

func (s stubUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

type harness struct {
	svc     Service
	conn    *gorm.DB
	promos  promos.Service
	metrics *countingMetrics
}

func newHarness(t *testing.T, qr stubQR, users UserReader) harness {
	t.Helper()
	conn := dbtest.Open(t)
	engine, err := pricing.NewEngine(config.PricingConfig{OneOffRatePerKg: 5.99, GSTRate: 0.10, DefaultWeightKg: 5})
	require.NoError(t, err)
	promoSvc, err := promos.NewService(promos.NewRepository(conn), nil)
	require.NoError(t, err)
	metrics := &countingMetrics{}

	svc, err := NewService(ServiceParams{
		Repo:          NewRepository(conn),
		Tx:            db.FromGorm(conn),
		Outbox:        outbox.NewEmitter(outbox.NewRepository(conn), nil),
		Pricing:       engine,
		Promos:        promoSvc,
		Users:         users,
		QR:            qr,
		Metrics:       metrics,
		PublicBaseURL: "https://freshfold.example/track",
		Now:           func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return harness{svc: svc, conn: conn, promos: promoSvc, metrics: metrics}
}

func strPtr(v string) *string { return &v }

func intPtr(v int) *int { return &v }

func customer() types.Actor {
	return types.Actor{UserID: uuid.New(), Role: enums.RoleCustomer, Name: "Sam"}
}

func admin() types.Actor {
	return types.Actor{UserID: uuid.New(), Role: enums.RoleAdmin, Name: "Ops"}
}

func baseInput() CreateInput {
	return CreateInput{
		Suburb:         "Geelong",
		PickupDate:     "2025-03-12",
		PickupTimeSlot: "8:00 AM - 10:00 AM",
	}
}

func outboxCount(t *testing.T, conn *gorm.DB, eventType enums.OutboxEventType) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Where("event_type = ?", eventType).Count(&n).Error)
	return n
}

func TestCreateOneOffWithAddons(t *testing.T) {
	h := newHarness(t, stubQR{}, nil)
	input := baseInput()
	input.Addons = []types.AddonSelection{{ID: "stain", Quantity: intPtr(2)}}

	order, err := h.svc.Create(context.Background(), customer(), input)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(order.TrackingID, "FF-"))
	assert.Len(t, order.TrackingID, 11)
	assert.Equal(t, "https://freshfold.example/track?track="+order.TrackingID, order.TrackingURL)
	assert.Equal(t, "qr:"+order.TrackingURL, order.QRCode)
	assert.Equal(t, "One-Off Service", order.PlanName)
	assert.Equal(t, enums.DeliveryStandard, order.DeliveryPreference)
	assert.Equal(t, 29.95, order.BaseCost)
	assert.Equal(t, 11.98, order.AddonsTotal)
	assert.Equal(t, 41.93, order.Subtotal)
	assert.Equal(t, 4.19, order.GST)
	assert.Equal(t, 46.12, order.Total)
	assert.Equal(t, enums.OrderStatusPlaced, order.Status)
	assert.Equal(t, enums.PaymentStatusPending, order.PaymentStatus)
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, "Order created", order.StatusHistory[0].Note)
	assert.Equal(t, 1, h.metrics.created["one-off"])
	assert.EqualValues(t, 1, outboxCount(t, h.conn, enums.EventOrderCreated))

	stored, err := NewRepository(h.conn).FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.TrackingID, stored.TrackingID)
	require.Len(t, stored.Addons, 1)
	assert.Equal(t, 2, stored.Addons[0].Quantity)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	h := newHarness(t, stubQR{}, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		actor  types.Actor
		mutate func(*CreateInput)
		reason pkgerrors.Reason
	}{
		{name: "unserved suburb", actor: customer(), mutate: func(in *CreateInput) { in.Suburb = "Melbourne" }, reason: pkgerrors.ReasonInvalidSuburb},
		{name: "missing slot", actor: customer(), mutate: func(in *CreateInput) { in.PickupTimeSlot = " " }, reason: pkgerrors.ReasonMissingPickupSlot},
		{name: "guest without email", mutate: func(*CreateInput) {}, reason: pkgerrors.ReasonMissingContact},
		{name: "unknown plan", actor: customer(), mutate: func(in *CreateInput) {
			in.Type = "subscription"
			in.PlanID = strPtr("platinum")
		}, reason: pkgerrors.ReasonInvalidPlan},
		{name: "zero weight", actor: customer(), mutate: func(in *CreateInput) {
			w := 0.0
			in.WeightKg = &w
		}, reason: pkgerrors.ReasonInvalidWeight},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := baseInput()
			tc.mutate(&input)
			_, err := h.svc.Create(ctx, tc.actor, input)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
			assert.Equal(t, tc.reason, typed.Reason())
		})
	}

	var n int64
	require.NoError(t, h.conn.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateGuestSubscriptionOrder(t *testing.T) {
	h := newHarness(t, stubQR{}, nil)
	input := baseInput()
	input.Suburb = "torquay"
	input.Type = "subscription"
	input.PlanID = strPtr("family")
	input.GuestEmail = strPtr(" guest@example.com ")

	order, err := h.svc.Create(context.Background(), types.Actor{}, input)
	require.NoError(t, err)
	assert.Nil(t, order.UserID)
	assert.Equal(t, "guest@example.com", *order.GuestEmail)
	assert.Equal(t, "Torquay", order.Suburb)
	assert.Equal(t, "Family", order.PlanName)
	assert.Equal(t, 49.99, order.BaseCost)
	assert.Equal(t, 5.0, order.GST)
	assert.Equal(t, 54.99, order.Total)
}

func TestCreateAppliesPromoOnce(t *testing.T) {
	h := newHarness(t, stubQR{}, nil)
	ctx := context.Background()
	_, err := h.promos.Create(ctx, promos.CreateInput{Code: "SPRING", Type: enums.PromoTypeFixed, Value: 10, MaxUses: 1})
	require.NoError(t, err)

	input := baseInput()
	input.PromoCode = strPtr("spring")
	order, err := h.svc.Create(ctx, customer(), input)
	require.NoError(t, err)
	require.NotNil(t, order.PromoCode)
	assert.Equal(t, "SPRING", *order.PromoCode)
	assert.Equal(t, 10.0, order.Discount)
	assert.Equal(t, 19.95, order.Subtotal)
	assert.Equal(t, 2.0, order.GST)
	assert.Equal(t, 21.95, order.Total)

	_, err = h.svc.Create(ctx, customer(), input)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.ReasonInvalidPromo, pkgerrors.As(err).Reason())
	assert.EqualValues(t, 1, outboxCount(t, h.conn, enums.EventOrderCreated))
}

func TestCreateSurvivesQRFailure(t *testing.T) {
	h := newHarness(t, stubQR{err: errors.New("encoder down")}, nil)
	order, err := h.svc.Create(context.Background(), customer(), baseInput())
	require.NoError(t, err)
	assert.Empty(t, order.QRCode)
	assert.NotEmpty(t, order.TrackingURL)
}

func TestUpdateAppendsHistory(t *testing.T) {
	h := newHarness(t, stubQR{}, nil)
	ctx := context.Background()
	order, err := h.svc.Create(ctx, customer(), baseInput())
	require.NoError(t, err)

	updated, err := h.svc.Update(ctx, admin(), order.ID, UpdateInput{Status: strPtr("Delivered"), Note: strPtr("left at door")})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, updated.Status)
	require.Len(t, updated.StatusHistory, 2)
	assert.Equal(t, types.StatusEntry{Status: "Delivered", Timestamp: fixedNow, Note: "left at door"}, updated.StatusHistory[1])
	assert.EqualValues(t, 1, outboxCount(t, h.conn, enums.EventOrderStatusChanged))

	// Repeating a status still records the update.
	updated, err = h.svc.Update(ctx, admin(), order.ID, UpdateInput{Status: strPtr("Delivered")})
	require.NoError(t, err)
	assert.Len(t, updated.StatusHistory, 3)
}

func TestUpdateItemsConfirmedLeavesStatus(t *testing.T) {
	h := newHarness(t, stubQR{}, nil)
	ctx := context.Background()
	order, err := h.svc.Create(ctx, customer(), baseInput())
	require.NoError(t, err)

	confirmed := true
	updated, err := h.svc.Update(ctx, admin(), order.ID, UpdateInput{
		ItemsConfirmed: &confirmed,
		ConfirmedItems: []byte(`[{"name":"shirt","count":4}]`),
		Status:         strPtr("Teleported"),
	})
	require.NoError(t, err)
	assert.True(t, updated.ItemsConfirmed)
	assert.JSONEq(t, `[{"name":"shirt","count":4}]`, string(updated.ConfirmedItems))
	assert.Equal(t, enums.OrderStatusPlaced, updated.Status)
	assert.Len(t, updated.StatusHistory, 1)
	assert.Zero(t, outboxCount(t, h.conn, enums.EventOrderStatusChanged))
}

func TestUpdateRequiresAdmin(t *testing.T) {
	h := newHarness(t, stubQR{}, nil)
	_, err := h.svc.Update(context.Background(), customer(), uuid.New(), UpdateInput{Status: strPtr("Washing")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = h.svc.Update(context.Background(), admin(), uuid.New(), UpdateInput{Status: strPtr("Washing")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestTrackReturnsPublicProjection(t *testing.T) {
	h := newHarness(t, stubQR{}, nil)
	ctx := context.Background()
	order, err := h.svc.Create(ctx, customer(), baseInput())
	require.NoError(t, err)

	view, err := h.svc.Track(ctx, strings.ToLower(order.TrackingID))
	require.NoError(t, err)
	assert.Equal(t, order.TrackingID, view.TrackingID)
	assert.Equal(t, "Order Placed", view.Status)
	assert.Equal(t, "Geelong", view.Suburb)

	_, err = h.svc.Track(ctx, "FF-NOPE0000")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestGetEnforcesOwnership(t *testing.T) {
	h := newHarness(t, stubQR{}, nil)
	ctx := context.Background()
	owner := customer()
	order, err := h.svc.Create(ctx, owner, baseInput())
	require.NoError(t, err)

	_, err = h.svc.Get(ctx, owner, order.ID)
	assert.NoError(t, err)
	_, err = h.svc.Get(ctx, admin(), order.ID)
	assert.NoError(t, err)
	_, err = h.svc.Get(ctx, customer(), order.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestListForUserAndAdmin(t *testing.T) {
	h := newHarness(t, stubQR{}, nil)
	ctx := context.Background()
	owner := customer()
	first, err := h.svc.Create(ctx, owner, baseInput())
	require.NoError(t, err)
	_, err = h.svc.Create(ctx, customer(), baseInput())
	require.NoError(t, err)
	_, err = h.svc.Update(ctx, admin(), first.ID, UpdateInput{Status: strPtr("Washing")})
	require.NoError(t, err)

	mine, err := h.svc.ListForUser(ctx, owner)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)

	_, err = h.svc.ListForUser(ctx, types.Actor{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	all, err := h.svc.ListAll(ctx, admin(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	washing, err := h.svc.ListAll(ctx, admin(), "Washing")
	require.NoError(t, err)
	assert.Len(t, washing, 1)

	_, err = h.svc.ListAll(ctx, owner, "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestInvoiceRecomputesTotals(t *testing.T) {
	owner := customer()
	user := &models.User{ID: owner.UserID, Name: "Sam Lee", Email: "sam@example.com", Phone: "0400000000"}
	h := newHarness(t, stubQR{}, stubUsers{user: user})
	ctx := context.Background()

	input := baseInput()
	input.Addons = []types.AddonSelection{{ID: "stain", Quantity: intPtr(2)}, {ID: "unknown"}}
	order, err := h.svc.Create(ctx, owner, input)
	require.NoError(t, err)

	invoice, err := h.svc.Invoice(ctx, owner, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-"+strings.TrimPrefix(order.TrackingID, "FF-"), invoice.InvoiceNumber)
	assert.Equal(t, "Sam Lee", invoice.Customer.Name)
	assert.Equal(t, "0400000000", invoice.Customer.Phone)
	require.Len(t, invoice.LineItems, 2)
	assert.Equal(t, 29.95, invoice.LineItems[0].Amount)
	assert.Equal(t, 11.98, invoice.LineItems[1].Amount)
	assert.Equal(t, order.Subtotal, invoice.Subtotal)
	assert.Equal(t, order.GST, invoice.GST)
	assert.Equal(t, order.Total, invoice.Total)
	assert.Equal(t, 0.1, invoice.GSTRate)
	assert.Equal(t, "aud", invoice.Currency)

	_, err = h.svc.Invoice(ctx, customer(), order.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestInvoiceMatchesChargedTotalForFractionalWeight(t *testing.T) {
	owner := customer()
	h := newHarness(t, stubQR{}, stubUsers{user: &models.User{ID: owner.UserID, Name: "Sam Lee"}})
	ctx := context.Background()

	input := baseInput()
	w := 2.333
	input.WeightKg = &w
	order, err := h.svc.Create(ctx, owner, input)
	require.NoError(t, err)
	assert.Equal(t, 2.33, order.WeightKg)
	assert.Equal(t, 13.96, order.BaseCost)
	assert.Equal(t, 15.36, order.Total)

	invoice, err := h.svc.Invoice(ctx, owner, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.BaseCost, invoice.LineItems[0].Amount)
	assert.Equal(t, order.Subtotal, invoice.Subtotal)
	assert.Equal(t, order.GST, invoice.GST)
	assert.Equal(t, order.Total, invoice.Total)
}

func TestCreateForSignedInUserIgnoresGuestContact(t *testing.T) {
	h := newHarness(t, stubQR{}, nil)
	owner := customer()
	input := baseInput()
	input.GuestEmail = strPtr("someone@example.com")
	input.GuestName = strPtr("Someone")
	input.GuestPhone = strPtr("0400111222")

	order, err := h.svc.Create(context.Background(), owner, input)
	require.NoError(t, err)
	require.NotNil(t, order.UserID)
	assert.Equal(t, owner.UserID, *order.UserID)
	assert.Nil(t, order.GuestEmail)
	assert.Nil(t, order.GuestName)
	assert.Nil(t, order.GuestPhone)
}
