package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/freshfold/laundry-backend/internal/catalog"
	"github.com/freshfold/laundry-backend/internal/pricing"
	"github.com/freshfold/laundry-backend/internal/promos"
	"github.com/freshfold/laundry-backend/pkg/db"
	"github.com/freshfold/laundry-backend/pkg/db/models"
	"github.com/freshfold/laundry-backend/pkg/enums"
	pkgerrors "github.com/freshfold/laundry-backend/pkg/errors"
	"github.com/freshfold/laundry-backend/pkg/logger"
	"github.com/freshfold/laundry-backend/pkg/outbox"
	"github.com/freshfold/laundry-backend/pkg/outbox/payloads"
	"github.com/freshfold/laundry-backend/pkg/tracking"
	"github.com/freshfold/laundry-backend/pkg/types"
	"github.com/google/uuid"
)

const (
	createdNote          = "Order created"
	maxTrackingIDRetries = 3
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type promoRedeemer interface {
	Redeem(ctx context.Context, tx *gorm.DB, code string, amount decimal.Decimal) (promos.Redemption, error)
}

// UserReader resolves the billed customer for invoices.
type UserReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type orderMetrics interface {
	OrderCreated(orderType string)
}

// Service is the order lifecycle manager.
type Service interface {
	Create(ctx context.Context, actor types.Actor, input CreateInput) (*models.Order, error)
	Update(ctx context.Context, actor types.Actor, id uuid.UUID, input UpdateInput) (*models.Order, error)
	Get(ctx context.Context, actor types.Actor, id uuid.UUID) (*models.Order, error)
	Track(ctx context.Context, trackingID string) (*TrackingView, error)
	ListForUser(ctx context.Context, actor types.Actor) ([]models.Order, error)
	ListAll(ctx context.Context, actor types.Actor, status string) ([]models.Order, error)
	Invoice(ctx context.Context, actor types.Actor, id uuid.UUID) (*Invoice, error)
}

// ServiceParams groups the order service dependencies.
type ServiceParams struct {
	Repo          Repository
	Tx            txRunner
	Outbox        outboxPublisher
	Pricing       *pricing.Engine
	Promos        promoRedeemer
	Users         UserReader
	QR            tracking.Generator
	Metrics       orderMetrics
	PublicBaseURL string
	Currency      string
	Logger        *logger.Logger
	Now           func() time.Time
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxPublisher
	pricing  *pricing.Engine
	promos   promoRedeemer
	users    UserReader
	qr       tracking.Generator
	metrics  orderMetrics
	baseURL  string
	currency string
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the order service with the required dependencies.
func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if p.Pricing == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	if p.Promos == nil {
		return nil, fmt.Errorf("promo redeemer required")
	}
	if strings.TrimSpace(p.PublicBaseURL) == "" {
		return nil, fmt.Errorf("public base url required")
	}
	qr := p.QR
	if qr == nil {
		qr = tracking.NoopGenerator{}
	}
	now := p.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	currency := p.Currency
	if currency == "" {
		currency = "aud"
	}
	return &service{
		repo:     p.Repo,
		tx:       p.Tx,
		outbox:   p.Outbox,
		pricing:  p.Pricing,
		promos:   p.Promos,
		users:    p.Users,
		qr:       qr,
		metrics:  p.Metrics,
		baseURL:  p.PublicBaseURL,
		currency: currency,
		logg:     p.Logger,
		now:      now,
	}, nil
}

func (s *service) Create(ctx context.Context, actor types.Actor, input CreateInput) (*models.Order, error) {
	suburb, ok := catalog.ServesSuburb(input.Suburb)
	if !ok {
		return nil, pkgerrors.NewReason(pkgerrors.CodeValidation, pkgerrors.ReasonInvalidSuburb,
			"Service not available in this suburb. We serve Greater Geelong, Bellarine Peninsula, and Surf Coast areas.")
	}
	pickupDate := strings.TrimSpace(input.PickupDate)
	pickupSlot := strings.TrimSpace(input.PickupTimeSlot)
	if pickupDate == "" || pickupSlot == "" {
		return nil, pkgerrors.NewReason(pkgerrors.CodeValidation, pkgerrors.ReasonMissingPickupSlot, "Pickup date and time slot required")
	}
	// Exactly one identification path: a signed-in owner or guest contact fields.
	guestEmail, guestName, guestPhone := trimmedPtr(input.GuestEmail), trimmedPtr(input.GuestName), trimmedPtr(input.GuestPhone)
	if actor.Authenticated() {
		guestEmail, guestName, guestPhone = nil, nil, nil
	} else if guestEmail == nil {
		return nil, pkgerrors.NewReason(pkgerrors.CodeValidation, pkgerrors.ReasonMissingContact, "Sign in or provide a guest email")
	}

	orderType, err := enums.ParseOrderType(input.Type)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	delivery, err := enums.ParseDeliveryPreference(input.DeliveryPreference)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if input.Items < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "items cannot be negative")
	}

	var plan *catalog.Plan
	planName := catalog.OneOffPlanName
	var planID *string
	if orderType == enums.OrderTypeSubscription {
		id := strings.TrimSpace(deref(input.PlanID))
		found, ok := catalog.FindPlan(id)
		if !ok {
			return nil, pkgerrors.NewReason(pkgerrors.CodeValidation, pkgerrors.ReasonInvalidPlan, "Invalid plan")
		}
		plan = &found
		planName = found.Name
		planID = &found.ID
	}

	quoteInput := pricing.Input{
		Type:     orderType,
		Plan:     plan,
		WeightKg: input.WeightKg,
		Addons:   input.Addons,
	}
	// Priced up front so validation errors surface before any write.
	preview, err := s.pricing.Quote(quoteInput)
	if err != nil {
		return nil, err
	}

	promoCode := trimmedPtr(input.PromoCode)
	var created *models.Order

	for attempt := 1; ; attempt++ {
		order := &models.Order{
			ID:                 uuid.New(),
			TrackingID:         tracking.NewTrackingID(),
			UserID:             actor.UserIDPtr(),
			GuestEmail:         guestEmail,
			GuestName:          guestName,
			GuestPhone:         guestPhone,
			Type:               orderType,
			PlanID:             planID,
			PlanName:           planName,
			Suburb:             suburb,
			PickupDate:         pickupDate,
			PickupTimeSlot:     pickupSlot,
			DeliveryPreference: delivery,
			Items:              input.Items,
			Instructions:       strings.TrimSpace(input.Instructions),
			Status:             enums.OrderStatusPlaced,
			PaymentStatus:      enums.PaymentStatusPending,
		}
		order.TrackingURL = tracking.URL(s.baseURL, order.TrackingID)
		order.QRCode = s.renderQR(ctx, order.TrackingURL)
		order.StatusHistory = []types.StatusEntry{{
			Status:    string(enums.OrderStatusPlaced),
			Timestamp: s.now(),
			Note:      createdNote,
		}}

		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			breakdown := preview
			if promoCode != nil {
				redemption, err := s.promos.Redeem(ctx, tx, *promoCode, preview.Base.Add(preview.AddonsTotal))
				if err != nil {
					return err
				}
				quoteInput.Discount = redemption.Discount
				breakdown, err = s.pricing.Quote(quoteInput)
				if err != nil {
					return err
				}
				order.PromoCode = &redemption.Code
			}
			applyBreakdown(order, breakdown)

			if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
				return err
			}
			return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderCreated,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Actor:         actorRef(actor),
				Data: payloads.OrderCreatedEvent{
					OrderID:    order.ID,
					TrackingID: order.TrackingID,
					UserID:     order.UserID,
					Type:       string(order.Type),
					Suburb:     order.Suburb,
					Total:      order.Total,
				},
			})
		})
		if err == nil {
			created = order
			break
		}
		if db.IsUniqueViolation(err, "") && attempt < maxTrackingIDRetries {
			continue
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	if s.metrics != nil {
		s.metrics.OrderCreated(string(created.Type))
	}
	if s.logg != nil {
		logCtx := s.logg.WithTrackingID(s.logg.WithOrderID(ctx, created.ID.String()), created.TrackingID)
		s.logg.Info(logCtx, "order created")
	}
	return created, nil
}

func (s *service) renderQR(ctx context.Context, url string) string {
	code, err := s.qr.Generate(url)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("tracking qr generation failed: %v", err))
		}
		return ""
	}
	return code
}

func applyBreakdown(order *models.Order, b pricing.Breakdown) {
	order.WeightKg = pricing.Money(b.WeightKg)
	order.Addons = b.Lines
	order.BaseCost = pricing.Money(b.Base)
	order.AddonsTotal = pricing.Money(b.AddonsTotal)
	order.Discount = pricing.Money(b.Discount)
	order.Subtotal = pricing.Money(b.Subtotal)
	order.GST = pricing.Money(b.GST)
	order.Total = pricing.Money(b.Total)
}

func (s *service) Update(ctx context.Context, actor types.Actor, id uuid.UUID, input UpdateInput) (*models.Order, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Admin access required")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, id)
		if err != nil {
			if IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		statusChanged, entry := ApplyUpdate(order, input, s.now())
		if err := repo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save order")
		}
		if statusChanged {
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderStatusChanged,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Actor:         actorRef(actor),
				Data: payloads.OrderStatusChangedEvent{
					OrderID:    order.ID,
					TrackingID: order.TrackingID,
					Status:     entry.Status,
					Note:       entry.Note,
				},
			}); err != nil {
				return err
			}
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ApplyUpdate mutates order in place. A status outside the tracking sequence is
// ignored; every accepted status appends exactly one history entry.
func ApplyUpdate(order *models.Order, input UpdateInput, now time.Time) (bool, types.StatusEntry) {
	var entry types.StatusEntry
	statusChanged := false
	if input.Status != nil {
		if status, err := enums.ParseOrderStatus(strings.TrimSpace(*input.Status)); err == nil {
			entry = types.StatusEntry{Status: string(status), Timestamp: now, Note: deref(input.Note)}
			order.Status = status
			order.StatusHistory = append(order.StatusHistory, entry)
			statusChanged = true
		}
	}
	if input.ItemsConfirmed != nil {
		order.ItemsConfirmed = *input.ItemsConfirmed
	}
	if len(input.ConfirmedItems) > 0 {
		order.ConfirmedItems = input.ConfirmedItems
	}
	return statusChanged, entry
}

func (s *service) Get(ctx context.Context, actor types.Actor, id uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !order.OwnedBy(actor.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another customer")
	}
	return order, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) Track(ctx context.Context, trackingID string) (*TrackingView, error) {
	code := tracking.NormalizeTrackingID(trackingID)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking id required")
	}
	order, err := s.repo.FindByTrackingID(ctx, code)
	if err != nil {
		if IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Tracking ID not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	view := NewTrackingView(order)
	return &view, nil
}

// NewTrackingView projects the public subset of an order.
func NewTrackingView(order *models.Order) TrackingView {
	return TrackingView{
		TrackingID:         order.TrackingID,
		Status:             string(order.Status),
		StatusHistory:      order.StatusHistory,
		PlanName:           order.PlanName,
		Suburb:             order.Suburb,
		PickupDate:         order.PickupDate,
		PickupTimeSlot:     order.PickupTimeSlot,
		DeliveryPreference: string(order.DeliveryPreference),
		Items:              order.Items,
		ItemsConfirmed:     order.ItemsConfirmed,
		ConfirmedItems:     order.ConfirmedItems,
		DriverName:         order.DriverName,
		QRCode:             order.QRCode,
		CreatedAt:          order.CreatedAt,
	}
}

func (s *service) ListForUser(ctx context.Context, actor types.Actor) ([]models.Order, error) {
	if !actor.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized")
	}
	orders, err := s.repo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

func (s *service) ListAll(ctx context.Context, actor types.Actor, status string) ([]models.Order, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Admin access required")
	}
	orders, err := s.repo.List(ctx, ListFilter{Status: strings.TrimSpace(status)})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

func actorRef(actor types.Actor) *outbox.ActorRef {
	if !actor.Authenticated() {
		return nil
	}
	return &outbox.ActorRef{UserID: actor.UserIDPtr(), Role: string(actor.Role)}
}

func trimmedPtr(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
