package payments

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/freshfold/laundry-backend/internal/orders"
	"github.com/freshfold/laundry-backend/pkg/config"
	"github.com/freshfold/laundry-backend/pkg/db/models"
	"github.com/freshfold/laundry-backend/pkg/enums"
	pkgerrors "github.com/freshfold/laundry-backend/pkg/errors"
	"github.com/freshfold/laundry-backend/pkg/logger"
	"github.com/freshfold/laundry-backend/pkg/outbox"
	"github.com/freshfold/laundry-backend/pkg/outbox/payloads"
	"github.com/freshfold/laundry-backend/pkg/types"
)

const (
	// GatewayUnavailableMessage is returned with a 200 when checkout degrades.
	GatewayUnavailableMessage = "Payment gateway unavailable. Your order has been created and payment can be completed later."

	sessionStatusOpen    = "open"
	sessionStatusExpired = "expired"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type checkoutMetrics interface {
	CheckoutOutcome(paymentStatus string)
}

// CheckoutInput starts payment for an order.
type CheckoutInput struct {
	OrderID   uuid.UUID `json:"orderId" validate:"required"`
	OriginURL string    `json:"originUrl" validate:"required,url"`
}

// CheckoutResult is either a redirect or a degraded response carrying Error.
type CheckoutResult struct {
	URL        string `json:"url,omitempty"`
	SessionID  string `json:"sessionId,omitempty"`
	Error      string `json:"error,omitempty"`
	OrderID    string `json:"orderId,omitempty"`
	TrackingID string `json:"trackingId,omitempty"`
}

// StatusResult mirrors the gateway's session status.
type StatusResult struct {
	PaymentStatus string `json:"payment_status"`
	Status        string `json:"status,omitempty"`
	AmountTotal   int64  `json:"amount_total,omitempty"`
	Currency      string `json:"currency,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Service is the checkout bridge between orders and the payment gateway.
type Service interface {
	CreateCheckout(ctx context.Context, actor types.Actor, input CheckoutInput) (*CheckoutResult, error)
	Status(ctx context.Context, sessionID string) (*StatusResult, error)
	ApplySession(ctx context.Context, sess *Session) error
	ReconcileStale(ctx context.Context) (int, error)
}

// ServiceParams groups the checkout dependencies.
type ServiceParams struct {
	Repo     Repository
	Orders   orders.Repository
	Gateway  Gateway
	Tx       txRunner
	Outbox   outboxPublisher
	Metrics  checkoutMetrics
	Config   config.CheckoutConfig
	Currency string
	Logger   *logger.Logger
	Now      func() time.Time
	Sleep    func(ctx context.Context, d time.Duration) error
}

type service struct {
	repo     Repository
	orders   orders.Repository
	gateway  Gateway
	tx       txRunner
	outbox   outboxPublisher
	metrics  checkoutMetrics
	cfg      config.CheckoutConfig
	currency string
	logg     *logger.Logger
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if p.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if p.Gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	cfg := p.Config
	if cfg.StatusPollAttempts <= 0 {
		cfg.StatusPollAttempts = 1
	}
	currency := strings.ToLower(strings.TrimSpace(p.Currency))
	if currency == "" {
		currency = "aud"
	}
	s := &service{
		repo:     p.Repo,
		orders:   p.Orders,
		gateway:  p.Gateway,
		tx:       p.Tx,
		outbox:   p.Outbox,
		metrics:  p.Metrics,
		cfg:      cfg,
		currency: currency,
		logg:     p.Logger,
		now:      p.Now,
		sleep:    p.Sleep,
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.sleep == nil {
		s.sleep = sleepCtx
	}
	return s, nil
}

func (s *service) CreateCheckout(ctx context.Context, actor types.Actor, input CheckoutInput) (*CheckoutResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orderId is required")
	}
	origin := strings.TrimRight(strings.TrimSpace(input.OriginURL), "/")
	if _, err := url.ParseRequestURI(origin); err != nil || origin == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "originUrl must be an absolute url")
	}

	order, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		if orders.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "Order already paid")
	}

	txn := &models.PaymentTransaction{
		OrderID:       order.ID,
		UserID:        order.UserID,
		Amount:        order.Total,
		Currency:      s.currency,
		PaymentStatus: enums.PaymentStatusInitiated,
		Metadata: map[string]string{
			"orderId": order.ID.String(),
			"type":    string(order.Type),
			"planId":  derefString(order.PlanID),
		},
	}
	if err := s.repo.Create(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment transaction")
	}

	orderID := url.QueryEscape(order.ID.String())
	sess, gwErr := s.gateway.CreateSession(ctx, SessionRequest{
		ProductName: "Fresh Fold - " + order.PlanName,
		Description: "Order " + order.TrackingID,
		AmountCents: int64(math.Round(order.Total * 100)),
		Currency:    s.currency,
		SuccessURL:  origin + "?session_id={CHECKOUT_SESSION_ID}&order_id=" + orderID,
		CancelURL:   origin + "?cancelled=true&order_id=" + orderID,
		Metadata: map[string]string{
			"orderId":    order.ID.String(),
			"trackingId": order.TrackingID,
		},
	})
	if gwErr != nil {
		return s.deferPayment(ctx, actor, order, txn, gwErr)
	}

	txn.SessionID = &sess.ID
	txn.CheckoutURL = &sess.URL
	if err := s.repo.Save(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record checkout session")
	}
	s.observe(enums.PaymentStatusInitiated)
	return &CheckoutResult{URL: sess.URL, SessionID: sess.ID}, nil
}

// deferPayment keeps the order and marks it for manual payment.
func (s *service) deferPayment(ctx context.Context, actor types.Actor, order *models.Order, txn *models.PaymentTransaction, cause error) (*CheckoutResult, error) {
	if s.logg != nil {
		s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()), "checkout session failed", cause)
	}
	reason := cause.Error()
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txn.PaymentStatus = enums.PaymentStatusStripeError
		txn.Error = &reason
		if err := s.repo.WithTx(tx).Save(ctx, txn); err != nil {
			return err
		}
		if err := s.orders.WithTx(tx).UpdatePaymentStatus(ctx, order.ID, enums.PaymentStatusPendingManual); err != nil {
			return err
		}
		var ref *outbox.ActorRef
		if actor.Authenticated() {
			ref = &outbox.ActorRef{UserID: actor.UserIDPtr(), Role: string(actor.Role)}
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentDeferred,
			AggregateType: enums.AggregatePayment,
			AggregateID:   txn.ID,
			Actor:         ref,
			Data: payloads.PaymentDeferredEvent{
				OrderID:       order.ID,
				TransactionID: txn.ID,
				Reason:        reason,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "defer payment")
	}
	s.observe(enums.PaymentStatusPendingManual)
	return &CheckoutResult{
		Error:      GatewayUnavailableMessage,
		OrderID:    order.ID.String(),
		TrackingID: order.TrackingID,
	}, nil
}

func (s *service) Status(ctx context.Context, sessionID string) (*StatusResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	txn, err := s.repo.FindBySessionID(ctx, sessionID)
	if err != nil {
		if isNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	if txn.PaymentStatus == enums.PaymentStatusPaid {
		return &StatusResult{
			PaymentStatus: string(enums.PaymentStatusPaid),
			Status:        derefString(txn.Status),
			AmountTotal:   int64(math.Round(txn.Amount * 100)),
			Currency:      txn.Currency,
		}, nil
	}

	var sess *Session
	for attempt := 1; ; attempt++ {
		sess, err = s.gateway.GetSession(ctx, sessionID)
		if err != nil {
			if s.logg != nil {
				s.logg.Warn(ctx, fmt.Sprintf("checkout status lookup failed: %v", err))
			}
			return &StatusResult{PaymentStatus: string(txn.PaymentStatus), Error: err.Error()}, nil
		}
		if !pending(sess) || attempt >= s.cfg.StatusPollAttempts {
			break
		}
		if err := s.sleep(ctx, s.cfg.StatusPollInterval); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "poll checkout status")
		}
	}

	if pending(sess) {
		return &StatusResult{
			PaymentStatus: string(enums.PaymentStatusUnknown),
			Status:        sess.Status,
			AmountTotal:   sess.AmountTotal,
			Currency:      sess.Currency,
		}, nil
	}
	if err := s.ApplySession(ctx, sess); err != nil {
		return nil, err
	}
	return &StatusResult{
		PaymentStatus: string(resolvePaymentStatus(sess)),
		Status:        sess.Status,
		AmountTotal:   sess.AmountTotal,
		Currency:      sess.Currency,
	}, nil
}

func pending(sess *Session) bool {
	return sess.Status == sessionStatusOpen && sess.PaymentStatus == string(enums.PaymentStatusUnpaid)
}

// resolvePaymentStatus maps gateway state onto a transaction payment status.
func resolvePaymentStatus(sess *Session) enums.PaymentStatus {
	if sess.Status == sessionStatusExpired {
		return enums.PaymentStatusExpired
	}
	status, err := enums.ParsePaymentStatus(sess.PaymentStatus)
	if err != nil {
		return enums.PaymentStatusUnknown
	}
	return status
}

// ApplySession records the gateway's view of a session. Once a transaction is
// paid it is never touched again, so repeated calls are safe.
func (s *service) ApplySession(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id required")
	}
	newStatus := resolvePaymentStatus(sess)
	markedPaid := false

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		txn, err := repo.FindBySessionIDForUpdate(ctx, sess.ID)
		if err != nil {
			if isNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Transaction not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
		}
		if txn.PaymentStatus == enums.PaymentStatusPaid {
			return nil
		}

		status := sess.Status
		txn.PaymentStatus = newStatus
		txn.Status = &status
		if err := repo.Save(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update transaction")
		}
		if newStatus != enums.PaymentStatusPaid {
			return nil
		}

		if err := s.orders.WithTx(tx).UpdatePaymentStatus(ctx, txn.OrderID, enums.PaymentStatusPaid); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
		}
		markedPaid = true
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   txn.OrderID,
			Data: payloads.OrderPaidEvent{
				OrderID:       txn.OrderID,
				TransactionID: txn.ID,
				SessionID:     sess.ID,
				Amount:        txn.Amount,
				Currency:      txn.Currency,
			},
		})
	})
	if err != nil {
		return err
	}
	if markedPaid {
		s.observe(enums.PaymentStatusPaid)
	}
	return nil
}

// ReconcileStale re-checks initiated transactions older than the grace period.
func (s *service) ReconcileStale(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.cfg.ReconcileGrace)
	stale, err := s.repo.ListStale(ctx, enums.PaymentStatusInitiated, cutoff, s.cfg.ReconcileBatchSize)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stale transactions")
	}

	var errs error
	applied := 0
	for _, txn := range stale {
		if txn.SessionID == nil {
			continue
		}
		sess, err := s.gateway.GetSession(ctx, *txn.SessionID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("session %s: %w", *txn.SessionID, err))
			continue
		}
		if pending(sess) {
			continue
		}
		if err := s.ApplySession(ctx, sess); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("session %s: %w", sess.ID, err))
			continue
		}
		applied++
	}
	return applied, errs
}

func (s *service) observe(status enums.PaymentStatus) {
	if s.metrics != nil {
		s.metrics.CheckoutOutcome(string(status))
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
