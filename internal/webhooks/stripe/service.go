package stripewebhook

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v84"

	"github.com/freshfold/laundry-backend/internal/payments"
	pkgerrors "github.com/freshfold/laundry-backend/pkg/errors"
	"github.com/freshfold/laundry-backend/pkg/logger"
)

type sessionApplier interface {
	ApplySession(ctx context.Context, sess *payments.Session) error
}

// Service routes verified Stripe events into the checkout bridge.
type Service struct {
	payments sessionApplier
	logg     *logger.Logger
}

func NewService(applier sessionApplier, logg *logger.Logger) (*Service, error) {
	if applier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments service required")
	}
	return &Service{payments: applier, logg: logg}, nil
}

func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded,
		stripe.EventTypeCheckoutSessionAsyncPaymentFailed,
		stripe.EventTypeCheckoutSessionExpired:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session event")
		}
		err := s.payments.ApplySession(ctx, payments.FromStripeSession(&sess))
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			// Sessions created outside this service are acknowledged.
			s.warn(ctx, fmt.Sprintf("stripe session %s has no transaction", sess.ID))
			return nil
		}
		return err
	default:
		s.warn(ctx, fmt.Sprintf("ignoring stripe event type %s", event.Type))
		return nil
	}
}

func (s *Service) warn(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Warn(ctx, msg)
	}
}
