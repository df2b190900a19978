package payments

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"

	pkgstripe "github.com/freshfold/laundry-backend/pkg/stripe"
)

// Session is the gateway's view of a hosted checkout.
type Session struct {
	ID            string
	URL           string
	Status        string
	PaymentStatus string
	AmountTotal   int64
	Currency      string
	Metadata      map[string]string
}

// SessionRequest describes a single-line hosted checkout.
type SessionRequest struct {
	ProductName string
	Description string
	AmountCents int64
	Currency    string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// Gateway is the payment collaborator behind checkout.
type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
}

type stripeGateway struct{}

// NewStripeGateway wraps the Stripe Checkout API. A nil client yields a gateway
// that always fails with pkgstripe.ErrNotConfigured so orders fall back to
// manual payment.
func NewStripeGateway(client *pkgstripe.Client) Gateway {
	if client == nil {
		return unavailableGateway{}
	}
	return stripeGateway{}
}

func (stripeGateway) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(req.Currency),
				UnitAmount: stripe.Int64(req.AmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(req.ProductName),
					Description: stripe.String(req.Description),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	s, err := session.New(params)
	if err != nil {
		return nil, err
	}
	return FromStripeSession(s), nil
}

func (stripeGateway) GetSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := session.Get(id, params)
	if err != nil {
		return nil, err
	}
	return FromStripeSession(s), nil
}

// FromStripeSession converts an SDK session, including ones decoded from
// webhook payloads.
func FromStripeSession(s *stripe.CheckoutSession) *Session {
	if s == nil {
		return nil
	}
	return &Session{
		ID:            s.ID,
		URL:           s.URL,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		Metadata:      s.Metadata,
	}
}

type unavailableGateway struct{}

func (unavailableGateway) CreateSession(context.Context, SessionRequest) (*Session, error) {
	return nil, pkgstripe.ErrNotConfigured
}

func (unavailableGateway) GetSession(context.Context, string) (*Session, error) {
	return nil, pkgstripe.ErrNotConfigured
}
