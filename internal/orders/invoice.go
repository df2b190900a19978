package orders

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/freshfold/laundry-backend/internal/catalog"
	"github.com/freshfold/laundry-backend/internal/pricing"
	"github.com/freshfold/laundry-backend/pkg/db/models"
	"github.com/freshfold/laundry-backend/pkg/enums"
	pkgerrors "github.com/freshfold/laundry-backend/pkg/errors"
	"github.com/freshfold/laundry-backend/pkg/tracking"
	"github.com/freshfold/laundry-backend/pkg/types"
	"github.com/google/uuid"
)

func (s *service) Invoice(ctx context.Context, actor types.Actor, id uuid.UUID) (*Invoice, error) {
	order, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	var plan *catalog.Plan
	if order.Type == enums.OrderTypeSubscription && order.PlanID != nil {
		if found, ok := catalog.FindPlan(*order.PlanID); ok {
			plan = &found
		}
	}
	weight := order.WeightKg
	breakdown, err := s.pricing.Quote(pricing.Input{
		Type:     order.Type,
		Plan:     plan,
		WeightKg: &weight,
		Addons:   selectionsFromLines(order.Addons),
		Discount: decimal.NewFromFloat(order.Discount),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recompute invoice")
	}

	invoice := &Invoice{
		InvoiceNumber: tracking.InvoiceNumber(order.TrackingID),
		OrderID:       order.ID.String(),
		TrackingID:    order.TrackingID,
		IssuedAt:      s.now(),
		Customer:      s.invoiceCustomer(ctx, order),
		LineItems:     invoiceLines(order, breakdown),
		Discount:      pricing.Money(breakdown.Discount),
		PromoCode:     order.PromoCode,
		Subtotal:      pricing.Money(breakdown.Subtotal),
		GSTRate:       pricing.Money(s.pricing.GSTRate()),
		GST:           pricing.Money(breakdown.GST),
		Total:         pricing.Money(breakdown.Total),
		Currency:      s.currency,
		PaymentStatus: string(order.PaymentStatus),
	}
	return invoice, nil
}

func (s *service) invoiceCustomer(ctx context.Context, order *models.Order) InvoiceCustomer {
	customer := InvoiceCustomer{
		Name:   deref(order.GuestName),
		Email:  deref(order.GuestEmail),
		Phone:  deref(order.GuestPhone),
		Suburb: order.Suburb,
	}
	if order.UserID == nil || s.users == nil {
		return customer
	}
	user, err := s.users.FindByID(ctx, *order.UserID)
	if err != nil || user == nil {
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("invoice customer lookup failed for order %s", order.ID))
		}
		return customer
	}
	customer.Name = user.Name
	customer.Email = user.Email
	if user.Phone != "" {
		customer.Phone = user.Phone
	}
	return customer
}

func invoiceLines(order *models.Order, b pricing.Breakdown) []InvoiceLine {
	service := fmt.Sprintf("Laundry service - %s", order.PlanName)
	if order.Type == enums.OrderTypeOneOff {
		service = fmt.Sprintf("Laundry service - %s (%s kg)", order.PlanName, b.WeightKg.StringFixed(2))
	}
	lines := []InvoiceLine{{
		Description: service,
		Quantity:    1,
		UnitPrice:   pricing.Money(b.Base),
		Amount:      pricing.Money(b.Base),
	}}
	for _, addon := range b.Lines {
		lines = append(lines, InvoiceLine{
			Description: addon.Name,
			Quantity:    addon.Quantity,
			UnitPrice:   addon.Price,
			Amount:      addon.Subtotal,
		})
	}
	return lines
}

func selectionsFromLines(lines []types.AddonLine) []types.AddonSelection {
	out := make([]types.AddonSelection, 0, len(lines))
	for _, line := range lines {
		qty := line.Quantity
		out = append(out, types.AddonSelection{ID: line.ID, Quantity: &qty})
	}
	return out
}
