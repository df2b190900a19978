// Package pricing computes order cost breakdowns. Every intermediate amount is
// rounded half away from zero to cents before it feeds the next step.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/freshfold/laundry-backend/internal/catalog"
	"github.com/freshfold/laundry-backend/pkg/config"
	"github.com/freshfold/laundry-backend/pkg/enums"
	pkgerrors "github.com/freshfold/laundry-backend/pkg/errors"
	"github.com/freshfold/laundry-backend/pkg/types"
)

const cents = 2

// Round2 rounds to two decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(cents)
}

// Money converts a rounded amount to the float stored on records.
func Money(d decimal.Decimal) float64 {
	f, _ := Round2(d).Float64()
	return f
}

// Input is everything the engine needs to price an order.
type Input struct {
	Type     enums.OrderType
	Plan     *catalog.Plan
	WeightKg *float64
	Addons   []types.AddonSelection
	Discount decimal.Decimal
}

// Breakdown is the priced result. Monetary fields are already rounded.
type Breakdown struct {
	WeightKg    decimal.Decimal
	Base        decimal.Decimal
	Lines       []types.AddonLine
	AddonsTotal decimal.Decimal
	Discount    decimal.Decimal
	Subtotal    decimal.Decimal
	GST         decimal.Decimal
	Total       decimal.Decimal
}

// Engine holds the configured rates. It is shared by booking and invoicing.
type Engine struct {
	ratePerKg     decimal.Decimal
	gstRate       decimal.Decimal
	defaultWeight decimal.Decimal
}

// NewEngine validates the pricing constants.
func NewEngine(cfg config.PricingConfig) (*Engine, error) {
	if cfg.OneOffRatePerKg <= 0 {
		return nil, fmt.Errorf("one-off rate per kg must be positive")
	}
	if cfg.GSTRate < 0 || cfg.GSTRate >= 1 {
		return nil, fmt.Errorf("gst rate must be in [0, 1)")
	}
	if cfg.DefaultWeightKg <= 0 {
		return nil, fmt.Errorf("default weight must be positive")
	}
	return &Engine{
		ratePerKg:     decimal.NewFromFloat(cfg.OneOffRatePerKg),
		gstRate:       decimal.NewFromFloat(cfg.GSTRate),
		defaultWeight: decimal.NewFromFloat(cfg.DefaultWeightKg),
	}, nil
}

// GSTRate exposes the configured rate for display.
func (e *Engine) GSTRate() decimal.Decimal {
	return e.gstRate
}

// Quote prices an order. It has no side effects.
func (e *Engine) Quote(in Input) (Breakdown, error) {
	var out Breakdown

	weight, err := e.resolveWeight(in.WeightKg)
	if err != nil {
		return out, err
	}
	out.WeightKg = weight

	switch in.Type {
	case enums.OrderTypeSubscription:
		if in.Plan == nil {
			return out, pkgerrors.NewReason(pkgerrors.CodeValidation, pkgerrors.ReasonInvalidPlan, "Invalid plan")
		}
		out.Base = Round2(decimal.NewFromFloat(in.Plan.Price))
	case enums.OrderTypeOneOff:
		out.Base = Round2(weight.Mul(e.ratePerKg))
	default:
		return out, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order type %q", in.Type))
	}

	out.Lines, out.AddonsTotal = priceAddons(in.Addons)
	out.Discount = ClampDiscount(in.Discount, out.Base.Add(out.AddonsTotal))
	out.Subtotal = Round2(out.Base.Add(out.AddonsTotal).Sub(out.Discount))
	out.GST = Round2(out.Subtotal.Mul(e.gstRate))
	out.Total = Round2(out.Subtotal.Add(out.GST))
	return out, nil
}

func (e *Engine) resolveWeight(raw *float64) (decimal.Decimal, error) {
	if raw == nil {
		return e.defaultWeight, nil
	}
	// Weight is priced at the two-decimal precision orders persist.
	weight := Round2(decimal.NewFromFloat(*raw))
	if !weight.IsPositive() {
		return decimal.Zero, pkgerrors.NewReason(pkgerrors.CodeValidation, pkgerrors.ReasonInvalidWeight, "weightKg must be a positive number")
	}
	return weight, nil
}

// priceAddons matches selections against the catalog. Unknown ids and
// non-positive quantities are dropped.
func priceAddons(selections []types.AddonSelection) ([]types.AddonLine, decimal.Decimal) {
	lines := make([]types.AddonLine, 0, len(selections))
	total := decimal.Zero
	for _, sel := range selections {
		addon, ok := catalog.FindAddOn(sel.ID)
		if !ok {
			continue
		}
		qty := 1
		if sel.Quantity != nil {
			qty = *sel.Quantity
		}
		if qty <= 0 {
			continue
		}
		subtotal := Round2(decimal.NewFromFloat(addon.Price).Mul(decimal.NewFromInt(int64(qty))))
		total = total.Add(subtotal)
		lines = append(lines, types.AddonLine{
			ID:       addon.ID,
			Name:     addon.Name,
			Price:    addon.Price,
			Unit:     addon.Unit,
			Quantity: qty,
			Subtotal: Money(subtotal),
		})
	}
	return lines, Round2(total)
}

// ClampDiscount bounds a discount to [0, ceiling] and rounds it.
func ClampDiscount(discount, ceiling decimal.Decimal) decimal.Decimal {
	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(ceiling) {
		return Round2(ceiling)
	}
	return Round2(discount)
}
