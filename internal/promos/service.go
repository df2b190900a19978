package promos

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/freshfold/laundry-backend/internal/pricing"
	"github.com/freshfold/laundry-backend/pkg/db"
	"github.com/freshfold/laundry-backend/pkg/db/models"
	"github.com/freshfold/laundry-backend/pkg/enums"
	pkgerrors "github.com/freshfold/laundry-backend/pkg/errors"
	"github.com/freshfold/laundry-backend/pkg/logger"
	"github.com/google/uuid"
)

// Service manages promo codes and computes their discounts.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Promo, error)
	List(ctx context.Context) ([]models.Promo, error)
	Validate(ctx context.Context, input ValidateInput) (*Validation, error)
	Redeem(ctx context.Context, tx *gorm.DB, code string, amount decimal.Decimal) (Redemption, error)
	Seed(ctx context.Context, seeds []string) error
}

// Redemption is a consumed promo applied to an order.
type Redemption struct {
	Code     string
	Discount decimal.Decimal
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the promo service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("promo repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// NormalizeCode trims and upper-cases a code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Promo, error) {
	code := NormalizeCode(input.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "type must be percentage or fixed")
	}
	if input.Value <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "value must be positive")
	}
	if input.Type == enums.PromoTypePercentage && input.Value > 100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "percentage cannot exceed 100")
	}
	if input.MaxUses < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "maxUses cannot be negative")
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}
	promo := &models.Promo{
		ID:          uuid.New(),
		Code:        code,
		Type:        input.Type,
		Value:       input.Value,
		MaxUses:     input.MaxUses,
		Active:      active,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.repo.Create(ctx, promo); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "promo code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create promo")
	}
	return promo, nil
}

func (s *service) List(ctx context.Context) ([]models.Promo, error) {
	promos, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list promos")
	}
	return promos, nil
}

func (s *service) Validate(ctx context.Context, input ValidateInput) (*Validation, error) {
	if input.Subtotal < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subtotal cannot be negative")
	}
	promo, err := s.usable(ctx, s.repo, input.Code)
	if err != nil {
		return nil, err
	}
	discount := Discount(promo, decimal.NewFromFloat(input.Subtotal))
	return &Validation{
		Valid:       true,
		Code:        promo.Code,
		Type:        promo.Type,
		Value:       promo.Value,
		Discount:    pricing.Money(discount),
		Description: promo.Description,
	}, nil
}

// Redeem checks the code, consumes one use inside tx, and returns the discount
// against amount.
func (s *service) Redeem(ctx context.Context, tx *gorm.DB, code string, amount decimal.Decimal) (Redemption, error) {
	repo := s.repo.WithTx(tx)
	promo, err := s.usable(ctx, repo, code)
	if err != nil {
		return Redemption{}, err
	}
	ok, err := repo.IncrementUsage(ctx, promo.ID)
	if err != nil {
		return Redemption{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume promo")
	}
	if !ok {
		return Redemption{}, invalidPromo("promo code has reached its usage limit")
	}
	return Redemption{Code: promo.Code, Discount: Discount(promo, amount)}, nil
}

func (s *service) usable(ctx context.Context, repo Repository, raw string) (*models.Promo, error) {
	code := NormalizeCode(raw)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	promo, err := repo.FindByCode(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promo")
	}
	if promo == nil {
		return nil, invalidPromo("Invalid promo code")
	}
	if !promo.Active {
		return nil, invalidPromo("Promo code is no longer active")
	}
	if promo.Exhausted() {
		return nil, invalidPromo("promo code has reached its usage limit")
	}
	return promo, nil
}

func invalidPromo(msg string) error {
	return pkgerrors.NewReason(pkgerrors.CodeValidation, pkgerrors.ReasonInvalidPromo, msg)
}

// Discount computes a promo's value against amount, clamped to [0, amount].
func Discount(promo *models.Promo, amount decimal.Decimal) decimal.Decimal {
	if promo == nil || amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	value := decimal.NewFromFloat(promo.Value)
	var raw decimal.Decimal
	switch promo.Type {
	case enums.PromoTypePercentage:
		raw = pricing.Round2(amount.Mul(value).Div(decimal.NewFromInt(100)))
	case enums.PromoTypeFixed:
		raw = value
	default:
		return decimal.Zero
	}
	return pricing.ClampDiscount(raw, amount)
}

// Seed inserts configured codes that do not exist yet. Entries are
// CODE:type:value[:maxUses].
func (s *service) Seed(ctx context.Context, seeds []string) error {
	var errs error
	for _, raw := range seeds {
		input, err := ParseSeed(raw)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		existing, err := s.repo.FindByCode(ctx, NormalizeCode(input.Code))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("lookup %s: %w", input.Code, err))
			continue
		}
		if existing != nil {
			continue
		}
		if _, err := s.Create(ctx, input); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("seed %s: %w", input.Code, err))
			continue
		}
		if s.logg != nil {
			s.logg.Info(ctx, fmt.Sprintf("seeded promo code %s", NormalizeCode(input.Code)))
		}
	}
	return errs
}

// ParseSeed parses one CODE:type:value[:maxUses] entry.
func ParseSeed(raw string) (CreateInput, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 3 || len(parts) > 4 {
		return CreateInput{}, fmt.Errorf("invalid promo seed %q", raw)
	}
	promoType, err := enums.ParsePromoType(strings.ToLower(parts[1]))
	if err != nil {
		return CreateInput{}, fmt.Errorf("invalid promo seed %q: %w", raw, err)
	}
	value, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return CreateInput{}, fmt.Errorf("invalid promo seed %q: value: %w", raw, err)
	}
	input := CreateInput{Code: parts[0], Type: promoType, Value: value}
	if len(parts) == 4 {
		maxUses, err := strconv.Atoi(parts[3])
		if err != nil {
			return CreateInput{}, fmt.Errorf("invalid promo seed %q: maxUses: %w", raw, err)
		}
		input.MaxUses = maxUses
	}
	return input, nil
}
