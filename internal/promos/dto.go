package promos

import "github.com/freshfold/laundry-backend/pkg/enums"

// CreateInput is the admin payload for a new promo code.
type CreateInput struct {
	Code        string          `json:"code" validate:"required,min=3,max=32"`
	Type        enums.PromoType `json:"type" validate:"required,oneof=percentage fixed"`
	Value       float64         `json:"value" validate:"gt=0"`
	MaxUses     int             `json:"maxUses" validate:"gte=0"`
	Description string          `json:"description" validate:"max=200"`
	Active      *bool           `json:"active,omitempty"`
}

// ValidateInput asks what a code is worth against a subtotal.
type ValidateInput struct {
	Code     string  `json:"code" validate:"required"`
	Subtotal float64 `json:"subtotal" validate:"gte=0"`
}

// Validation is the result of a successful code check.
type Validation struct {
	Valid       bool            `json:"valid"`
	Code        string          `json:"code"`
	Type        enums.PromoType `json:"type"`
	Value       float64         `json:"value"`
	Discount    float64         `json:"discount"`
	Description string          `json:"description,omitempty"`
}
