package enums

import "fmt"

// PromoType selects how a promo discount is computed.
type PromoType string

const (
	PromoTypePercentage PromoType = "percentage"
	PromoTypeFixed      PromoType = "fixed"
)

// IsValid reports whether the value is known.
func (p PromoType) IsValid() bool {
	return p == PromoTypePercentage || p == PromoTypeFixed
}

// ParsePromoType converts raw input into a PromoType.
func ParsePromoType(value string) (PromoType, error) {
	switch PromoType(value) {
	case PromoTypePercentage, PromoTypeFixed:
		return PromoType(value), nil
	}
	return "", fmt.Errorf("invalid promo type %q", value)
}
