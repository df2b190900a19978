package enums

import "fmt"

// OrderType distinguishes plan-backed bookings from pay-per-use ones.
type OrderType string

const (
	OrderTypeSubscription OrderType = "subscription"
	OrderTypeOneOff       OrderType = "one-off"
)

var validOrderTypes = []OrderType{
	OrderTypeSubscription,
	OrderTypeOneOff,
}

// String implements fmt.Stringer.
func (t OrderType) String() string {
	return string(t)
}

// IsValid reports whether the value is known.
func (t OrderType) IsValid() bool {
	for _, candidate := range validOrderTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOrderType converts raw input into an OrderType; empty input is one-off.
func ParseOrderType(value string) (OrderType, error) {
	if value == "" {
		return OrderTypeOneOff, nil
	}
	for _, candidate := range validOrderTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order type %q", value)
}

// DeliveryPreference captures the requested return speed.
type DeliveryPreference string

const (
	DeliveryStandard DeliveryPreference = "standard"
	DeliveryExpress  DeliveryPreference = "express"
)

// ParseDeliveryPreference converts raw input; empty input is standard.
func ParseDeliveryPreference(value string) (DeliveryPreference, error) {
	switch DeliveryPreference(value) {
	case "", DeliveryStandard:
		return DeliveryStandard, nil
	case DeliveryExpress:
		return DeliveryExpress, nil
	}
	return "", fmt.Errorf("invalid delivery preference %q", value)
}
