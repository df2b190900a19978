package enums

import "fmt"

// OrderStatus is a stage of the laundry tracking sequence.
type OrderStatus string

const (
	OrderStatusPlaced         OrderStatus = "Order Placed"
	OrderStatusPickedUp       OrderStatus = "Picked Up"
	OrderStatusFacilityIntake OrderStatus = "Facility Intake"
	OrderStatusWashing        OrderStatus = "Washing"
	OrderStatusDrying         OrderStatus = "Drying"
	OrderStatusIroning        OrderStatus = "Ironing"
	OrderStatusQualityCheck   OrderStatus = "Quality Check"
	OrderStatusOutForDelivery OrderStatus = "Out for Delivery"
	OrderStatusDelivered      OrderStatus = "Delivered"
)

// OrderStatuses is the tracking sequence in order.
var OrderStatuses = []OrderStatus{
	OrderStatusPlaced,
	OrderStatusPickedUp,
	OrderStatusFacilityIntake,
	OrderStatusWashing,
	OrderStatusDrying,
	OrderStatusIroning,
	OrderStatusQualityCheck,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is part of the tracking sequence.
func (s OrderStatus) IsValid() bool {
	return s.Position() >= 0
}

// Position returns the zero-based index in the sequence, or -1.
func (s OrderStatus) Position() int {
	for i, candidate := range OrderStatuses {
		if candidate == s {
			return i
		}
	}
	return -1
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range OrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
