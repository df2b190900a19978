package payloads

import (
	"github.com/google/uuid"
)

// OrderCreatedEvent announces a new booking.
type OrderCreatedEvent struct {
	OrderID    uuid.UUID  `json:"orderId"`
	TrackingID string     `json:"trackingId"`
	UserID     *uuid.UUID `json:"userId,omitempty"`
	Type       string     `json:"type"`
	Suburb     string     `json:"suburb"`
	Total      float64    `json:"total"`
}

// OrderStatusChangedEvent is emitted for every accepted status update.
type OrderStatusChangedEvent struct {
	OrderID    uuid.UUID `json:"orderId"`
	TrackingID string    `json:"trackingId"`
	Status     string    `json:"status"`
	Note       string    `json:"note,omitempty"`
}

// OrderDriverAssignedEvent is emitted when a driver takes an order.
type OrderDriverAssignedEvent struct {
	OrderID    uuid.UUID `json:"orderId"`
	TrackingID string    `json:"trackingId"`
	DriverID   uuid.UUID `json:"driverId"`
	DriverName string    `json:"driverName"`
}

// OrderPaidEvent is emitted once when an order's payment settles.
type OrderPaidEvent struct {
	OrderID       uuid.UUID `json:"orderId"`
	TransactionID uuid.UUID `json:"transactionId"`
	SessionID     string    `json:"sessionId"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
}

// PaymentDeferredEvent is emitted when the gateway fails and the order falls
// back to manual payment.
type PaymentDeferredEvent struct {
	OrderID       uuid.UUID `json:"orderId"`
	TransactionID uuid.UUID `json:"transactionId"`
	Reason        string    `json:"reason"`
}

// SubscriptionChangedEvent is emitted on subscribe and every mutation.
type SubscriptionChangedEvent struct {
	SubscriptionID uuid.UUID `json:"subscriptionId"`
	UserID         uuid.UUID `json:"userId"`
	PlanID         string    `json:"planId"`
	Status         string    `json:"status"`
	Action         string    `json:"action"`
}

// ComplaintEvent is emitted when a ticket is created or updated.
type ComplaintEvent struct {
	ComplaintID  uuid.UUID `json:"complaintId"`
	TicketNumber string    `json:"ticketNumber"`
	Category     string    `json:"category"`
	Status       string    `json:"status"`
}
