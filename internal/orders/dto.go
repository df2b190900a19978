package orders

import (
	"encoding/json"
	"time"

	"github.com/freshfold/laundry-backend/pkg/types"
)

// CreateInput is a booking request after JSON decoding.
type CreateInput struct {
	Type               string                 `json:"type" validate:"omitempty,oneof=subscription one-off"`
	PlanID             *string                `json:"planId"`
	Suburb             string                 `json:"suburb"`
	PickupDate         string                 `json:"pickupDate"`
	PickupTimeSlot     string                 `json:"pickupTimeSlot"`
	DeliveryPreference string                 `json:"deliveryPreference" validate:"omitempty,oneof=standard express"`
	Items              int                    `json:"items" validate:"gte=0"`
	WeightKg           *float64               `json:"weightKg"`
	Instructions       string                 `json:"instructions" validate:"max=1000"`
	Addons             []types.AddonSelection `json:"addons" validate:"omitempty,dive"`
	PromoCode          *string                `json:"promoCode"`
	GuestEmail         *string                `json:"guestEmail" validate:"omitempty,email"`
	GuestName          *string                `json:"guestName"`
	GuestPhone         *string                `json:"guestPhone"`
}

// UpdateInput carries an admin's partial update. Absent fields are untouched.
type UpdateInput struct {
	Status         *string         `json:"status"`
	Note           *string         `json:"note"`
	ItemsConfirmed *bool           `json:"itemsConfirmed"`
	ConfirmedItems json.RawMessage `json:"confirmedItems"`
}

// TrackingView is the public projection served by tracking-code lookup.
// It must never carry payment, pricing or owner fields.
type TrackingView struct {
	TrackingID         string              `json:"trackingId"`
	Status             string              `json:"status"`
	StatusHistory      []types.StatusEntry `json:"statusHistory"`
	PlanName           string              `json:"planName"`
	Suburb             string              `json:"suburb"`
	PickupDate         string              `json:"pickupDate"`
	PickupTimeSlot     string              `json:"pickupTimeSlot"`
	DeliveryPreference string              `json:"deliveryPreference"`
	Items              int                 `json:"items"`
	ItemsConfirmed     bool                `json:"itemsConfirmed"`
	ConfirmedItems     json.RawMessage     `json:"confirmedItems,omitempty"`
	DriverName         *string             `json:"driverName,omitempty"`
	QRCode             string              `json:"qrCode"`
	CreatedAt          time.Time           `json:"createdAt"`
}

// Invoice is a recomputed bill for an order.
type Invoice struct {
	InvoiceNumber string          `json:"invoiceNumber"`
	OrderID       string          `json:"orderId"`
	TrackingID    string          `json:"trackingId"`
	IssuedAt      time.Time       `json:"issuedAt"`
	Customer      InvoiceCustomer `json:"customer"`
	LineItems     []InvoiceLine   `json:"lineItems"`
	Discount      float64         `json:"discount"`
	PromoCode     *string         `json:"promoCode,omitempty"`
	Subtotal      float64         `json:"subtotal"`
	GSTRate       float64         `json:"gstRate"`
	GST           float64         `json:"gst"`
	Total         float64         `json:"total"`
	Currency      string          `json:"currency"`
	PaymentStatus string          `json:"paymentStatus"`
}

// InvoiceCustomer is the billed party.
type InvoiceCustomer struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	Suburb string `json:"suburb"`
}

// InvoiceLine is one billed row.
type InvoiceLine struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Amount      float64 `json:"amount"`
}
