package types

import "time"

// StatusEntry is one append-only record of an order's tracking history.
type StatusEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note"`
}

// AddonLine is a priced add-on selection stored on an order.
type AddonLine struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Unit     string  `json:"unit"`
	Quantity int     `json:"quantity"`
	Subtotal float64 `json:"subtotal"`
}

// AddonSelection is a raw add-on request before catalog matching. A nil
// quantity means one.
type AddonSelection struct {
	ID       string `json:"id" validate:"required"`
	Quantity *int   `json:"quantity,omitempty"`
}
