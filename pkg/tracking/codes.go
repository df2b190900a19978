package tracking

import (
	"strings"

	"github.com/google/uuid"
)

const (
	TrackingPrefix = "FF-"
	TicketPrefix   = "TKT-"
	InvoicePrefix  = "INV-"

	codeLength = 8
)

// NewTrackingID returns a public order code such as FF-1A2B3C4D.
func NewTrackingID() string {
	return TrackingPrefix + randomCode()
}

// NewTicketNumber returns a complaint ticket code such as TKT-1A2B3C4D.
func NewTicketNumber() string {
	return TicketPrefix + randomCode()
}

// InvoiceNumber derives the invoice number from an order tracking id.
func InvoiceNumber(trackingID string) string {
	suffix := strings.TrimPrefix(trackingID, TrackingPrefix)
	return InvoicePrefix + suffix
}

// NormalizeTrackingID upper-cases and trims user input.
func NormalizeTrackingID(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func randomCode() string {
	return strings.ToUpper(uuid.NewString()[:codeLength])
}
