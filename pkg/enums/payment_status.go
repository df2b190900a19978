package enums

import "fmt"

// PaymentStatus tracks settlement of an order or payment transaction.
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPendingManual PaymentStatus = "pending_manual"
	PaymentStatusInitiated     PaymentStatus = "initiated"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusUnpaid        PaymentStatus = "unpaid"
	PaymentStatusNoneRequired  PaymentStatus = "no_payment_required"
	PaymentStatusExpired       PaymentStatus = "expired"
	PaymentStatusStripeError   PaymentStatus = "stripe_error"
	PaymentStatusUnknown       PaymentStatus = "unknown"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusPendingManual,
	PaymentStatusInitiated,
	PaymentStatusPaid,
	PaymentStatusUnpaid,
	PaymentStatusNoneRequired,
	PaymentStatusExpired,
	PaymentStatusStripeError,
	PaymentStatusUnknown,
}

// String implements fmt.Stringer.
func (s PaymentStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
