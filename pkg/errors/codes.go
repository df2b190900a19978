package errors

import "net/http"

// Code is the machine-readable error code sent in the error envelope.
type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeIdempotency  Code = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimit    Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeDependency   Code = "DEPENDENCY_ERROR"
)

// Reason narrows a Code to a domain condition clients can branch on.
type Reason string

const (
	ReasonInvalidSuburb        Reason = "InvalidSuburb"
	ReasonMissingPickupSlot    Reason = "MissingPickupSlot"
	ReasonInvalidPlan          Reason = "InvalidPlan"
	ReasonInvalidWeight        Reason = "InvalidWeight"
	ReasonMissingContact       Reason = "MissingContact"
	ReasonInvalidPromo         Reason = "InvalidPromo"
	ReasonNoActiveSubscription Reason = "NoActiveSubscription"
	ReasonSubscriptionExists   Reason = "SubscriptionExists"
	ReasonEmailTaken           Reason = "EmailTaken"
	ReasonPaymentGateway       Reason = "PaymentGatewayError"
)

// Policy says how a code is rendered over HTTP.
type Policy struct {
	Status int
	// Fallback replaces the error's own message when the message is empty,
	// and always for internal errors.
	Fallback string
	// ShowDetails lets Error.Details reach the client.
	ShowDetails bool
	// Retryable hints that the same request may succeed later.
	Retryable bool
}

var policies = map[Code]Policy{
	CodeValidation:   {Status: http.StatusBadRequest, Fallback: "validation failed", ShowDetails: true},
	CodeUnauthorized: {Status: http.StatusUnauthorized, Fallback: "authentication required"},
	CodeForbidden:    {Status: http.StatusForbidden, Fallback: "access denied"},
	CodeNotFound:     {Status: http.StatusNotFound, Fallback: "resource not found", ShowDetails: true},
	CodeConflict:     {Status: http.StatusConflict, Fallback: "conflict detected", ShowDetails: true},
	CodeIdempotency:  {Status: http.StatusConflict, Fallback: "idempotency key reused", ShowDetails: true},
	CodeRateLimit:    {Status: http.StatusTooManyRequests, Fallback: "rate limit exceeded", Retryable: true},
	CodeInternal:     {Status: http.StatusInternalServerError, Fallback: "internal server error", Retryable: true},
	CodeDependency:   {Status: http.StatusServiceUnavailable, Fallback: "dependency unavailable", ShowDetails: true, Retryable: true},
}

// PolicyFor returns the rendering policy for code. Unknown codes render as
// internal errors.
func PolicyFor(code Code) Policy {
	if p, ok := policies[code]; ok {
		return p
	}
	return policies[CodeInternal]
}
