package enums

import "fmt"

// SubscriptionStatus is the lifecycle state of a laundry plan subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPaused    SubscriptionStatus = "paused"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

var validSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusActive,
	SubscriptionStatusPaused,
	SubscriptionStatusCancelled,
}

// CurrentSubscriptionStatuses are the states that count as "the" subscription.
var CurrentSubscriptionStatuses = []SubscriptionStatus{
	SubscriptionStatusActive,
	SubscriptionStatusPaused,
}

// String implements fmt.Stringer.
func (s SubscriptionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s SubscriptionStatus) IsValid() bool {
	for _, candidate := range validSubscriptionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsCurrent reports whether the subscription is active or paused.
func (s SubscriptionStatus) IsCurrent() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusPaused
}

// ParseSubscriptionStatus converts raw input into a SubscriptionStatus.
func ParseSubscriptionStatus(value string) (SubscriptionStatus, error) {
	for _, candidate := range validSubscriptionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid subscription status %q", value)
}

// SubscriptionAction is a mutation requested against the current subscription.
type SubscriptionAction string

const (
	SubscriptionActionPause   SubscriptionAction = "pause"
	SubscriptionActionResume  SubscriptionAction = "resume"
	SubscriptionActionCancel  SubscriptionAction = "cancel"
	SubscriptionActionUpgrade SubscriptionAction = "upgrade"
)

// ParseSubscriptionAction converts raw input into a SubscriptionAction.
func ParseSubscriptionAction(value string) (SubscriptionAction, error) {
	switch SubscriptionAction(value) {
	case SubscriptionActionPause, SubscriptionActionResume, SubscriptionActionCancel, SubscriptionActionUpgrade:
		return SubscriptionAction(value), nil
	}
	return "", fmt.Errorf("invalid subscription action %q", value)
}
