package enums

import "testing"

func TestOrderStatusSequence(t *testing.T) {
	if len(OrderStatuses) != 9 {
		t.Fatalf("expected 9 tracking statuses, got %d", len(OrderStatuses))
	}
	if OrderStatusPlaced.Position() != 0 || OrderStatusDelivered.Position() != 8 {
		t.Fatalf("unexpected sequence endpoints")
	}
	if OrderStatus("Lost").IsValid() {
		t.Fatalf("unknown status should be invalid")
	}
	if _, err := ParseOrderStatus("washing"); err == nil {
		t.Fatalf("status matching is case sensitive")
	}
	if got, err := ParseOrderStatus("Out for Delivery"); err != nil || got != OrderStatusOutForDelivery {
		t.Fatalf("unexpected parse result %q %v", got, err)
	}
}

func TestParseOrderTypeDefaultsToOneOff(t *testing.T) {
	got, err := ParseOrderType("")
	if err != nil || got != OrderTypeOneOff {
		t.Fatalf("expected one-off default, got %q %v", got, err)
	}
	if _, err := ParseOrderType("weekly"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestSubscriptionStatusIsCurrent(t *testing.T) {
	if !SubscriptionStatusActive.IsCurrent() || !SubscriptionStatusPaused.IsCurrent() {
		t.Fatalf("active and paused should be current")
	}
	if SubscriptionStatusCancelled.IsCurrent() {
		t.Fatalf("cancelled should not be current")
	}
}

func TestParseComplaintCategory(t *testing.T) {
	if _, err := ParseComplaintCategory("Damaged Garment"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseComplaintCategory("Rude Driver"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}

func TestParseDeliveryPreferenceDefault(t *testing.T) {
	got, err := ParseDeliveryPreference("")
	if err != nil || got != DeliveryStandard {
		t.Fatalf("expected standard default, got %q %v", got, err)
	}
}
