package enums

import "fmt"

// ComplaintStatus tracks resolution of a support ticket.
type ComplaintStatus string

const (
	ComplaintStatusOpen       ComplaintStatus = "open"
	ComplaintStatusInProgress ComplaintStatus = "in_progress"
	ComplaintStatusResolved   ComplaintStatus = "resolved"
)

var validComplaintStatuses = []ComplaintStatus{
	ComplaintStatusOpen,
	ComplaintStatusInProgress,
	ComplaintStatusResolved,
}

// String implements fmt.Stringer.
func (s ComplaintStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s ComplaintStatus) IsValid() bool {
	for _, candidate := range validComplaintStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseComplaintStatus converts raw input into a ComplaintStatus.
func ParseComplaintStatus(value string) (ComplaintStatus, error) {
	for _, candidate := range validComplaintStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid complaint status %q", value)
}

// ComplaintCategory classifies a ticket.
type ComplaintCategory string

const (
	ComplaintCategoryMissingItem    ComplaintCategory = "Missing Item"
	ComplaintCategoryDamagedGarment ComplaintCategory = "Damaged Garment"
	ComplaintCategoryQualityIssue   ComplaintCategory = "Quality Issue"
	ComplaintCategoryLateDelivery   ComplaintCategory = "Late Delivery"
	ComplaintCategoryBillingIssue   ComplaintCategory = "Billing Issue"
	ComplaintCategoryOther          ComplaintCategory = "Other"
)

// ComplaintCategories lists every category in display order.
var ComplaintCategories = []ComplaintCategory{
	ComplaintCategoryMissingItem,
	ComplaintCategoryDamagedGarment,
	ComplaintCategoryQualityIssue,
	ComplaintCategoryLateDelivery,
	ComplaintCategoryBillingIssue,
	ComplaintCategoryOther,
}

// ParseComplaintCategory converts raw input into a ComplaintCategory.
func ParseComplaintCategory(value string) (ComplaintCategory, error) {
	for _, candidate := range ComplaintCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid complaint category %q", value)
}
