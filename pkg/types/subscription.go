package types

// SubscriptionSummary is the copy of the current subscription kept on a user.
type SubscriptionSummary struct {
	PlanID   string `json:"planId"`
	PlanName string `json:"planName"`
	Status   string `json:"status"`
}
