package types

import "time"

// AdminNote is an append-only remark left on a complaint by staff.
type AdminNote struct {
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
	Admin     string    `json:"admin"`
}
