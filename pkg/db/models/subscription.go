package models

import (
	"time"

	"github.com/freshfold/laundry-backend/pkg/enums"
	"github.com/google/uuid"
)

// Subscription is a user's recurring laundry plan. Price and limits are
// snapshots of the plan at subscribe or upgrade time.
type Subscription struct {
	ID              uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID                `gorm:"column:user_id;type:uuid;not null;index" json:"userId"`
	PlanID          string                   `gorm:"column:plan_id;not null" json:"planId"`
	PlanName        string                   `gorm:"column:plan_name;not null" json:"planName"`
	Price           float64                  `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	Status          enums.SubscriptionStatus `gorm:"column:status;type:text;not null;default:'active'" json:"status"`
	PickupsUsed     int                      `gorm:"column:pickups_used;not null;default:0" json:"pickupsUsed"`
	PickupsPerMonth int                      `gorm:"column:pickups_per_month;not null" json:"pickupsPerMonth"`
	MaxWeightKg     int                      `gorm:"column:max_weight_kg;not null" json:"maxWeightKg"`
	PausedAt        *time.Time               `gorm:"column:paused_at" json:"pausedAt"`
	CancelledAt     *time.Time               `gorm:"column:cancelled_at" json:"cancelledAt"`
	CreatedAt       time.Time                `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time                `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
