package models

import (
	"time"

	"github.com/freshfold/laundry-backend/pkg/enums"
	"github.com/freshfold/laundry-backend/pkg/types"
	"github.com/google/uuid"
)

// User is a customer or admin account.
type User struct {
	ID           uuid.UUID                  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string                     `gorm:"column:name;not null" json:"name"`
	Email        string                     `gorm:"column:email;type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string                     `gorm:"column:password_hash;not null" json:"-"`
	Phone        string                     `gorm:"column:phone;not null;default:''" json:"phone"`
	Suburb       string                     `gorm:"column:suburb;not null;default:''" json:"suburb"`
	Role         enums.Role                 `gorm:"column:role;type:text;not null;default:'customer'" json:"role"`
	Subscription *types.SubscriptionSummary `gorm:"column:subscription;type:jsonb;serializer:json" json:"subscription"`
	LastLoginAt  *time.Time                 `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time                  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time                  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
