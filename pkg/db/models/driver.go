package models

import (
	"time"

	"github.com/freshfold/laundry-backend/pkg/enums"
	"github.com/google/uuid"
)

// Driver is a pickup/delivery driver on the roster.
type Driver struct {
	ID        uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string             `gorm:"column:name;not null" json:"name"`
	Phone     string             `gorm:"column:phone;not null;default:''" json:"phone"`
	Vehicle   string             `gorm:"column:vehicle;not null;default:''" json:"vehicle"`
	Zones     []string           `gorm:"column:zones;type:jsonb;serializer:json" json:"zones"`
	Status    enums.DriverStatus `gorm:"column:status;type:text;not null;default:'available'" json:"status"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
