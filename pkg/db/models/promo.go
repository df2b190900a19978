package models

import (
	"time"

	"github.com/freshfold/laundry-backend/pkg/enums"
	"github.com/google/uuid"
)

// Promo is a redeemable discount code.
type Promo struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code        string          `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Type        enums.PromoType `gorm:"column:type;type:text;not null" json:"type"`
	Value       float64         `gorm:"column:value;type:numeric(10,2);not null" json:"value"`
	MaxUses     int             `gorm:"column:max_uses;not null;default:0" json:"maxUses"`
	UsedCount   int             `gorm:"column:used_count;not null;default:0" json:"usedCount"`
	Active      bool            `gorm:"column:active;not null" json:"active"`
	Description string          `gorm:"column:description;not null;default:''" json:"description"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// Exhausted reports whether a capped promo has no uses left.
func (p *Promo) Exhausted() bool {
	return p.MaxUses > 0 && p.UsedCount >= p.MaxUses
}
