package models

import (
	"time"

	"github.com/freshfold/laundry-backend/pkg/enums"
	"github.com/google/uuid"
)

// PaymentTransaction records one checkout attempt against an order.
type PaymentTransaction struct {
	ID            uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID       uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index" json:"orderId"`
	UserID        *uuid.UUID          `gorm:"column:user_id;type:uuid" json:"userId"`
	Amount        float64             `gorm:"column:amount;type:numeric(10,2);not null" json:"amount"`
	Currency      string              `gorm:"column:currency;not null" json:"currency"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null" json:"paymentStatus"`
	Status        *string             `gorm:"column:status" json:"status,omitempty"`
	SessionID     *string             `gorm:"column:session_id;uniqueIndex" json:"sessionId"`
	CheckoutURL   *string             `gorm:"column:checkout_url" json:"checkoutUrl,omitempty"`
	Metadata      map[string]string   `gorm:"column:metadata;type:jsonb;serializer:json" json:"metadata"`
	Error         *string             `gorm:"column:error" json:"error,omitempty"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
