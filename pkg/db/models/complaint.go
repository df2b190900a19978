package models

import (
	"time"

	"github.com/freshfold/laundry-backend/pkg/enums"
	"github.com/freshfold/laundry-backend/pkg/types"
	"github.com/google/uuid"
)

// Complaint is a support ticket raised by a customer or guest.
type Complaint struct {
	ID           uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TicketNumber string                  `gorm:"column:ticket_number;not null;uniqueIndex" json:"ticketNumber"`
	OrderID      *uuid.UUID              `gorm:"column:order_id;type:uuid" json:"orderId"`
	UserID       *uuid.UUID              `gorm:"column:user_id;type:uuid;index" json:"userId"`
	UserName     string                  `gorm:"column:user_name;not null" json:"userName"`
	UserEmail    string                  `gorm:"column:user_email;not null;default:''" json:"userEmail"`
	Category     enums.ComplaintCategory `gorm:"column:category;type:text;not null" json:"category"`
	Description  string                  `gorm:"column:description;not null" json:"description"`
	PhotoURL     *string                 `gorm:"column:photo_url" json:"photoUrl"`
	Status       enums.ComplaintStatus   `gorm:"column:status;type:text;not null;default:'open'" json:"status"`
	Resolution   *string                 `gorm:"column:resolution" json:"resolution"`
	RefundAmount *float64                `gorm:"column:refund_amount;type:numeric(10,2)" json:"refundAmount"`
	AdminNotes   []types.AdminNote       `gorm:"column:admin_notes;type:jsonb;serializer:json" json:"adminNotes"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
