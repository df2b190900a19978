package models

import (
	"encoding/json"
	"time"

	"github.com/freshfold/laundry-backend/pkg/enums"
	"github.com/freshfold/laundry-backend/pkg/types"
	"github.com/google/uuid"
)

// Order is a laundry booking with its priced breakdown and tracking history.
type Order struct {
	ID                 uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TrackingID         string                   `gorm:"column:tracking_id;not null;uniqueIndex" json:"trackingId"`
	UserID             *uuid.UUID               `gorm:"column:user_id;type:uuid;index" json:"userId"`
	GuestEmail         *string                  `gorm:"column:guest_email" json:"guestEmail"`
	GuestName          *string                  `gorm:"column:guest_name" json:"guestName"`
	GuestPhone         *string                  `gorm:"column:guest_phone" json:"guestPhone"`
	Type               enums.OrderType          `gorm:"column:type;type:text;not null" json:"type"`
	PlanID             *string                  `gorm:"column:plan_id" json:"planId"`
	PlanName           string                   `gorm:"column:plan_name;not null" json:"planName"`
	Suburb             string                   `gorm:"column:suburb;not null" json:"suburb"`
	PickupDate         string                   `gorm:"column:pickup_date;not null" json:"pickupDate"`
	PickupTimeSlot     string                   `gorm:"column:pickup_time_slot;not null" json:"pickupTimeSlot"`
	DeliveryPreference enums.DeliveryPreference `gorm:"column:delivery_preference;type:text;not null" json:"deliveryPreference"`
	Items              int                      `gorm:"column:items;not null;default:0" json:"items"`
	WeightKg           float64                  `gorm:"column:weight_kg;type:numeric(8,2);not null" json:"weightKg"`
	Instructions       string                   `gorm:"column:instructions;not null;default:''" json:"instructions"`
	Addons             []types.AddonLine        `gorm:"column:addons;type:jsonb;serializer:json" json:"addons"`
	PromoCode          *string                  `gorm:"column:promo_code" json:"promoCode,omitempty"`
	Discount           float64                  `gorm:"column:discount;type:numeric(10,2);not null;default:0" json:"discount"`
	BaseCost           float64                  `gorm:"column:base_cost;type:numeric(10,2);not null" json:"baseCost"`
	AddonsTotal        float64                  `gorm:"column:addons_total;type:numeric(10,2);not null" json:"addonsTotal"`
	Subtotal           float64                  `gorm:"column:subtotal;type:numeric(10,2);not null" json:"subtotal"`
	GST                float64                  `gorm:"column:gst;type:numeric(10,2);not null" json:"gst"`
	Total              float64                  `gorm:"column:total;type:numeric(10,2);not null" json:"total"`
	Status             enums.OrderStatus        `gorm:"column:status;type:text;not null;index" json:"status"`
	StatusHistory      []types.StatusEntry      `gorm:"column:status_history;type:jsonb;serializer:json" json:"statusHistory"`
	PaymentStatus      enums.PaymentStatus      `gorm:"column:payment_status;type:text;not null" json:"paymentStatus"`
	QRCode             string                   `gorm:"column:qr_code;not null;default:''" json:"qrCode"`
	TrackingURL        string                   `gorm:"column:tracking_url;not null" json:"trackingUrl"`
	ItemsConfirmed     bool                     `gorm:"column:items_confirmed;not null;default:false" json:"itemsConfirmed"`
	ConfirmedItems     json.RawMessage          `gorm:"column:confirmed_items;type:jsonb" json:"confirmedItems,omitempty"`
	DriverID           *uuid.UUID               `gorm:"column:driver_id;type:uuid" json:"driverId,omitempty"`
	DriverName         *string                  `gorm:"column:driver_name" json:"driverName,omitempty"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime;index" json:"createdAt"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// OwnedBy reports whether the registered user owns the order.
func (o *Order) OwnedBy(userID uuid.UUID) bool {
	return o != nil && o.UserID != nil && *o.UserID == userID
}
