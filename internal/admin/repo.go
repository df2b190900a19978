package admin

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/freshfold/laundry-backend/pkg/db/models"
	"github.com/freshfold/laundry-backend/pkg/enums"
)

// PaidOrder is the slice of an order needed for revenue rollups.
type PaidOrder struct {
	Total     float64
	CreatedAt time.Time
}

// Repository runs the read-only aggregates behind the dashboard.
type Repository interface {
	CountOrders(ctx context.Context, orderType enums.OrderType) (int64, error)
	PaidRevenue(ctx context.Context) (float64, error)
	PaidOrdersSince(ctx context.Context, since time.Time) ([]PaidOrder, error)
	RecentOrders(ctx context.Context, limit int) ([]models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds the stats repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CountOrders counts every order, or only those of orderType when set.
func (r *repository) CountOrders(ctx context.Context, orderType enums.OrderType) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if orderType != "" {
		query = query.Where("type = ?", orderType)
	}
	var n int64
	err := query.Count(&n).Error
	return n, err
}

func (r *repository) PaidRevenue(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("payment_status = ?", enums.PaymentStatusPaid).
		Select("COALESCE(SUM(total), 0)").
		Scan(&total).Error
	return total, err
}

func (r *repository) PaidOrdersSince(ctx context.Context, since time.Time) ([]PaidOrder, error) {
	var rows []PaidOrder
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("total, created_at").
		Where("payment_status = ? AND created_at >= ?", enums.PaymentStatusPaid, since).
		Order("created_at DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}
