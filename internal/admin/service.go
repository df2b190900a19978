package admin

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/freshfold/laundry-backend/pkg/db/models"
	"github.com/freshfold/laundry-backend/pkg/enums"
	pkgerrors "github.com/freshfold/laundry-backend/pkg/errors"
	"github.com/freshfold/laundry-backend/pkg/types"
)

const (
	recentOrdersLimit = 10
	revenueMonths     = 12
	monthLayout       = "2006-01"
)

// Stats is the dashboard payload.
type Stats struct {
	TotalOrders         int64          `json:"totalOrders"`
	ActiveSubscriptions int64          `json:"activeSubscriptions"`
	OneOffOrders        int64          `json:"oneOffOrders"`
	OpenComplaints      int64          `json:"openComplaints"`
	TotalUsers          int64          `json:"totalUsers"`
	TotalRevenue        float64        `json:"totalRevenue"`
	RecentOrders        []models.Order `json:"recentOrders"`
	MonthlyRevenue      []MonthRevenue `json:"monthlyRevenue"`
}

// MonthRevenue sums paid orders created in one calendar month (UTC).
type MonthRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Count   int     `json:"count"`
}

type subscriptionCounter interface {
	CountByStatus(ctx context.Context, status enums.SubscriptionStatus) (int64, error)
}

type complaintCounter interface {
	CountByStatus(ctx context.Context, status enums.ComplaintStatus) (int64, error)
}

type userCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Service exposes admin-only reporting.
type Service interface {
	Stats(ctx context.Context, actor types.Actor) (*Stats, error)
}

type service struct {
	repo          Repository
	subscriptions subscriptionCounter
	complaints    complaintCounter
	users         userCounter
	now           func() time.Time
}

// NewService wires the dashboard aggregates.
func NewService(repo Repository, subscriptions subscriptionCounter, complaints complaintCounter, users userCounter) (Service, error) {
	if repo == nil || subscriptions == nil || complaints == nil || users == nil {
		return nil, fmt.Errorf("admin stats dependencies are required")
	}
	return &service{
		repo:          repo,
		subscriptions: subscriptions,
		complaints:    complaints,
		users:         users,
		now:           time.Now,
	}, nil
}

func (s *service) Stats(ctx context.Context, actor types.Actor) (*Stats, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Admin access required")
	}

	var (
		stats Stats
		err   error
	)
	if stats.TotalOrders, err = s.repo.CountOrders(ctx, ""); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count orders")
	}
	if stats.OneOffOrders, err = s.repo.CountOrders(ctx, enums.OrderTypeOneOff); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count one-off orders")
	}
	if stats.ActiveSubscriptions, err = s.subscriptions.CountByStatus(ctx, enums.SubscriptionStatusActive); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count subscriptions")
	}
	if stats.OpenComplaints, err = s.complaints.CountByStatus(ctx, enums.ComplaintStatusOpen); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count complaints")
	}
	if stats.TotalUsers, err = s.users.Count(ctx); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count users")
	}

	revenue, err := s.repo.PaidRevenue(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum revenue")
	}
	stats.TotalRevenue = decimal.NewFromFloat(revenue).Round(2).InexactFloat64()

	if stats.RecentOrders, err = s.repo.RecentOrders(ctx, recentOrdersLimit); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recent orders")
	}
	if stats.RecentOrders == nil {
		stats.RecentOrders = []models.Order{}
	}

	now := s.now().UTC()
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(revenueMonths - 1), 0)
	paid, err := s.repo.PaidOrdersSince(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load paid orders")
	}
	stats.MonthlyRevenue = RollupMonthly(paid)
	return &stats, nil
}

// RollupMonthly groups paid orders by UTC month, newest month first.
func RollupMonthly(paid []PaidOrder) []MonthRevenue {
	sums := map[string]decimal.Decimal{}
	counts := map[string]int{}
	for _, o := range paid {
		month := o.CreatedAt.UTC().Format(monthLayout)
		sums[month] = sums[month].Add(decimal.NewFromFloat(o.Total))
		counts[month]++
	}

	out := make([]MonthRevenue, 0, len(sums))
	for month, sum := range sums {
		out = append(out, MonthRevenue{
			Month:   month,
			Revenue: sum.Round(2).InexactFloat64(),
			Count:   counts[month],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	if len(out) > revenueMonths {
		out = out[:revenueMonths]
	}
	return out
}
