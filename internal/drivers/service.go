package drivers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freshfold/laundry-backend/internal/orders"
	"github.com/freshfold/laundry-backend/pkg/db/models"
	"github.com/freshfold/laundry-backend/pkg/enums"
	pkgerrors "github.com/freshfold/laundry-backend/pkg/errors"
	"github.com/freshfold/laundry-backend/pkg/logger"
	"github.com/freshfold/laundry-backend/pkg/outbox"
	"github.com/freshfold/laundry-backend/pkg/outbox/payloads"
	"github.com/freshfold/laundry-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CreateInput registers a driver.
type CreateInput struct {
	Name    string   `json:"name" validate:"required,max=120"`
	Phone   string   `json:"phone" validate:"max=32"`
	Vehicle string   `json:"vehicle" validate:"max=120"`
	Zones   []string `json:"zones"`
}

// AssignInput names the driver taking an order.
type AssignInput struct {
	DriverID uuid.UUID `json:"driverId" validate:"required"`
}

// Service manages the roster and order assignment. Every call is admin-only.
type Service interface {
	Create(ctx context.Context, actor types.Actor, input CreateInput) (*models.Driver, error)
	List(ctx context.Context, actor types.Actor) ([]models.Driver, error)
	Assign(ctx context.Context, actor types.Actor, orderID uuid.UUID, input AssignInput) (*models.Order, error)
}

type service struct {
	repo   Repository
	orders orders.Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
}

func NewService(repo Repository, orderRepo orders.Repository, tx txRunner, outboxPublisher outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("drivers repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxPublisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, orders: orderRepo, tx: tx, outbox: outboxPublisher, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, actor types.Actor, input CreateInput) (*models.Driver, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Admin access required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	zones := make([]string, 0, len(input.Zones))
	for _, z := range input.Zones {
		if z = strings.TrimSpace(z); z != "" {
			zones = append(zones, z)
		}
	}
	driver := &models.Driver{
		Name:    name,
		Phone:   strings.TrimSpace(input.Phone),
		Vehicle: strings.TrimSpace(input.Vehicle),
		Zones:   zones,
		Status:  enums.DriverStatusAvailable,
	}
	if err := s.repo.Create(ctx, driver); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create driver")
	}
	return driver, nil
}

func (s *service) List(ctx context.Context, actor types.Actor) ([]models.Driver, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Admin access required")
	}
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list drivers")
	}
	return out, nil
}

// Assign puts the driver on the order and marks them on route.
func (s *service) Assign(ctx context.Context, actor types.Actor, orderID uuid.UUID, input AssignInput) (*models.Order, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Admin access required")
	}
	if input.DriverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "driverId is required")
	}

	var assigned *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		driverRepo := s.repo.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)

		driver, err := driverRepo.FindByID(ctx, input.DriverID)
		if err != nil {
			if isNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Driver not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
		}
		if err := orderRepo.AssignDriver(ctx, orderID, driver.ID, driver.Name); err != nil {
			if orders.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign driver")
		}
		if err := driverRepo.UpdateStatus(ctx, driver.ID, enums.DriverStatusOnRoute); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update driver status")
		}
		order, err := orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
		}
		assigned = order
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderDriverAssigned,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserIDPtr(), Role: string(actor.Role)},
			Data: payloads.OrderDriverAssignedEvent{
				OrderID:    order.ID,
				TrackingID: order.TrackingID,
				DriverID:   driver.ID,
				DriverName: driver.Name,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, orderID.String()), "driver assigned")
	}
	return assigned, nil
}
