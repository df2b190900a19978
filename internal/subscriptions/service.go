package subscriptions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/freshfold/laundry-backend/internal/catalog"
	"github.com/freshfold/laundry-backend/pkg/db/models"
	"github.com/freshfold/laundry-backend/pkg/enums"
	pkgerrors "github.com/freshfold/laundry-backend/pkg/errors"
	"github.com/freshfold/laundry-backend/pkg/logger"
	"github.com/freshfold/laundry-backend/pkg/outbox"
	"github.com/freshfold/laundry-backend/pkg/outbox/payloads"
	"github.com/freshfold/laundry-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserSummaryWriter keeps the copy of the subscription stored on the user.
type UserSummaryWriter interface {
	UpdateSubscription(ctx context.Context, id uuid.UUID, summary *types.SubscriptionSummary) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// SubscribeInput starts a plan.
type SubscribeInput struct {
	PlanID string `json:"planId" validate:"required"`
}

// MutateInput is a lifecycle action on the current subscription.
type MutateInput struct {
	Action string `json:"action" validate:"required,oneof=pause resume cancel upgrade"`
	PlanID string `json:"planId"`
}

// Service defines the subscription lifecycle surface.
type Service interface {
	Subscribe(ctx context.Context, actor types.Actor, input SubscribeInput) (*models.Subscription, error)
	Current(ctx context.Context, actor types.Actor) (*models.Subscription, error)
	Mutate(ctx context.Context, actor types.Actor, input MutateInput) (*models.Subscription, error)
}

// ServiceParams groups dependencies for the subscription service.
type ServiceParams struct {
	Repo Repository
	// Users binds the summary writer to the running transaction.
	Users             func(tx *gorm.DB) UserSummaryWriter
	Outbox            outboxPublisher
	TransactionRunner txRunner
	Logger            *logger.Logger
	Now               func() time.Time
}

type service struct {
	repo     Repository
	users    func(tx *gorm.DB) UserSummaryWriter
	outbox   outboxPublisher
	txRunner txRunner
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds a subscription service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("subscription repo required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user summary writer required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.TransactionRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:     params.Repo,
		users:    params.Users,
		outbox:   params.Outbox,
		txRunner: params.TransactionRunner,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) Subscribe(ctx context.Context, actor types.Actor, input SubscribeInput) (*models.Subscription, error) {
	if !actor.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized")
	}
	plan, ok := catalog.FindPlan(strings.TrimSpace(input.PlanID))
	if !ok {
		return nil, pkgerrors.NewReason(pkgerrors.CodeValidation, pkgerrors.ReasonInvalidPlan, "Invalid plan")
	}

	var created *models.Subscription
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindCurrent(ctx, actor.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
		}
		if existing != nil {
			return pkgerrors.NewReason(pkgerrors.CodeConflict, pkgerrors.ReasonSubscriptionExists, "You already have a subscription")
		}

		sub := &models.Subscription{
			UserID: actor.UserID,
			Status: enums.SubscriptionStatusActive,
		}
		applyPlan(sub, plan)
		if err := repo.Create(ctx, sub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription")
		}
		if err := s.sync(ctx, tx, sub); err != nil {
			return err
		}
		created = sub
		return s.emit(ctx, tx, actor, sub, "subscribe")
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Current(ctx context.Context, actor types.Actor) (*models.Subscription, error) {
	if !actor.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized")
	}
	sub, err := s.repo.FindCurrent(ctx, actor.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	return sub, nil
}

func (s *service) Mutate(ctx context.Context, actor types.Actor, input MutateInput) (*models.Subscription, error) {
	if !actor.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized")
	}
	action, err := enums.ParseSubscriptionAction(strings.TrimSpace(input.Action))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid action")
	}

	var updated *models.Subscription
	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sub, err := repo.FindCurrent(ctx, actor.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
		}
		if sub == nil {
			return pkgerrors.NewReason(pkgerrors.CodeNotFound, pkgerrors.ReasonNoActiveSubscription, "No active subscription")
		}

		var target catalog.Plan
		if action == enums.SubscriptionActionUpgrade {
			plan, ok := catalog.FindPlan(strings.TrimSpace(input.PlanID))
			if !ok {
				return pkgerrors.NewReason(pkgerrors.CodeValidation, pkgerrors.ReasonInvalidPlan, "Invalid plan")
			}
			target = plan
		}

		now := s.now()
		switch action {
		case enums.SubscriptionActionPause:
			sub.Status = enums.SubscriptionStatusPaused
			sub.PausedAt = &now
		case enums.SubscriptionActionResume:
			sub.Status = enums.SubscriptionStatusActive
			sub.PausedAt = nil
		case enums.SubscriptionActionCancel:
			sub.Status = enums.SubscriptionStatusCancelled
			sub.CancelledAt = &now
		case enums.SubscriptionActionUpgrade:
			applyPlan(sub, target)
		}

		if err := repo.Save(ctx, sub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save subscription")
		}
		if err := s.sync(ctx, tx, sub); err != nil {
			return err
		}
		updated = sub
		return s.emit(ctx, tx, actor, sub, string(action))
	})
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"subscription_id": updated.ID.String(),
			"action":          string(action),
		})
		s.logg.Info(logCtx, "subscription updated")
	}
	return updated, nil
}

// sync writes the user's denormalized summary; cancelled clears it.
func (s *service) sync(ctx context.Context, tx *gorm.DB, sub *models.Subscription) error {
	var summary *types.SubscriptionSummary
	if sub.Status != enums.SubscriptionStatusCancelled {
		summary = &types.SubscriptionSummary{
			PlanID:   sub.PlanID,
			PlanName: sub.PlanName,
			Status:   string(sub.Status),
		}
	}
	if err := s.users(tx).UpdateSubscription(ctx, sub.UserID, summary); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sync user subscription")
	}
	return nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, actor types.Actor, sub *models.Subscription, action string) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventSubscriptionChanged,
		AggregateType: enums.AggregateSubscription,
		AggregateID:   sub.ID,
		Actor:         &outbox.ActorRef{UserID: actor.UserIDPtr(), Role: string(actor.Role)},
		Data: payloads.SubscriptionChangedEvent{
			SubscriptionID: sub.ID,
			UserID:         sub.UserID,
			PlanID:         sub.PlanID,
			Status:         string(sub.Status),
			Action:         action,
		},
	})
}

// applyPlan snapshots the plan's price and limits; status is untouched.
func applyPlan(sub *models.Subscription, plan catalog.Plan) {
	sub.PlanID = plan.ID
	sub.PlanName = plan.Name
	sub.Price = plan.Price
	sub.PickupsPerMonth = plan.PickupsPerMonth
	sub.MaxWeightKg = plan.MaxWeightKg
}
