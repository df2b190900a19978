package complaints

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freshfold/laundry-backend/pkg/db"
	"github.com/freshfold/laundry-backend/pkg/db/models"
	"github.com/freshfold/laundry-backend/pkg/enums"
	pkgerrors "github.com/freshfold/laundry-backend/pkg/errors"
	"github.com/freshfold/laundry-backend/pkg/logger"
	"github.com/freshfold/laundry-backend/pkg/outbox"
	"github.com/freshfold/laundry-backend/pkg/outbox/payloads"
	"github.com/freshfold/laundry-backend/pkg/tracking"
	"github.com/freshfold/laundry-backend/pkg/types"
)

const (
	guestName         = "Guest"
	maxTicketAttempts = 3
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CreateInput opens a ticket.
type CreateInput struct {
	OrderID     *uuid.UUID `json:"orderId"`
	Category    string     `json:"category" validate:"required"`
	Description string     `json:"description" validate:"required,max=4000"`
	PhotoURL    *string    `json:"photoUrl" validate:"omitempty,url"`
	GuestName   *string    `json:"guestName"`
	GuestEmail  *string    `json:"guestEmail" validate:"omitempty,email"`
}

// UpdateInput is an admin's partial update; absent fields are untouched.
type UpdateInput struct {
	Status       *string  `json:"status"`
	Resolution   *string  `json:"resolution"`
	RefundAmount *float64 `json:"refundAmount" validate:"omitempty,gte=0"`
	AdminNote    *string  `json:"adminNote"`
}

// Service is the complaint ticketing surface.
type Service interface {
	Create(ctx context.Context, actor types.Actor, input CreateInput) (*models.Complaint, error)
	List(ctx context.Context, actor types.Actor) ([]models.Complaint, error)
	Update(ctx context.Context, actor types.Actor, id uuid.UUID, input UpdateInput) (*models.Complaint, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	logg   *logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, tx txRunner, outboxPublisher outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("complaints repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxPublisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:   repo,
		tx:     tx,
		outbox: outboxPublisher,
		logg:   logg,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, actor types.Actor, input CreateInput) (*models.Complaint, error) {
	category, err := enums.ParseComplaintCategory(strings.TrimSpace(input.Category))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Category and description required")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Category and description required")
	}

	complaint := &models.Complaint{
		OrderID:     input.OrderID,
		UserID:      actor.UserIDPtr(),
		UserName:    submitterName(actor, input.GuestName),
		UserEmail:   submitterEmail(actor, input.GuestEmail),
		Category:    category,
		Description: description,
		PhotoURL:    input.PhotoURL,
		Status:      enums.ComplaintStatusOpen,
		AdminNotes:  []types.AdminNote{},
	}

	for attempt := 1; ; attempt++ {
		complaint.ID = uuid.New()
		complaint.TicketNumber = tracking.NewTicketNumber()
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			if err := s.repo.WithTx(tx).Create(ctx, complaint); err != nil {
				return err
			}
			return s.emit(ctx, tx, actor, enums.EventComplaintCreated, complaint)
		})
		if err == nil {
			break
		}
		if db.IsUniqueViolation(err, "") && attempt < maxTicketAttempts {
			continue
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create complaint")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "ticket", complaint.TicketNumber), "complaint submitted")
	}
	return complaint, nil
}

func submitterName(actor types.Actor, guest *string) string {
	if actor.Authenticated() && strings.TrimSpace(actor.Name) != "" {
		return actor.Name
	}
	if guest != nil && strings.TrimSpace(*guest) != "" {
		return strings.TrimSpace(*guest)
	}
	return guestName
}

func submitterEmail(actor types.Actor, guest *string) string {
	if actor.Authenticated() && strings.TrimSpace(actor.Email) != "" {
		return actor.Email
	}
	if guest != nil {
		return strings.TrimSpace(*guest)
	}
	return ""
}

func (s *service) List(ctx context.Context, actor types.Actor) ([]models.Complaint, error) {
	if !actor.Authenticated() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized")
	}
	var owner *uuid.UUID
	if !actor.IsAdmin() {
		owner = actor.UserIDPtr()
	}
	out, err := s.repo.List(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list complaints")
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, actor types.Actor, id uuid.UUID, input UpdateInput) (*models.Complaint, error) {
	if !actor.IsAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "Admin access required")
	}
	var status *enums.ComplaintStatus
	if input.Status != nil {
		parsed, err := enums.ParseComplaintStatus(strings.TrimSpace(*input.Status))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		status = &parsed
	}
	if input.RefundAmount != nil && *input.RefundAmount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refundAmount cannot be negative")
	}

	var updated *models.Complaint
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		complaint, err := repo.FindByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Complaint not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load complaint")
		}

		if status != nil {
			complaint.Status = *status
		}
		if input.Resolution != nil {
			resolution := strings.TrimSpace(*input.Resolution)
			complaint.Resolution = &resolution
		}
		if input.RefundAmount != nil {
			refund := *input.RefundAmount
			complaint.RefundAmount = &refund
		}
		if input.AdminNote != nil && strings.TrimSpace(*input.AdminNote) != "" {
			complaint.AdminNotes = append(complaint.AdminNotes, types.AdminNote{
				Note:      strings.TrimSpace(*input.AdminNote),
				Timestamp: s.now(),
				Admin:     actor.Name,
			})
		}

		if err := repo.Save(ctx, complaint); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save complaint")
		}
		updated = complaint
		return s.emit(ctx, tx, actor, enums.EventComplaintUpdated, complaint)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, actor types.Actor, eventType enums.OutboxEventType, complaint *models.Complaint) error {
	var ref *outbox.ActorRef
	if actor.Authenticated() {
		ref = &outbox.ActorRef{UserID: actor.UserIDPtr(), Role: string(actor.Role)}
	}
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateComplaint,
		AggregateID:   complaint.ID,
		Actor:         ref,
		Data: payloads.ComplaintEvent{
			ComplaintID:  complaint.ID,
			TicketNumber: complaint.TicketNumber,
			Category:     string(complaint.Category),
			Status:       string(complaint.Status),
		},
	})
}
