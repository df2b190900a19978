package complaints

import (
	"context"
	"errors"

	"github.com/freshfold/laundry-backend/pkg/db/models"
	"github.com/freshfold/laundry-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists complaint tickets.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, complaint *models.Complaint) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error)
	List(ctx context.Context, userID *uuid.UUID) ([]models.Complaint, error)
	Save(ctx context.Context, complaint *models.Complaint) error
	CountByStatus(ctx context.Context, status enums.ComplaintStatus) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, complaint *models.Complaint) error {
	if complaint.ID == uuid.Nil {
		complaint.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(complaint).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&complaint).Error; err != nil {
		return nil, err
	}
	return &complaint, nil
}

// List returns tickets newest first; a nil userID lists every ticket.
func (r *repository) List(ctx context.Context, userID *uuid.UUID) ([]models.Complaint, error) {
	query := r.db.WithContext(ctx).Model(&models.Complaint{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	var out []models.Complaint
	err := query.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *repository) Save(ctx context.Context, complaint *models.Complaint) error {
	return r.db.WithContext(ctx).Save(complaint).Error
}

func (r *repository) CountByStatus(ctx context.Context, status enums.ComplaintStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Complaint{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
