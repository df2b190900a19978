package payments

import (
	"context"
	"errors"
	"time"

	"github.com/freshfold/laundry-backend/pkg/db/models"
	"github.com/freshfold/laundry-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists payment transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, txn *models.PaymentTransaction) error
	Save(ctx context.Context, txn *models.PaymentTransaction) error
	FindBySessionID(ctx context.Context, sessionID string) (*models.PaymentTransaction, error)
	FindBySessionIDForUpdate(ctx context.Context, sessionID string) (*models.PaymentTransaction, error)
	ListStale(ctx context.Context, status enums.PaymentStatus, before time.Time, limit int) ([]models.PaymentTransaction, error)
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

func (r *repository) Create(ctx context.Context, txn *models.PaymentTransaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) Save(ctx context.Context, txn *models.PaymentTransaction) error {
	return r.db.WithContext(ctx).Save(txn).Error
}

func (r *repository) FindBySessionID(ctx context.Context, sessionID string) (*models.PaymentTransaction, error) {
	var txn models.PaymentTransaction
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// FindBySessionIDForUpdate locks the row on dialects that support it.
func (r *repository) FindBySessionIDForUpdate(ctx context.Context, sessionID string) (*models.PaymentTransaction, error) {
	query := r.db.WithContext(ctx)
	if query.Dialector != nil && query.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var txn models.PaymentTransaction
	if err := query.Where("session_id = ?", sessionID).First(&txn).Error; err != nil {
		return nil, err
	}
	return &txn, nil
}

// ListStale returns transactions still in status created before the cutoff,
// oldest first. Rows without a session are skipped.
func (r *repository) ListStale(ctx context.Context, status enums.PaymentStatus, before time.Time, limit int) ([]models.PaymentTransaction, error) {
	query := r.db.WithContext(ctx).
		Where("payment_status = ? AND session_id IS NOT NULL AND created_at < ?", status, before).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var out []models.PaymentTransaction
	err := query.Find(&out).Error
	return out, err
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
