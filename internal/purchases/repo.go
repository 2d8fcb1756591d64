package purchases

import (
	"context"

	"github.com/careerforge/careerforge-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for purchase rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CountByPaymentID(ctx context.Context, paymentID uuid.UUID) (int64, error)
	CreateBatch(ctx context.Context, purchases []models.Purchase) error
	ListByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]models.Purchase, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a purchases repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CountByPaymentID(ctx context.Context, paymentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("payment_id = ?", paymentID).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) CreateBatch(ctx context.Context, purchases []models.Purchase) error {
	if len(purchases) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&purchases).Error
}

func (r *repositoryImpl) ListByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]models.Purchase, error) {
	var rows []models.Purchase
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}
