package payments

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/careerforge/careerforge-backend/pkg/db/models"
	"github.com/careerforge/careerforge-backend/pkg/enums"
	pkgerrors "github.com/careerforge/careerforge-backend/pkg/errors"
	"github.com/careerforge/careerforge-backend/pkg/pagination"
	"github.com/careerforge/careerforge-backend/pkg/types"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for payment rows.
type Repository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByGatewayOrderID(ctx context.Context, gid string) (*models.Payment, error)
	TransitionFromPending(ctx context.Context, gid string, next enums.PaymentStatus, failureReason *string, metadata types.PaymentMetadata) (bool, error)
	ArchiveChannelRaw(ctx context.Context, gid string, channel enums.Channel, raw json.RawMessage) error
	ListPendingOlderThan(ctx context.Context, cutoff time.Time, params ListPendingParams) ([]models.Payment, *pagination.Cursor, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a payments repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// ListPendingParams configures the long-pending payments query.
type ListPendingParams struct {
	Limit  int
	Cursor *pagination.Cursor
}

func (r *repositoryImpl) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// FindByGatewayOrderID returns nil without error when no payment matches:
// the gateway may reference ids we never issued (retries, test pings) and
// that is not a store failure.
func (r *repositoryImpl) FindByGatewayOrderID(ctx context.Context, gid string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("gateway_order_id = ?", gid).
		First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// TransitionFromPending performs the terminal state transition as a single
// conditional write: the row is updated only while its status is still
// PENDING. The boolean result reports whether this caller won the
// transition; a false result means another delivery got there first and the
// caller must not materialize purchases or send notifications.
func (r *repositoryImpl) TransitionFromPending(ctx context.Context, gid string, next enums.PaymentStatus, failureReason *string, metadata types.PaymentMetadata) (bool, error) {
	if !enums.PaymentStatusPending.CanTransitionTo(next) {
		return false, pkgerrors.New(pkgerrors.CodeStateConflict, "payment status must move to a terminal state")
	}

	updates := map[string]any{
		"status":     next,
		"metadata":   metadata,
		"updated_at": time.Now().UTC(),
	}
	if failureReason != nil {
		updates["failure_reason"] = *failureReason
	}

	result := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("gateway_order_id = ? AND status = ?", gid, enums.PaymentStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ArchiveChannelRaw merges one channel's decoded payload into its named
// metadata sub-field without touching status. Used by the channel that lost
// the transition so both channels' evidence is retained.
func (r *repositoryImpl) ArchiveChannelRaw(ctx context.Context, gid string, channel enums.Channel, raw json.RawMessage) error {
	payment, err := r.FindByGatewayOrderID(ctx, gid)
	if err != nil {
		return err
	}
	if payment == nil {
		return nil
	}

	metadata := payment.Metadata
	metadata.SetChannelRaw(channel, raw)

	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", payment.ID).
		UpdateColumn("metadata", metadata).Error
}

// ListPendingOlderThan pages through payments stuck in PENDING since before
// the cutoff, newest first.
func (r *repositoryImpl) ListPendingOlderThan(ctx context.Context, cutoff time.Time, params ListPendingParams) ([]models.Payment, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("status = ? AND created_at < ?", enums.PaymentStatusPending, cutoff)
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var payments []models.Payment
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&payments).Error; err != nil {
		return nil, nil, err
	}

	if len(payments) > normalized {
		payments = payments[:normalized]
		last := payments[len(payments)-1]
		return payments, &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}, nil
	}
	return payments, nil, nil
}
