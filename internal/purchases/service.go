package purchases

import (
	"context"

	"github.com/careerforge/careerforge-backend/pkg/db/models"
	"github.com/careerforge/careerforge-backend/pkg/enums"
	pkgerrors "github.com/careerforge/careerforge-backend/pkg/errors"
	"github.com/careerforge/careerforge-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service materializes purchase rows for successful payments. It is the
// second idempotency layer: even if two callers both believe they won the
// status transition, only one of them creates rows.
type Service interface {
	Materialize(ctx context.Context, payment *models.Payment, items []types.CartLine) (int, error)
}

type service struct {
	repo     Repository
	txRunner txRunner
}

// NewService wires purchase materialization dependencies.
func NewService(repo Repository, runner txRunner) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "purchases repository required")
	}
	if runner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &service{repo: repo, txRunner: runner}, nil
}

// Materialize creates one purchase per cart line, all referencing the
// payment. If any purchase already references the payment it is a no-op and
// returns zero. The count check and the inserts share one transaction.
func (s *service) Materialize(ctx context.Context, payment *models.Payment, items []types.CartLine) (int, error) {
	if payment == nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "payment required")
	}
	if len(items) == 0 {
		return 0, nil
	}

	created := 0
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		count, err := repo.CountByPaymentID(ctx, payment.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count existing purchases")
		}
		if count > 0 {
			return nil
		}

		rows := make([]models.Purchase, 0, len(items))
		for _, item := range items {
			paymentID := payment.ID
			rows = append(rows, models.Purchase{
				ID:        uuid.New(),
				UserID:    payment.UserID,
				PaymentID: &paymentID,
				ItemID:    item.ItemID,
				Name:      item.Name,
				Price:     item.Price,
				Type:      item.Type,
				Status:    enums.PurchaseStatusActive,
			})
		}
		if err := repo.CreateBatch(ctx, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchases")
		}
		created = len(rows)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
