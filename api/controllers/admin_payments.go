package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/careerforge/careerforge-backend/api/responses"
	"github.com/careerforge/careerforge-backend/api/validators"
	paymentsvc "github.com/careerforge/careerforge-backend/internal/payments"
	"github.com/careerforge/careerforge-backend/pkg/db/models"
	pkgerrors "github.com/careerforge/careerforge-backend/pkg/errors"
	"github.com/careerforge/careerforge-backend/pkg/logger"
	"github.com/careerforge/careerforge-backend/pkg/pagination"
)

const defaultPendingAge = time.Hour

// AdminPendingPayments lists payments stuck in PENDING longer than the
// older_than window. These are sessions where neither delivery channel ever
// landed and an operator needs to chase the gateway.
func AdminPendingPayments(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		olderThan := defaultPendingAge
		if raw := strings.TrimSpace(r.URL.Query().Get("older_than")); raw != "" {
			parsed, err := time.ParseDuration(raw)
			if err != nil || parsed < 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "older_than must be a non-negative duration").WithDetails(map[string]any{"field": "older_than"}))
				return
			}
			olderThan = parsed
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var cursor *pagination.Cursor
		if raw := strings.TrimSpace(r.URL.Query().Get("cursor")); raw != "" {
			cursor, err = pagination.ParseCursor(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
				return
			}
		}

		rows, next, err := svc.ListPending(r.Context(), olderThan, paymentsvc.ListPendingParams{
			Limit:  limit,
			Cursor: cursor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPendingPaymentList(rows, next))
	}
}

type pendingPaymentList struct {
	Payments   []pendingPaymentResponse `json:"payments"`
	NextCursor string                   `json:"next_cursor,omitempty"`
}

type pendingPaymentResponse struct {
	PaymentID      uuid.UUID       `json:"payment_id"`
	GatewayOrderID string          `json:"gateway_order_id"`
	UserID         uuid.UUID       `json:"user_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}

func newPendingPaymentList(rows []models.Payment, next *pagination.Cursor) pendingPaymentList {
	list := pendingPaymentList{
		Payments: make([]pendingPaymentResponse, 0, len(rows)),
	}
	for _, row := range rows {
		list.Payments = append(list.Payments, pendingPaymentResponse{
			PaymentID:      row.ID,
			GatewayOrderID: row.GatewayOrderID,
			UserID:         row.UserID,
			Amount:         row.Amount,
			Currency:       row.Currency,
			Status:         row.Status.String(),
			CreatedAt:      row.CreatedAt,
		})
	}
	if next != nil {
		list.NextCursor = pagination.EncodeCursor(*next)
	}
	return list
}
