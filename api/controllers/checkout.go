package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/careerforge/careerforge-backend/api/responses"
	"github.com/careerforge/careerforge-backend/api/validators"
	checkoutsvc "github.com/careerforge/careerforge-backend/internal/checkout"
	pkgerrors "github.com/careerforge/careerforge-backend/pkg/errors"
	"github.com/careerforge/careerforge-backend/pkg/logger"
	"github.com/careerforge/careerforge-backend/pkg/types"
)

// Checkout opens a payment session for the submitted cart and returns the
// gateway redirect the frontend sends the browser to.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Initiate(r.Context(), checkoutsvc.InitiateParams{
			UserID:   payload.UserID,
			Currency: payload.Currency,
			Customer: payload.Customer,
			Cart:     payload.Cart,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			PaymentID:   result.PaymentID,
			GID:         result.GID,
			RedirectURL: result.RedirectURL,
			Amount:      result.Amount,
		})
	}
}

type checkoutRequest struct {
	UserID   uuid.UUID          `json:"user_id" validate:"required,uuid4"`
	Currency string             `json:"currency,omitempty" validate:"omitempty,len=3"`
	Customer types.CustomerInfo `json:"customer" validate:"required"`
	Cart     []types.CartLine   `json:"cart" validate:"required,min=1,dive"`
}

type checkoutResponse struct {
	PaymentID   uuid.UUID       `json:"payment_id"`
	GID         string          `json:"gid"`
	RedirectURL string          `json:"redirect_url"`
	Amount      decimal.Decimal `json:"amount"`
}
