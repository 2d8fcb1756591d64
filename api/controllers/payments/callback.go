package payments

import (
	"context"
	"net/http"

	"github.com/careerforge/careerforge-backend/internal/payments"
	"github.com/careerforge/careerforge-backend/pkg/config"
	"github.com/careerforge/careerforge-backend/pkg/enums"
	"github.com/careerforge/careerforge-backend/pkg/gateway"
	"github.com/careerforge/careerforge-backend/pkg/logger"
)

// ReconcileService is the reconciliation surface the channel adapters need.
type ReconcileService interface {
	Reconcile(ctx context.Context, payload *gateway.TokenPayload, channel enums.Channel) (*payments.Result, error)
}

// Callback handles the browser return leg from the payment gateway. The
// customer is mid-redirect, so every path ends in a 302 to a result page;
// errors are logged, never rendered.
func Callback(svc ReconcileService, cfg config.GatewayConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			if logg != nil {
				logg.Warn(ctx, "callback received with no reconciliation service wired")
			}
			http.Redirect(w, r, failureRedirectURL(cfg, reasonProcessingFailed, ""), http.StatusFound)
			return
		}

		token := tokenFromRequest(r)
		if token == "" {
			if logg != nil {
				logg.Warn(ctx, "callback carried no gateway token")
			}
			http.Redirect(w, r, failureRedirectURL(cfg, reasonMissingToken, ""), http.StatusFound)
			return
		}

		payload, err := gateway.DecodeToken(token)
		if err != nil {
			if logg != nil {
				logg.Error(ctx, "decode callback token", err)
			}
			http.Redirect(w, r, failureRedirectURL(cfg, reasonInvalidToken, ""), http.StatusFound)
			return
		}

		result, err := svc.Reconcile(ctx, payload, enums.ChannelCallback)
		if err != nil {
			if logg != nil {
				logg.Error(ctx, "reconcile callback delivery", err)
			}
			http.Redirect(w, r, failureRedirectURL(cfg, reasonProcessingFailed, payload.MerchantTxnID), http.StatusFound)
			return
		}

		redirectForResult(w, r, cfg, payload, result)
	}
}
