package payments

import (
	"context"
	"net/http"

	"github.com/careerforge/careerforge-backend/api/responses"
	"github.com/careerforge/careerforge-backend/pkg/config"
	"github.com/careerforge/careerforge-backend/pkg/enums"
	pkgerrors "github.com/careerforge/careerforge-backend/pkg/errors"
	"github.com/careerforge/careerforge-backend/pkg/gateway"
	"github.com/careerforge/careerforge-backend/pkg/logger"
)

type webhookGuard interface {
	CheckAndMark(ctx context.Context, fingerprint string) (bool, error)
	Delete(ctx context.Context, fingerprint string) error
}

type webhookAck struct {
	Received bool `json:"received"`
}

// Webhook handles server-to-server confirmations from the payment gateway.
// The gateway retries until it sees a 2xx, so every handled delivery is
// acknowledged with {"received": true}, including redundant ones. Callers
// that accept text/html get the browser redirect treatment instead, which
// lets the gateway point both channels at this endpoint.
func Webhook(svc ReconcileService, guard webhookGuard, fingerprint func(string) string, cfg config.GatewayConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reconciliation service unavailable"))
			return
		}
		if fingerprint == nil {
			fingerprint = func(string) string { return "" }
		}
		asBrowser := wantsHTML(r)

		token := tokenFromRequest(r)
		if token == "" {
			if asBrowser {
				http.Redirect(w, r, failureRedirectURL(cfg, reasonMissingToken, ""), http.StatusFound)
				return
			}
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "gateway token missing"))
			return
		}

		payload, err := gateway.DecodeToken(token)
		if err != nil {
			if asBrowser {
				http.Redirect(w, r, failureRedirectURL(cfg, reasonInvalidToken, ""), http.StatusFound)
				return
			}
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode gateway token"))
			return
		}

		// Dedup only applies to the machine channel: redundant browser hits
		// still need a real redirect, and the conditional status update keeps
		// them harmless.
		fp := ""
		if guard != nil && !asBrowser {
			fp = fingerprint(token)
			alreadyProcessed, err := guard.CheckAndMark(ctx, fp)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check webhook idempotency"))
				return
			}
			if alreadyProcessed {
				if logg != nil {
					logg.Info(ctx, "webhook delivery already processed, acknowledging")
				}
				responses.WriteJSON(w, http.StatusOK, webhookAck{Received: true})
				return
			}
		}

		result, err := svc.Reconcile(ctx, payload, enums.ChannelWebhook)
		if err != nil {
			if guard != nil && fp != "" {
				// Unmark so the gateway's retry gets another attempt.
				if delErr := guard.Delete(ctx, fp); delErr != nil && logg != nil {
					logg.Error(ctx, "release webhook idempotency key", delErr)
				}
			}
			if asBrowser {
				if logg != nil {
					logg.Error(ctx, "reconcile webhook delivery", err)
				}
				http.Redirect(w, r, failureRedirectURL(cfg, reasonProcessingFailed, payload.MerchantTxnID), http.StatusFound)
				return
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if asBrowser {
			redirectForResult(w, r, cfg, payload, result)
			return
		}
		responses.WriteJSON(w, http.StatusOK, webhookAck{Received: true})
	}
}
