package payments

import (
	"net/http"
	"net/url"

	"github.com/careerforge/careerforge-backend/internal/payments"
	"github.com/careerforge/careerforge-backend/pkg/config"
	"github.com/careerforge/careerforge-backend/pkg/enums"
	"github.com/careerforge/careerforge-backend/pkg/gateway"
)

const (
	reasonMissingToken     = "missing_token"
	reasonInvalidToken     = "invalid_token"
	reasonMissingOrderID   = "missing_order_id"
	reasonPaymentNotFound  = "payment_not_found"
	reasonProcessingFailed = "processing_error"
	reasonPaymentFailed    = "payment_failed"
)

func successRedirectURL(cfg config.GatewayConfig, payload *gateway.TokenPayload, status string) string {
	q := url.Values{}
	q.Set("txnId", payload.MerchantTxnID)
	q.Set("amount", payload.Amount.StringFixed(2))
	q.Set("status", status)
	q.Set("gid", payload.GID)
	q.Set("paymentMethod", payload.PaymentMethod)
	return cfg.SuccessPath + "?" + q.Encode()
}

func failureRedirectURL(cfg config.GatewayConfig, reason, txnID string) string {
	q := url.Values{}
	q.Set("reason", reason)
	q.Set("txnId", txnID)
	return cfg.FailurePath + "?" + q.Encode()
}

// redirectForResult maps a reconciliation result onto the browser-facing
// success or failure page. The redirect reflects what the store says about
// the payment, not just what the token claimed.
func redirectForResult(w http.ResponseWriter, r *http.Request, cfg config.GatewayConfig, payload *gateway.TokenPayload, result *payments.Result) {
	switch result.Outcome {
	case payments.OutcomeRejected:
		http.Redirect(w, r, failureRedirectURL(cfg, reasonMissingOrderID, payload.MerchantTxnID), http.StatusFound)
	case payments.OutcomeNotFound:
		http.Redirect(w, r, failureRedirectURL(cfg, reasonPaymentNotFound, payload.MerchantTxnID), http.StatusFound)
	default:
		if result.Status == enums.PaymentStatusSuccess {
			http.Redirect(w, r, successRedirectURL(cfg, payload, string(result.Status)), http.StatusFound)
			return
		}
		reason := payload.FailureReason
		if reason == "" {
			reason = reasonPaymentFailed
		}
		http.Redirect(w, r, failureRedirectURL(cfg, reason, payload.MerchantTxnID), http.StatusFound)
	}
}
