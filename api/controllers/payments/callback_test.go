package payments

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	paymentsvc "github.com/careerforge/careerforge-backend/internal/payments"
	"github.com/careerforge/careerforge-backend/pkg/config"
	"github.com/careerforge/careerforge-backend/pkg/enums"
	"github.com/careerforge/careerforge-backend/pkg/gateway"
)

type fakeReconcileService struct {
	result      *paymentsvc.Result
	err         error
	calls       int
	lastChannel enums.Channel
	lastPayload *gateway.TokenPayload
}

func (f *fakeReconcileService) Reconcile(ctx context.Context, payload *gateway.TokenPayload, channel enums.Channel) (*paymentsvc.Result, error) {
	f.calls++
	f.lastChannel = channel
	f.lastPayload = payload
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func testGatewayConfig() config.GatewayConfig {
	return config.GatewayConfig{
		SuccessPath: "/services/payment/success",
		FailurePath: "/services/payment/failure",
	}
}

func buildGatewayToken(t *testing.T, fields map[string]any) string {
	t.Helper()

	payload, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal token payload: %v", err)
	}
	return "hdr." + base64.RawURLEncoding.EncodeToString(payload)
}

func redirectLocation(t *testing.T, rec *httptest.ResponseRecorder) *url.URL {
	t.Helper()

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d (%s)", rec.Code, rec.Body.String())
	}
	location, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse redirect location: %v", err)
	}
	return location
}

func TestCallbackSuccessRedirect(t *testing.T) {
	service := &fakeReconcileService{
		result: &paymentsvc.Result{Outcome: paymentsvc.OutcomeSuccess, Status: enums.PaymentStatusSuccess},
	}
	handler := Callback(service, testGatewayConfig(), nil)

	token := buildGatewayToken(t, map[string]any{
		"gid":           "gid-1",
		"status":        "SENT_FOR_CAPTURE",
		"merchantTxnId": "txn-7",
		"totalAmount":   "199.00",
		"paymentMethod": "CARD",
	})
	form := url.Values{"token": []string{token}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	location := redirectLocation(t, rec)
	if location.Path != "/services/payment/success" {
		t.Fatalf("expected success path, got %s", location.Path)
	}
	q := location.Query()
	if q.Get("txnId") != "txn-7" {
		t.Fatalf("unexpected txnId %q", q.Get("txnId"))
	}
	if q.Get("amount") != "199.00" {
		t.Fatalf("unexpected amount %q", q.Get("amount"))
	}
	if q.Get("status") != "SUCCESS" {
		t.Fatalf("unexpected status %q", q.Get("status"))
	}
	if q.Get("gid") != "gid-1" {
		t.Fatalf("unexpected gid %q", q.Get("gid"))
	}
	if q.Get("paymentMethod") != "CARD" {
		t.Fatalf("unexpected paymentMethod %q", q.Get("paymentMethod"))
	}
	if service.lastChannel != enums.ChannelCallback {
		t.Fatalf("expected callback channel, got %s", service.lastChannel)
	}
}

func TestCallbackFailureRedirect(t *testing.T) {
	service := &fakeReconcileService{
		result: &paymentsvc.Result{Outcome: paymentsvc.OutcomeFailed, Status: enums.PaymentStatusFailed},
	}
	handler := Callback(service, testGatewayConfig(), nil)

	token := buildGatewayToken(t, map[string]any{
		"gid":           "gid-2",
		"status":        "FAILED",
		"merchantTxnId": "txn-8",
		"failureReason": "card declined",
	})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/callback?token="+url.QueryEscape(token), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	location := redirectLocation(t, rec)
	if location.Path != "/services/payment/failure" {
		t.Fatalf("expected failure path, got %s", location.Path)
	}
	q := location.Query()
	if q.Get("reason") != "card declined" {
		t.Fatalf("unexpected reason %q", q.Get("reason"))
	}
	if q.Get("txnId") != "txn-8" {
		t.Fatalf("unexpected txnId %q", q.Get("txnId"))
	}
}

func TestCallbackAlreadyTerminalSuccessRedirectsToSuccess(t *testing.T) {
	service := &fakeReconcileService{
		result: &paymentsvc.Result{Outcome: paymentsvc.OutcomeAlreadyTerminal, Status: enums.PaymentStatusSuccess},
	}
	handler := Callback(service, testGatewayConfig(), nil)

	token := buildGatewayToken(t, map[string]any{
		"gid":           "gid-3",
		"status":        "SUCCESS",
		"merchantTxnId": "txn-9",
		"amount":        "50.00",
	})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/callback?token="+url.QueryEscape(token), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	location := redirectLocation(t, rec)
	if location.Path != "/services/payment/success" {
		t.Fatalf("expected success path for replayed success, got %s", location.Path)
	}
}

func TestCallbackMissingToken(t *testing.T) {
	service := &fakeReconcileService{}
	handler := Callback(service, testGatewayConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	location := redirectLocation(t, rec)
	if location.Query().Get("reason") != "missing_token" {
		t.Fatalf("unexpected reason %q", location.Query().Get("reason"))
	}
	if service.calls != 0 {
		t.Fatalf("service should not run without a token")
	}
}

func TestCallbackInvalidToken(t *testing.T) {
	service := &fakeReconcileService{}
	handler := Callback(service, testGatewayConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/callback?token=one-segment-only", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	location := redirectLocation(t, rec)
	if location.Query().Get("reason") != "invalid_token" {
		t.Fatalf("unexpected reason %q", location.Query().Get("reason"))
	}
	if service.calls != 0 {
		t.Fatalf("service should not run on malformed token")
	}
}

func TestCallbackServiceErrorStillRedirects(t *testing.T) {
	service := &fakeReconcileService{err: errors.New("db down")}
	handler := Callback(service, testGatewayConfig(), nil)

	token := buildGatewayToken(t, map[string]any{
		"gid":           "gid-4",
		"merchantTxnId": "txn-10",
	})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/callback?token="+url.QueryEscape(token), nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	location := redirectLocation(t, rec)
	q := location.Query()
	if q.Get("reason") != "processing_error" {
		t.Fatalf("unexpected reason %q", q.Get("reason"))
	}
	if q.Get("txnId") != "txn-10" {
		t.Fatalf("unexpected txnId %q", q.Get("txnId"))
	}
}

func TestCallbackJSONBodyToken(t *testing.T) {
	service := &fakeReconcileService{
		result: &paymentsvc.Result{Outcome: paymentsvc.OutcomeNotFound},
	}
	handler := Callback(service, testGatewayConfig(), nil)

	token := buildGatewayToken(t, map[string]any{"gid": "gid-5", "merchantTxnId": "txn-11"})
	body, _ := json.Marshal(map[string]string{"token": token})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/callback", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	location := redirectLocation(t, rec)
	if location.Query().Get("reason") != "payment_not_found" {
		t.Fatalf("unexpected reason %q", location.Query().Get("reason"))
	}
	if service.calls != 1 {
		t.Fatalf("expected service called once, got %d", service.calls)
	}
	if service.lastPayload.GID != "gid-5" {
		t.Fatalf("unexpected gid %q", service.lastPayload.GID)
	}
}
