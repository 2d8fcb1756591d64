package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/careerforge/careerforge-backend/pkg/config"
	"github.com/careerforge/careerforge-backend/pkg/logger"
)

var (
	errBaseURLRequired = errors.New("gateway base url is required")
	errAPIKeyRequired  = errors.New("gateway api key is required")
)

// Client talks to the payment gateway's order API. Only checkout initiation
// uses it; reconciliation is driven entirely by inbound tokens.
type Client struct {
	baseURL    string
	apiKey     string
	merchantID string
	httpClient *http.Client
}

// NewClient validates the gateway configuration and returns a ready client.
func NewClient(ctx context.Context, cfg config.GatewayConfig, logg *logger.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("gateway client initialized (%s)", baseURL))
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		merchantID: strings.TrimSpace(cfg.MerchantID),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// CreateOrderRequest describes a checkout session to open with the gateway.
type CreateOrderRequest struct {
	MerchantTxnID string          `json:"merchantTxnId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	CustomerEmail string          `json:"customerEmail,omitempty"`
	CustomerName  string          `json:"customerName,omitempty"`
}

// CreateOrderResponse carries the gateway-assigned order id and the hosted
// payment page the browser should be redirected to.
type CreateOrderResponse struct {
	GID         string          `json:"gid"`
	RedirectURL string          `json:"redirectUrl"`
	Raw         json.RawMessage `json:"-"`
}

// CreateOrder opens a checkout session with the gateway.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.merchantID != "" {
		httpReq.Header.Set("X-Merchant-Id", c.merchantID)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gateway order request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gateway response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway order request failed: status %d: %s", resp.StatusCode, truncate(payload, 256))
	}

	var out CreateOrderResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	if out.GID == "" {
		return nil, errors.New("gateway response missing gid")
	}
	out.Raw = json.RawMessage(payload)
	return &out, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
