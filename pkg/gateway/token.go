package gateway

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMalformedToken marks a gateway token that cannot be decoded: fewer than
// two dot-delimited segments, or a payload segment that is not valid
// base64url JSON.
var ErrMalformedToken = errors.New("malformed gateway token")

// TokenPayload is the decoded body of a gateway token. It lives for a single
// reconciliation attempt and is never persisted as-is; Raw carries the full
// payload verbatim for metadata archival.
type TokenPayload struct {
	GID           string
	Status        string
	MerchantTxnID string
	Amount        decimal.Decimal
	FailureReason string
	PaymentMethod string
	Raw           json.RawMessage
}

// DecodeToken parses a dot-delimited gateway token. The second segment is
// base64url JSON. Unknown fields are preserved in Raw; only gid (or the
// x-gl-gid alias) and status matter downstream.
func DecodeToken(raw string) (*TokenPayload, error) {
	segments := strings.Split(strings.TrimSpace(raw), ".")
	if len(segments) < 2 {
		return nil, fmt.Errorf("%w: expected at least 2 segments, got %d", ErrMalformedToken, len(segments))
	}

	decoded, err := decodeBase64URL(segments[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(decoded, &fields); err != nil {
		return nil, fmt.Errorf("%w: invalid payload JSON: %v", ErrMalformedToken, err)
	}

	payload := &TokenPayload{Raw: json.RawMessage(decoded)}
	payload.GID = firstString(fields, "gid", "x-gl-gid")
	payload.Status = firstString(fields, "status")
	payload.MerchantTxnID = firstString(fields, "merchantTxnId")
	payload.FailureReason = firstString(fields, "failureReason", "message")
	payload.PaymentMethod = firstString(fields, "paymentMethod")
	payload.Amount = firstAmount(fields, "totalAmount", "amount", "Amount")

	return payload, nil
}

// decodeBase64URL restores the standard alphabet and padding before decoding.
// Gateways are inconsistent about both.
func decodeBase64URL(segment string) ([]byte, error) {
	normalized := strings.NewReplacer("-", "+", "_", "/").Replace(segment)
	if rem := len(normalized) % 4; rem != 0 {
		normalized += strings.Repeat("=", 4-rem)
	}
	return base64.StdEncoding.DecodeString(normalized)
}

func firstString(fields map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err == nil && value != "" {
			return value
		}
	}
	return ""
}

func firstAmount(fields map[string]json.RawMessage, keys ...string) decimal.Decimal {
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		// Amounts arrive as JSON numbers or quoted strings depending on
		// the gateway version.
		var asString string
		if err := json.Unmarshal(raw, &asString); err == nil {
			if parsed, perr := decimal.NewFromString(asString); perr == nil {
				return parsed
			}
			continue
		}
		var asNumber float64
		if err := json.Unmarshal(raw, &asNumber); err == nil {
			return decimal.NewFromFloat(asNumber)
		}
	}
	return decimal.Zero
}
