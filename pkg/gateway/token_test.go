package gateway

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildToken(t *testing.T, fields map[string]any) string {
	t.Helper()

	payload, err := json.Marshal(fields)
	require.NoError(t, err)
	return "hdr." + base64.RawURLEncoding.EncodeToString(payload)
}

func TestDecodeTokenFullPayload(t *testing.T) {
	token := buildToken(t, map[string]any{
		"gid":           "gid-123",
		"status":        "SENT_FOR_CAPTURE",
		"merchantTxnId": "txn-9",
		"totalAmount":   "1499.50",
		"paymentMethod": "CARD",
	})

	payload, err := DecodeToken(token)
	require.NoError(t, err)

	assert.Equal(t, "gid-123", payload.GID)
	assert.Equal(t, "SENT_FOR_CAPTURE", payload.Status)
	assert.Equal(t, "txn-9", payload.MerchantTxnID)
	assert.Equal(t, "CARD", payload.PaymentMethod)
	assert.Equal(t, "1499.5", payload.Amount.String())
	assert.NotEmpty(t, payload.Raw)
}

func TestDecodeTokenGIDAlias(t *testing.T) {
	token := buildToken(t, map[string]any{
		"x-gl-gid": "gid-alias",
		"status":   "FAILED",
	})

	payload, err := DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, "gid-alias", payload.GID)
}

func TestDecodeTokenPrefersCanonicalGID(t *testing.T) {
	token := buildToken(t, map[string]any{
		"gid":      "canonical",
		"x-gl-gid": "alias",
	})

	payload, err := DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, "canonical", payload.GID)
}

func TestDecodeTokenMissingGID(t *testing.T) {
	token := buildToken(t, map[string]any{"status": "SUCCESS"})

	payload, err := DecodeToken(token)
	require.NoError(t, err)
	assert.Empty(t, payload.GID)
}

func TestDecodeTokenFailureReasonAlias(t *testing.T) {
	token := buildToken(t, map[string]any{
		"gid":     "gid-1",
		"status":  "DECLINED",
		"message": "insufficient funds",
	})

	payload, err := DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, "insufficient funds", payload.FailureReason)

	token = buildToken(t, map[string]any{
		"gid":           "gid-1",
		"failureReason": "card expired",
		"message":       "ignored",
	})
	payload, err = DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, "card expired", payload.FailureReason)
}

func TestDecodeTokenNumericAmount(t *testing.T) {
	token := buildToken(t, map[string]any{
		"gid":    "gid-1",
		"amount": 250.75,
	})

	payload, err := DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, "250.75", payload.Amount.String())
}

func TestDecodeTokenAmountKeyPrecedence(t *testing.T) {
	token := buildToken(t, map[string]any{
		"gid":         "gid-1",
		"totalAmount": "100.00",
		"amount":      "5.00",
	})

	payload, err := DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, "100", payload.Amount.String())
}

func TestDecodeTokenSingleSegment(t *testing.T) {
	_, err := DecodeToken("just-one-segment")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedToken))
}

func TestDecodeTokenBadBase64(t *testing.T) {
	_, err := DecodeToken("hdr.!!!not-base64!!!")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedToken))
}

func TestDecodeTokenNonJSONPayload(t *testing.T) {
	segment := base64.RawURLEncoding.EncodeToString([]byte("plain text"))
	_, err := DecodeToken("hdr." + segment)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedToken))
}

func TestDecodeTokenURLAlphabetAndPadding(t *testing.T) {
	// Unpadded raw-url segment plus a trailing signature segment.
	fields := map[string]any{
		"gid":    "gid~?>>",
		"status": "SUCCESS",
	}
	payload, err := json.Marshal(fields)
	require.NoError(t, err)

	encoded := base64.RawURLEncoding.EncodeToString(payload)
	decoded, err := DecodeToken("hdr." + encoded + ".sig")
	require.NoError(t, err)
	assert.Equal(t, "gid~?>>", decoded.GID)
}
