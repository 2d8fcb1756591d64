package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/careerforge/careerforge-backend/pkg/enums"
)

// PaymentMetadata is the structured scratchpad accumulated on a payment row.
// Each field is written by exactly one collaborator: cart/customer/sessionRaw
// at checkout initiation, callbackRaw and webhookRaw by their respective
// delivery channels. Writes are additive per named field so neither channel
// clobbers the other's evidence.
type PaymentMetadata struct {
	Cart        []CartLine      `json:"cart,omitempty"`
	Customer    *CustomerInfo   `json:"customer,omitempty"`
	SessionRaw  json.RawMessage `json:"sessionRaw,omitempty"`
	CallbackRaw json.RawMessage `json:"callbackRaw,omitempty"`
	WebhookRaw  json.RawMessage `json:"webhookRaw,omitempty"`
}

// SetChannelRaw archives a channel's decoded payload under its own sub-field.
func (m *PaymentMetadata) SetChannelRaw(channel enums.Channel, raw json.RawMessage) {
	switch channel {
	case enums.ChannelCallback:
		m.CallbackRaw = raw
	case enums.ChannelWebhook:
		m.WebhookRaw = raw
	}
}

// ChannelRaw returns the archived payload for the given channel, if any.
func (m PaymentMetadata) ChannelRaw(channel enums.Channel) json.RawMessage {
	switch channel {
	case enums.ChannelCallback:
		return m.CallbackRaw
	case enums.ChannelWebhook:
		return m.WebhookRaw
	}
	return nil
}

func (m PaymentMetadata) Value() (driver.Value, error) {
	encoded, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("payment metadata: marshal: %w", err)
	}
	return string(encoded), nil
}

func (m *PaymentMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = PaymentMetadata{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("payment metadata: unsupported scan type %T", value)
	}

	if len(raw) == 0 {
		*m = PaymentMetadata{}
		return nil
	}
	return json.Unmarshal(raw, m)
}
