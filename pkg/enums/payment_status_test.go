package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentStatusTransitions(t *testing.T) {
	assert.True(t, PaymentStatusPending.CanTransitionTo(PaymentStatusSuccess))
	assert.True(t, PaymentStatusPending.CanTransitionTo(PaymentStatusFailed))

	assert.False(t, PaymentStatusPending.CanTransitionTo(PaymentStatusPending))
	assert.False(t, PaymentStatusSuccess.CanTransitionTo(PaymentStatusFailed))
	assert.False(t, PaymentStatusFailed.CanTransitionTo(PaymentStatusSuccess))
	assert.False(t, PaymentStatusSuccess.CanTransitionTo(PaymentStatusPending))
}

func TestPaymentStatusTerminal(t *testing.T) {
	assert.False(t, PaymentStatusPending.IsTerminal())
	assert.True(t, PaymentStatusSuccess.IsTerminal())
	assert.True(t, PaymentStatusFailed.IsTerminal())
}

func TestParsePaymentStatus(t *testing.T) {
	status, err := ParsePaymentStatus("SUCCESS")
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusSuccess, status)

	_, err = ParsePaymentStatus("settled")
	require.Error(t, err)
}
