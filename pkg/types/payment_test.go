package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaymentStatus_Terminal(t *testing.T) {
	require.False(t, PaymentStatusPending.IsTerminal())
	require.True(t, PaymentStatusPaid.IsTerminal())
	require.True(t, PaymentStatusCancelled.IsTerminal())
	require.False(t, PaymentStatus("refunded").Valid())
}
