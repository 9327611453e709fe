package payment

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelsAreWrapFriendly(t *testing.T) {
	err := fmt.Errorf("payos order 123: %w", ErrPaymentNotFound)
	require.True(t, errors.Is(err, ErrPaymentNotFound))

	err = fmt.Errorf("provider momo: %w", ErrUnsupportedProvider)
	require.True(t, errors.Is(err, ErrUnsupportedProvider))

	require.False(t, errors.Is(ErrNoPendingPayment, ErrPaymentNotFound))
}
