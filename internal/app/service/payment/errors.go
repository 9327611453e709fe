package payment

import "errors"

var (
	// ErrPaymentNotFound marks an order code with no matching payment row.
	// Webhook handling treats it as benign: acknowledge, log, change nothing.
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrNoPendingPayment is returned by Cancel/Current when the user has no
	// live checkout.
	ErrNoPendingPayment = errors.New("no pending payment")

	// ErrUnsupportedProvider is returned for a provider name outside the
	// configured gateway set.
	ErrUnsupportedProvider = errors.New("unsupported payment provider")
)
