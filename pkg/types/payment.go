package types

type PaymentProvider string

const (
	PaymentProviderPayOS PaymentProvider = "payos"
	PaymentProviderVNPay PaymentProvider = "vnpay"
)

// PaymentStatus transitions are monotone: pending moves to exactly one of
// success, failed or expired and never leaves a terminal state.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
	PaymentStatusExpired PaymentStatus = "expired"
)

func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed || s == PaymentStatusExpired
}

type PaymentType string

const (
	PaymentTypePremiumSubscription PaymentType = "premium_subscription"
)
