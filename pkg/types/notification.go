package types

type NotificationType string

const (
	NotificationTypePremiumUpgrade  NotificationType = "premium_upgrade"
	NotificationTypePremiumExpiring NotificationType = "premium_expiring"
	NotificationTypePremiumExpired  NotificationType = "premium_expired"
	NotificationTypePaymentSuccess  NotificationType = "payment_success"
	NotificationTypePaymentFailed   NotificationType = "payment_failed"
)
