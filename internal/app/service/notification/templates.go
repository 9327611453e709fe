package notification

import (
	"fmt"

	"github.com/inkwell-labs/inkwell/pkg/types"
)

// template renders the title/message pair for a notification type from its
// payload. Payload keys are the same ones persisted into the Data column.
func template(typ types.NotificationType, data map[string]interface{}) (title, message string) {
	switch typ {
	case types.NotificationTypePremiumUpgrade:
		days, _ := data["duration_days"].(int)
		if days <= 0 {
			return "Premium activated", "Your premium plan is now active. Enjoy unlimited journaling and AI suggestions."
		}
		return "Premium activated", fmt.Sprintf("Your premium plan is now active for %d days. Enjoy unlimited journaling and AI suggestions.", days)
	case types.NotificationTypePremiumExpiring:
		days, _ := data["days_left"].(int)
		if days == 1 {
			return "Premium expires tomorrow", "Your premium plan expires in 1 day. Renew now to keep unlimited access."
		}
		return "Premium expiring soon", fmt.Sprintf("Your premium plan expires in %d days. Renew now to keep unlimited access.", days)
	case types.NotificationTypePremiumExpired:
		return "Premium expired", "Your premium plan has expired and your account is back on the free plan. Upgrade again anytime."
	case types.NotificationTypePaymentSuccess:
		return "Payment received", "We received your payment and your premium plan has been activated."
	case types.NotificationTypePaymentFailed:
		return "Payment failed", "Your payment did not complete. No charge was applied; you can start a new checkout anytime."
	default:
		return string(typ), ""
	}
}

// dedupeKeyFields returns the Data fields that participate in the 24h
// duplicate suppression window for typ, or nil when the type dedupes on type
// alone. premium_expiring dedupes per days-left checkpoint so the 7-day and
// 3-day warnings are both delivered.
func dedupeKeyFields(typ types.NotificationType) []string {
	switch typ {
	case types.NotificationTypePremiumExpiring:
		return []string{"days_left"}
	default:
		return nil
	}
}

// deduped reports whether typ participates in duplicate suppression at all.
// Payment outcome notifications are emitted once per payment by construction
// (the reconciler only fires them on the pending->terminal transition), so
// they skip the window check.
func deduped(typ types.NotificationType) bool {
	switch typ {
	case types.NotificationTypePremiumExpiring, types.NotificationTypePremiumExpired:
		return true
	default:
		return false
	}
}
