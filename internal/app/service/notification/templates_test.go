package notification

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/inkwell/pkg/types"
)

func TestTemplateExpiring(t *testing.T) {
	title, msg := template(types.NotificationTypePremiumExpiring, map[string]interface{}{"days_left": 3})
	require.Equal(t, "Premium expiring soon", title)
	require.Contains(t, msg, "expires in 3 days")

	title, msg = template(types.NotificationTypePremiumExpiring, map[string]interface{}{"days_left": 1})
	require.Equal(t, "Premium expires tomorrow", title)
	require.Contains(t, msg, "1 day")
}

func TestTemplateUpgrade(t *testing.T) {
	title, msg := template(types.NotificationTypePremiumUpgrade, map[string]interface{}{"duration_days": 30})
	require.Equal(t, "Premium activated", title)
	require.Contains(t, msg, "30 days")

	_, msg = template(types.NotificationTypePremiumUpgrade, nil)
	require.NotContains(t, msg, "%!d")
}

func TestDedupeRules(t *testing.T) {
	require.True(t, deduped(types.NotificationTypePremiumExpiring))
	require.True(t, deduped(types.NotificationTypePremiumExpired))
	require.False(t, deduped(types.NotificationTypePaymentSuccess))
	require.False(t, deduped(types.NotificationTypePaymentFailed))
	require.False(t, deduped(types.NotificationTypePremiumUpgrade))

	require.Equal(t, []string{"days_left"}, dedupeKeyFields(types.NotificationTypePremiumExpiring))
	require.Nil(t, dedupeKeyFields(types.NotificationTypePremiumExpired))
}
