package models

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/inkwell/pkg/types"
)

var testNow = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func TestIsPremiumActive_FreeUser(t *testing.T) {
	u := &User{Plan: types.PlanFree}
	require.False(t, u.IsPremiumActive(testNow))
}

func TestIsPremiumActive_ActivePremium(t *testing.T) {
	u := &User{
		Plan:             types.PlanPremium,
		PremiumExpiresAt: lo.ToPtr(testNow.Add(10 * 24 * time.Hour)),
	}
	require.True(t, u.IsPremiumActive(testNow))
}

func TestIsPremiumActive_LazyExpiry(t *testing.T) {
	// The stored plan still reads premium after expiry; the computed check
	// must say inactive anyway.
	u := &User{
		Plan:             types.PlanPremium,
		PremiumExpiresAt: lo.ToPtr(testNow.Add(-time.Minute)),
	}
	require.Equal(t, types.PlanPremium, u.Plan)
	require.False(t, u.IsPremiumActive(testNow))
	require.Zero(t, u.DaysLeft(testNow))
}

func TestIsPremiumActive_PremiumLabelWithoutExpiry(t *testing.T) {
	u := &User{Plan: types.PlanPremium}
	require.False(t, u.IsPremiumActive(testNow))
}

func TestDaysLeft_CeilingRounding(t *testing.T) {
	cases := []struct {
		name string
		left time.Duration
		want int
	}{
		{"thirty minutes shows one day", 30 * time.Minute, 1},
		{"exactly one day", 24 * time.Hour, 1},
		{"one day and a second rounds up", 24*time.Hour + time.Second, 2},
		{"six and a half days", 6*24*time.Hour + 12*time.Hour, 7},
		{"thirty days", 30 * 24 * time.Hour, 30},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := &User{
				Plan:             types.PlanPremium,
				PremiumExpiresAt: lo.ToPtr(testNow.Add(tc.left)),
			}
			require.Equal(t, tc.want, u.DaysLeft(testNow))
		})
	}
}

func TestIsExpiringSoon(t *testing.T) {
	within := &User{Plan: types.PlanPremium, PremiumExpiresAt: lo.ToPtr(testNow.Add(3 * 24 * time.Hour))}
	require.True(t, within.IsExpiringSoon(testNow))

	far := &User{Plan: types.PlanPremium, PremiumExpiresAt: lo.ToPtr(testNow.Add(20 * 24 * time.Hour))}
	require.False(t, far.IsExpiringSoon(testNow))

	expired := &User{Plan: types.PlanPremium, PremiumExpiresAt: lo.ToPtr(testNow.Add(-time.Hour))}
	require.False(t, expired.IsExpiringSoon(testNow))
}

func TestPaymentIsExpired(t *testing.T) {
	p := &Payment{Status: types.PaymentStatusPending, ExpiresAt: testNow.Add(15 * time.Minute)}
	require.False(t, p.IsExpired(testNow))
	// Queried after 16 minutes with no gateway callback.
	require.True(t, p.IsExpired(testNow.Add(16*time.Minute)))

	done := &Payment{Status: types.PaymentStatusSuccess, ExpiresAt: testNow.Add(-time.Hour)}
	require.False(t, done.IsExpired(testNow))
}
