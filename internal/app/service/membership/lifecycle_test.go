package membership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/inkwell/internal/models"
	"github.com/inkwell-labs/inkwell/pkg/types"
)

func TestApplyUpgradeFromFree(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	u := &models.User{Plan: types.PlanFree}

	ApplyUpgrade(u, 30, now)

	require.Equal(t, types.PlanPremium, u.Plan)
	require.Equal(t, now, *u.PremiumStartedAt)
	require.Equal(t, now.AddDate(0, 0, 30), *u.PremiumExpiresAt)
	require.True(t, u.IsPremiumActive(now))
	require.Equal(t, 30, u.DaysLeft(now))
}

func TestApplyUpgradeResetsInsteadOfStacking(t *testing.T) {
	first := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	u := &models.User{Plan: types.PlanFree}
	ApplyUpgrade(u, 30, first)

	// Paying again a day later restarts the 30-day window from the second
	// payment; the remaining 29 days are not added on top.
	second := first.AddDate(0, 0, 1)
	ApplyUpgrade(u, 30, second)

	require.Equal(t, second, *u.PremiumStartedAt)
	require.Equal(t, second.AddDate(0, 0, 30), *u.PremiumExpiresAt)
	require.Equal(t, 30, u.DaysLeft(second))
}

func TestApplyDowngrade(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	u := &models.User{Plan: types.PlanFree}
	ApplyUpgrade(u, 30, now)

	ApplyDowngrade(u)

	require.Equal(t, types.PlanFree, u.Plan)
	require.Nil(t, u.PremiumStartedAt)
	require.Nil(t, u.PremiumExpiresAt)
	require.False(t, u.IsPremiumActive(now))
}
