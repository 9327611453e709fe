package membership

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkwell-labs/inkwell/internal/models"
	"github.com/inkwell-labs/inkwell/pkg/clock"
	"github.com/inkwell-labs/inkwell/pkg/types"
)

func TestStatusFreeUser(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s := &Service{clk: clock.Fixed{T: now}}

	st := s.Status(&models.User{Plan: types.PlanFree})
	require.Equal(t, types.PlanFree, st.Plan)
	require.False(t, st.Active)
	require.Zero(t, st.DaysLeft)
	require.Nil(t, st.PremiumExpiresAt)
}

func TestStatusActivePremium(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s := &Service{clk: clock.Fixed{T: now}}

	u := &models.User{Plan: types.PlanFree}
	ApplyUpgrade(u, 30, now.AddDate(0, 0, -27))

	st := s.Status(u)
	require.Equal(t, types.PlanPremium, st.Plan)
	require.True(t, st.Active)
	require.Equal(t, 3, st.DaysLeft)
	require.True(t, st.ExpiringSoon)
}

// A premium row whose window has passed reads as free even before the
// sweeper has downgraded it.
func TestStatusLapsedPremiumReadsAsFree(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s := &Service{clk: clock.Fixed{T: now}}

	u := &models.User{Plan: types.PlanFree}
	ApplyUpgrade(u, 30, now.AddDate(0, 0, -31))

	st := s.Status(u)
	require.Equal(t, types.PlanFree, st.Plan)
	require.False(t, st.Active)
	require.Zero(t, st.DaysLeft)
}
