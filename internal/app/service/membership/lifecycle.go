package membership

import (
	"time"

	"github.com/inkwell-labs/inkwell/internal/models"
	"github.com/inkwell-labs/inkwell/pkg/types"
)

// ApplyUpgrade mutates u into an active premium state lasting durationDays
// from now. Upgrading an already-premium user resets the window rather than
// stacking onto the old expiry; the previous remaining time is discarded.
func ApplyUpgrade(u *models.User, durationDays int, now time.Time) {
	expires := now.AddDate(0, 0, durationDays)
	u.Plan = types.PlanPremium
	u.PremiumStartedAt = &now
	u.PremiumExpiresAt = &expires
}

// ApplyDowngrade returns u to the free plan and clears the premium window.
func ApplyDowngrade(u *models.User) {
	u.Plan = types.PlanFree
	u.PremiumStartedAt = nil
	u.PremiumExpiresAt = nil
}
