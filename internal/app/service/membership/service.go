package membership

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inkwell-labs/inkwell/internal/app/service/notification"
	"github.com/inkwell-labs/inkwell/internal/models"
	"github.com/inkwell-labs/inkwell/pkg/clock"
	"github.com/inkwell-labs/inkwell/pkg/logctx"
	"github.com/inkwell-labs/inkwell/pkg/types"
)

// Service owns the premium plan lifecycle on user rows. Upgrades come from
// the payment reconciler and from admin grants; downgrades from the expiry
// sweeper and admin revokes.
type Service struct {
	db       *gorm.DB
	log      *zap.SugaredLogger
	clk      clock.Clock
	notifier *notification.Service
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, clk clock.Clock, notifier *notification.Service) *Service {
	return &Service{db: db, log: log, clk: clk, notifier: notifier}
}

// Upgrade activates premium for durationDays on the user row inside tx.
// Callers that need the upgrade atomic with other writes (the payment
// reconciler) pass their transaction; nil falls back to the service db.
func (s *Service) Upgrade(ctx context.Context, tx *gorm.DB, userID string, durationDays int) (*models.User, error) {
	db := s.dbOr(tx)
	var user models.User
	if err := db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to load user for upgrade: %w", err)
	}

	ApplyUpgrade(&user, durationDays, s.clk.Now())
	err := db.WithContext(ctx).Model(&user).
		Select("plan", "premium_started_at", "premium_expires_at").
		Updates(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to persist upgrade: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("premium activated",
		"user_id", user.ID, "duration_days", durationDays, "expires_at", user.PremiumExpiresAt)
	return &user, nil
}

// Downgrade returns the user to the free plan. Downgrading an already-free
// user is a no-op.
func (s *Service) Downgrade(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to load user for downgrade: %w", err)
	}
	if user.Plan == types.PlanFree {
		return &user, nil
	}

	ApplyDowngrade(&user)
	err := s.db.WithContext(ctx).Model(&user).
		Select("plan", "premium_started_at", "premium_expires_at").
		Updates(map[string]interface{}{
			"plan":               user.Plan,
			"premium_started_at": nil,
			"premium_expires_at": nil,
		}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to persist downgrade: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("premium downgraded", "user_id", user.ID)
	return &user, nil
}

// AdminGrant is the support path: premium for durationDays without a payment.
// The user is notified the same way a paid upgrade notifies them.
func (s *Service) AdminGrant(ctx context.Context, userID string, durationDays int) (*models.User, error) {
	if durationDays <= 0 {
		return nil, fmt.Errorf("grant duration must be positive, got %d", durationDays)
	}
	user, err := s.Upgrade(ctx, nil, userID, durationDays)
	if err != nil {
		return nil, err
	}
	if _, err := s.notifier.Emit(ctx, user.ID, types.NotificationTypePremiumUpgrade, map[string]interface{}{
		"duration_days": durationDays,
		"source":        "admin_grant",
	}); err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to emit grant notification: %v", err)
	}
	return user, nil
}

// AdminRevoke drops a user back to free immediately. No expiry notification
// is emitted; revocation is a support action, not a lifecycle event.
func (s *Service) AdminRevoke(ctx context.Context, userID string) (*models.User, error) {
	return s.Downgrade(ctx, userID)
}

// Status is the membership view for the current user. Active and days-left
// are computed against the clock, so an expired-but-unswept row already
// reads as free here.
type Status struct {
	Plan             types.Plan `json:"plan"`
	Active           bool       `json:"active"`
	PremiumStartedAt *time.Time `json:"premium_started_at,omitempty"`
	PremiumExpiresAt *time.Time `json:"premium_expires_at,omitempty"`
	DaysLeft         int        `json:"days_left"`
	ExpiringSoon     bool       `json:"expiring_soon"`
}

func (s *Service) Status(user *models.User) *Status {
	now := s.clk.Now()
	active := user.IsPremiumActive(now)
	st := &Status{
		Plan:         types.PlanFree,
		Active:       active,
		DaysLeft:     user.DaysLeft(now),
		ExpiringSoon: user.IsExpiringSoon(now),
	}
	if active {
		st.Plan = types.PlanPremium
		st.PremiumStartedAt = user.PremiumStartedAt
		st.PremiumExpiresAt = user.PremiumExpiresAt
	}
	return st
}

func (s *Service) dbOr(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}
