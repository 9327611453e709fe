package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inkwell-labs/inkwell/internal/app/service/membership"
	"github.com/inkwell-labs/inkwell/internal/app/service/notification"
	"github.com/inkwell-labs/inkwell/internal/models"
	"github.com/inkwell-labs/inkwell/internal/platform/mailer"
	"github.com/inkwell-labs/inkwell/pkg/clock"
	"github.com/inkwell-labs/inkwell/pkg/config"
	"github.com/inkwell-labs/inkwell/pkg/types"
)

// warnCheckpoints are the days-left values at which an expiry warning is
// emitted. The notification layer's dedupe window makes repeated sweeps at
// the same checkpoint silent.
var warnCheckpoints = map[int]bool{7: true, 5: true, 3: true, 1: true}

func isWarnCheckpoint(daysLeft int) bool { return warnCheckpoints[daysLeft] }

// expiryMailer is the slice of the mailer the sweeper touches.
type expiryMailer interface {
	SendPremiumExpiryWarning(to, displayName string, expiresAt time.Time, daysLeft int) error
	SendPremiumExpired(to, displayName string) error
}

// planDowngrader is the slice of the membership service the sweeper touches.
type planDowngrader interface {
	Downgrade(ctx context.Context, userID string) (*models.User, error)
}

// Sweeper is the background reconciler for lazily-consistent plan state: it
// warns users approaching expiry and downgrades rows whose premium window has
// passed. Correctness never depends on it running; entitlement checks already
// treat past-due rows as free.
type Sweeper struct {
	db       *gorm.DB
	log      *zap.SugaredLogger
	clk      clock.Clock
	members  planDowngrader
	notifier *notification.Service
	mail     expiryMailer
	schedule string

	cron *cron.Cron
}

func New(
	cfg *config.Config,
	db *gorm.DB,
	log *zap.SugaredLogger,
	clk clock.Clock,
	members *membership.Service,
	notifier *notification.Service,
	mail *mailer.Mailer,
) *Sweeper {
	return &Sweeper{
		db: db, log: log, clk: clk,
		members: members, notifier: notifier, mail: mail,
		schedule: cfg.Sweeper.Schedule,
	}
}

// Start registers the sweep on its cron schedule and begins running it.
func (s *Sweeper) Start() error {
	if s.cron != nil {
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.RunOnce(ctx); err != nil {
			s.log.Errorf("expiry sweep failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule expiry sweep %q: %w", s.schedule, err)
	}
	c.Start()
	s.cron = c
	s.log.Infow("expiry sweeper started", "schedule", s.schedule)
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
	s.log.Info("expiry sweeper stopped")
}

// RunOnce executes a single sweep: warning pass then expiry pass. It is safe
// to call concurrently with the schedule (admin-triggered runs); every write
// it performs is idempotent.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	now := s.clk.Now()

	warned, werr := s.sweepExpiring(ctx, now)
	expired, eerr := s.sweepExpired(ctx, now)

	s.log.Infow("expiry sweep finished", "warned", warned, "expired", expired)
	if werr != nil {
		return werr
	}
	return eerr
}

// sweepExpiring warns premium users whose expiry lands within the next 7
// days, at the fixed checkpoints only.
func (s *Sweeper) sweepExpiring(ctx context.Context, now time.Time) (int, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("plan = ? AND premium_expires_at > ? AND premium_expires_at <= ?",
			types.PlanPremium, now, now.AddDate(0, 0, 7)).
		Find(&users).Error
	if err != nil {
		return 0, fmt.Errorf("failed to query expiring users: %w", err)
	}

	warned := 0
	for i := range users {
		u := &users[i]
		daysLeft := u.DaysLeft(now)
		if !isWarnCheckpoint(daysLeft) {
			continue
		}
		created, err := s.notifier.Emit(ctx, u.ID, types.NotificationTypePremiumExpiring, map[string]interface{}{
			"days_left":  daysLeft,
			"expires_at": u.PremiumExpiresAt.Format(time.RFC3339),
		})
		if err != nil {
			s.log.Errorw("failed to warn expiring user", "user_id", u.ID, "error", err)
			continue
		}
		if !created {
			// already warned at this checkpoint within the window
			continue
		}
		if err := s.mail.SendPremiumExpiryWarning(u.Email, u.DisplayName, *u.PremiumExpiresAt, daysLeft); err != nil {
			s.log.Warnw("failed to send expiry warning mail", "user_id", u.ID, "error", err)
		}
		warned++
	}
	return warned, nil
}

// sweepExpired settles every premium row whose window has passed: notify
// first, then downgrade. The entitlement already lapsed the moment expiry
// passed, so the downgrade only aligns the stored label; emitting before the
// write means a failed downgrade is retried next sweep without losing the
// notification (the dedupe window suppresses the repeat emit).
func (s *Sweeper) sweepExpired(ctx context.Context, now time.Time) (int, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("plan = ? AND premium_expires_at <= ?", types.PlanPremium, now).
		Find(&users).Error
	if err != nil {
		return 0, fmt.Errorf("failed to query expired users: %w", err)
	}

	downgraded := 0
	for i := range users {
		u := &users[i]
		created, err := s.notifier.Emit(ctx, u.ID, types.NotificationTypePremiumExpired, map[string]interface{}{
			"expired_at": u.PremiumExpiresAt.Format(time.RFC3339),
		})
		if err != nil {
			s.log.Errorw("failed to emit expiry notification", "user_id", u.ID, "error", err)
			continue
		}
		// the mail rides on the fresh emit; a dedupe-suppressed emit means the
		// user was told already and only the downgrade still needs retrying
		if created {
			if err := s.mail.SendPremiumExpired(u.Email, u.DisplayName); err != nil {
				s.log.Warnw("failed to send expiry mail", "user_id", u.ID, "error", err)
			}
		}
		if _, err := s.members.Downgrade(ctx, u.ID); err != nil {
			s.log.Errorw("failed to downgrade expired user", "user_id", u.ID, "error", err)
			continue
		}
		downgraded++
	}
	return downgraded, nil
}
