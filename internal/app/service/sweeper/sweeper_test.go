package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/inkwell-labs/inkwell/internal/app/service/membership"
	"github.com/inkwell-labs/inkwell/internal/app/service/notification"
	"github.com/inkwell-labs/inkwell/internal/models"
	"github.com/inkwell-labs/inkwell/pkg/clock"
	"github.com/inkwell-labs/inkwell/pkg/tool"
	"github.com/inkwell-labs/inkwell/pkg/types"
)

func TestWarnCheckpoints(t *testing.T) {
	for _, days := range []int{7, 5, 3, 1} {
		require.True(t, isWarnCheckpoint(days), "day %d", days)
	}
	for _, days := range []int{0, 2, 4, 6, 8, 30} {
		require.False(t, isWarnCheckpoint(days), "day %d", days)
	}
}

// A user expiring in exactly 6 days and a few hours rounds up to 7 and hits
// the first checkpoint; the sweep the next day rounds to 6 and stays silent.
func TestCheckpointAgainstCeilingRounding(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	expires := now.Add(6*24*time.Hour + 3*time.Hour)
	u := &models.User{Plan: types.PlanPremium, PremiumExpiresAt: &expires}

	require.Equal(t, 7, u.DaysLeft(now))
	require.True(t, isWarnCheckpoint(u.DaysLeft(now)))

	tomorrow := now.AddDate(0, 0, 1)
	require.Equal(t, 6, u.DaysLeft(tomorrow))
	require.False(t, isWarnCheckpoint(u.DaysLeft(tomorrow)))
}

type mailRecorder struct {
	warnings []int
	expired  []string
}

func (m *mailRecorder) SendPremiumExpiryWarning(to, displayName string, expiresAt time.Time, daysLeft int) error {
	m.warnings = append(m.warnings, daysLeft)
	return nil
}

func (m *mailRecorder) SendPremiumExpired(to, displayName string) error {
	m.expired = append(m.expired, to)
	return nil
}

type failingDowngrader struct {
	calls int
}

func (d *failingDowngrader) Downgrade(context.Context, string) (*models.User, error) {
	d.calls++
	return nil, errors.New("downgrade unavailable")
}

func newSweepDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Notification{}))
	return db
}

func seedPremiumUser(t *testing.T, db *gorm.DB, started, expires time.Time) *models.User {
	t.Helper()
	u := &models.User{
		ID:               tool.GenerateUUIDV7(),
		Email:            "premium@example.com",
		PasswordHash:     "x",
		DisplayName:      "P",
		Role:             types.RoleUser,
		Plan:             types.PlanPremium,
		PremiumStartedAt: &started,
		PremiumExpiresAt: &expires,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func countNotifications(t *testing.T, db *gorm.DB, userID string, typ types.NotificationType) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", userID, typ).
		Count(&count).Error)
	return count
}

// Sweeps run every few minutes, so a user sitting at a checkpoint is seen
// dozens of times before days-left changes. The warning mail must ride the
// fresh notification only: one mail and one notification per checkpoint, no
// matter how often the sweep fires.
func TestSweepWarnsOnceAcrossRepeatedRuns(t *testing.T) {
	db := newSweepDB(t)
	now := time.Now()
	log := zap.NewNop().Sugar()
	clk := clock.Fixed{T: now}
	notifier := notification.NewService(db, log, clk)
	members := membership.NewService(db, log, clk, notifier)

	expires := now.Add(3*24*time.Hour - time.Hour) // rounds up to 3 days left
	u := seedPremiumUser(t, db, now.AddDate(0, 0, -27), expires)

	mail := &mailRecorder{}
	s := &Sweeper{db: db, log: log, clk: clk, members: members, notifier: notifier, mail: mail}

	for i := 0; i < 3; i++ {
		require.NoError(t, s.RunOnce(context.Background()))
	}

	require.Equal(t, []int{3}, mail.warnings, "one warning mail at the checkpoint")
	require.EqualValues(t, 1, countNotifications(t, db, u.ID, types.NotificationTypePremiumExpiring))

	var got models.User
	require.NoError(t, db.First(&got, "id = ?", u.ID).Error)
	require.Equal(t, types.PlanPremium, got.Plan, "warning pass must not downgrade")
}

// When the downgrade write keeps failing, the next sweeps retry it but the
// expiry notification and mail stay single-shot inside the dedupe window.
func TestSweepExpiredMailNotResentWhileDowngradeRetries(t *testing.T) {
	db := newSweepDB(t)
	now := time.Now()
	log := zap.NewNop().Sugar()
	clk := clock.Fixed{T: now}
	notifier := notification.NewService(db, log, clk)

	expires := now.Add(-time.Hour)
	u := seedPremiumUser(t, db, now.AddDate(0, 0, -30), expires)

	mail := &mailRecorder{}
	failing := &failingDowngrader{}
	s := &Sweeper{db: db, log: log, clk: clk, members: failing, notifier: notifier, mail: mail}

	require.NoError(t, s.RunOnce(context.Background()))
	require.Len(t, mail.expired, 1)
	require.Equal(t, 1, failing.calls)

	require.NoError(t, s.RunOnce(context.Background()))
	require.Len(t, mail.expired, 1, "suppressed emit must not re-send the mail")
	require.Equal(t, 2, failing.calls, "downgrade is retried regardless")
	require.EqualValues(t, 1, countNotifications(t, db, u.ID, types.NotificationTypePremiumExpired))

	// Once the downgrade goes through, the user converges to free with still
	// exactly one notification and one mail.
	s.members = membership.NewService(db, log, clk, notifier)
	require.NoError(t, s.RunOnce(context.Background()))

	var got models.User
	require.NoError(t, db.First(&got, "id = ?", u.ID).Error)
	require.Equal(t, types.PlanFree, got.Plan)
	require.Len(t, mail.expired, 1)
	require.EqualValues(t, 1, countNotifications(t, db, u.ID, types.NotificationTypePremiumExpired))
}
