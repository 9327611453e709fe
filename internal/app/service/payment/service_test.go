package payment

import (
	"context"
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
	"github.com/inkwell-labs/inkwell/internal/platform/gateway"
	"github.com/inkwell-labs/inkwell/pkg/clock"
	"github.com/inkwell-labs/inkwell/pkg/tool"
	"github.com/inkwell-labs/inkwell/pkg/types"
)

type settleHarness struct {
	svc *Service
	db  *gorm.DB
	now time.Time
}

func newSettleHarness(t *testing.T) *settleHarness {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Payment{}, &models.Notification{}))

	now := time.Now().Truncate(time.Second)
	log := zap.NewNop().Sugar()
	clk := clock.Fixed{T: now}
	notifier := notification.NewService(db, log, clk)
	members := membership.NewService(db, log, clk, notifier)
	svc := &Service{db: db, log: log, clk: clk, members: members, notifier: notifier}
	return &settleHarness{svc: svc, db: db, now: now}
}

func (h *settleHarness) seedUser(t *testing.T) *models.User {
	t.Helper()
	u := &models.User{
		ID:           tool.GenerateUUIDV7(),
		Email:        "u@example.com",
		PasswordHash: "x",
		DisplayName:  "U",
		Role:         types.RoleUser,
		Plan:         types.PlanFree,
	}
	require.NoError(t, h.db.Create(u).Error)
	return u
}

func (h *settleHarness) seedPending(t *testing.T, userID string) *models.Payment {
	t.Helper()
	p := &models.Payment{
		ID:           tool.GenerateUUIDV7(),
		UserID:       userID,
		OrderCode:    tool.GenerateOrderCode(h.now),
		Provider:     types.PaymentProviderPayOS,
		Type:         types.PaymentTypePremiumSubscription,
		Status:       types.PaymentStatusPending,
		Amount:       41000,
		DurationDays: 30,
		ExpiresAt:    h.now.Add(15 * time.Minute),
	}
	require.NoError(t, h.db.Create(p).Error)
	return p
}

func (h *settleHarness) reloadUser(t *testing.T, id string) *models.User {
	t.Helper()
	var u models.User
	require.NoError(t, h.db.First(&u, "id = ?", id).Error)
	return &u
}

func (h *settleHarness) countNotifications(t *testing.T, userID string, typ types.NotificationType) int64 {
	t.Helper()
	var count int64
	require.NoError(t, h.db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", userID, typ).
		Count(&count).Error)
	return count
}

// A success event replayed any number of times upgrades the user exactly
// once and writes exactly one upgrade notification.
func TestReconcileSuccessReplayIsIdempotent(t *testing.T) {
	h := newSettleHarness(t)
	ctx := context.Background()
	u := h.seedUser(t)
	p := h.seedPending(t, u.ID)

	ev := &gateway.Event{
		Provider:  types.PaymentProviderPayOS,
		OrderCode: p.OrderCode,
		Succeeded: true,
		Amount:    p.Amount,
	}

	out, err := h.svc.Reconcile(ctx, ev)
	require.NoError(t, err)
	require.True(t, out.Applied)
	require.False(t, out.Duplicate)

	got := h.reloadUser(t, u.ID)
	require.Equal(t, types.PlanPremium, got.Plan)
	require.NotNil(t, got.PremiumExpiresAt)
	require.WithinDuration(t, h.now.AddDate(0, 0, 30), *got.PremiumExpiresAt, time.Second)
	firstExpiry := *got.PremiumExpiresAt

	for i := 0; i < 3; i++ {
		out, err = h.svc.Reconcile(ctx, ev)
		require.NoError(t, err)
		require.True(t, out.Duplicate)
		require.False(t, out.Applied)
		require.Equal(t, types.PaymentStatusSuccess, out.Payment.Status)
	}

	got = h.reloadUser(t, u.ID)
	require.WithinDuration(t, firstExpiry, *got.PremiumExpiresAt, time.Second, "replays must not extend premium")
	require.EqualValues(t, 1, h.countNotifications(t, u.ID, types.NotificationTypePremiumUpgrade))
	require.EqualValues(t, 1, h.countNotifications(t, u.ID, types.NotificationTypePaymentSuccess))
}

func TestReconcileFailureClosesWithoutDowngrade(t *testing.T) {
	h := newSettleHarness(t)
	ctx := context.Background()
	u := h.seedUser(t)
	p := h.seedPending(t, u.ID)

	ev := &gateway.Event{
		Provider:  types.PaymentProviderPayOS,
		OrderCode: p.OrderCode,
		Succeeded: false,
	}

	out, err := h.svc.Reconcile(ctx, ev)
	require.NoError(t, err)
	require.True(t, out.Applied)
	require.Equal(t, types.PaymentStatusFailed, out.Payment.Status)
	require.NotNil(t, out.Payment.CancelledAt)
	require.Equal(t, types.PlanFree, h.reloadUser(t, u.ID).Plan)
	require.EqualValues(t, 1, h.countNotifications(t, u.ID, types.NotificationTypePaymentFailed))

	// Replay of the failure changes nothing.
	out, err = h.svc.Reconcile(ctx, ev)
	require.NoError(t, err)
	require.True(t, out.Duplicate)
	require.EqualValues(t, 1, h.countNotifications(t, u.ID, types.NotificationTypePaymentFailed))
}

func TestReconcileUnknownOrderCode(t *testing.T) {
	h := newSettleHarness(t)
	_, err := h.svc.Reconcile(context.Background(), &gateway.Event{
		Provider:  types.PaymentProviderPayOS,
		OrderCode: 42,
		Succeeded: true,
	})
	require.ErrorIs(t, err, ErrPaymentNotFound)
}

// Two racing success settlements: the loser's guarded update matches zero
// rows, so it must neither upgrade again nor emit a second notification.
func TestSettleSuccessLosesGuard(t *testing.T) {
	h := newSettleHarness(t)
	ctx := context.Background()
	u := h.seedUser(t)
	p := h.seedPending(t, u.ID)

	stale := *p // copy read while the row was still pending

	applied, err := h.svc.settleSuccess(ctx, p)
	require.NoError(t, err)
	require.True(t, applied)
	expiry := *h.reloadUser(t, u.ID).PremiumExpiresAt

	applied, err = h.svc.settleSuccess(ctx, &stale)
	require.NoError(t, err)
	require.False(t, applied)

	require.WithinDuration(t, expiry, *h.reloadUser(t, u.ID).PremiumExpiresAt, time.Second)
	require.EqualValues(t, 1, h.countNotifications(t, u.ID, types.NotificationTypePremiumUpgrade))
}

// A failure transition racing a success settlement loses the status guard;
// the settled row must stay success and the guard must report not-applied.
func TestTransitionLosesGuardToSettledPayment(t *testing.T) {
	h := newSettleHarness(t)
	ctx := context.Background()
	u := h.seedUser(t)
	p := h.seedPending(t, u.ID)

	stale := *p
	applied, err := h.svc.settleSuccess(ctx, p)
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = h.svc.transition(ctx, h.db, &stale, types.PaymentStatusFailed)
	require.NoError(t, err)
	require.False(t, applied)

	var row models.Payment
	require.NoError(t, h.db.First(&row, "id = ?", p.ID).Error)
	require.Equal(t, types.PaymentStatusSuccess, row.Status)
	require.Nil(t, row.CancelledAt)
}
