package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/inkwell-labs/inkwell/internal/models"
	"github.com/inkwell-labs/inkwell/pkg/clock"
	"github.com/inkwell-labs/inkwell/pkg/tool"
	"github.com/inkwell-labs/inkwell/pkg/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Notification{}))
	return db
}

func countByType(t *testing.T, db *gorm.DB, userID string, typ types.NotificationType) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", userID, typ).
		Count(&count).Error)
	return count
}

func TestEmitDedupeWindow(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	svc := NewService(db, zap.NewNop().Sugar(), clock.Fixed{T: now})
	userID := tool.GenerateUUIDV7()
	ctx := context.Background()

	created, err := svc.Emit(ctx, userID, types.NotificationTypePremiumExpired, nil)
	require.NoError(t, err)
	require.True(t, created)

	created, err = svc.Emit(ctx, userID, types.NotificationTypePremiumExpired, nil)
	require.NoError(t, err)
	require.False(t, created, "repeat inside the window must be suppressed")
	require.EqualValues(t, 1, countByType(t, db, userID, types.NotificationTypePremiumExpired))

	// Once the window has passed, the same notification goes out again.
	later := NewService(db, zap.NewNop().Sugar(), clock.Fixed{T: now.Add(dedupeWindow + time.Hour)})
	created, err = later.Emit(ctx, userID, types.NotificationTypePremiumExpired, nil)
	require.NoError(t, err)
	require.True(t, created)
	require.EqualValues(t, 2, countByType(t, db, userID, types.NotificationTypePremiumExpired))
}

func TestEmitDedupeKeyedOnDaysLeft(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, zap.NewNop().Sugar(), clock.Fixed{T: time.Now()})
	userID := tool.GenerateUUIDV7()
	ctx := context.Background()

	created, err := svc.Emit(ctx, userID, types.NotificationTypePremiumExpiring, map[string]interface{}{"days_left": 3})
	require.NoError(t, err)
	require.True(t, created)

	created, err = svc.Emit(ctx, userID, types.NotificationTypePremiumExpiring, map[string]interface{}{"days_left": 3})
	require.NoError(t, err)
	require.False(t, created)

	// A different checkpoint is a different notification.
	created, err = svc.Emit(ctx, userID, types.NotificationTypePremiumExpiring, map[string]interface{}{"days_left": 1})
	require.NoError(t, err)
	require.True(t, created)
	require.EqualValues(t, 2, countByType(t, db, userID, types.NotificationTypePremiumExpiring))
}

func TestEmitNoDedupeForPaymentTypes(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, zap.NewNop().Sugar(), clock.Fixed{T: time.Now()})
	userID := tool.GenerateUUIDV7()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		created, err := svc.Emit(ctx, userID, types.NotificationTypePaymentSuccess, map[string]interface{}{"order_code": int64(1)})
		require.NoError(t, err)
		require.True(t, created)
	}
	require.EqualValues(t, 2, countByType(t, db, userID, types.NotificationTypePaymentSuccess))
}

func TestEmitDedupeScopedPerUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db, zap.NewNop().Sugar(), clock.Fixed{T: time.Now()})
	ctx := context.Background()

	first, second := tool.GenerateUUIDV7(), tool.GenerateUUIDV7()
	created, err := svc.Emit(ctx, first, types.NotificationTypePremiumExpired, nil)
	require.NoError(t, err)
	require.True(t, created)

	created, err = svc.Emit(ctx, second, types.NotificationTypePremiumExpired, nil)
	require.NoError(t, err)
	require.True(t, created, "suppression must not leak across users")
}
