package notification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/inkwell-labs/inkwell/internal/models"
	"github.com/inkwell-labs/inkwell/pkg/clock"
	"github.com/inkwell-labs/inkwell/pkg/logctx"
	"github.com/inkwell-labs/inkwell/pkg/tool"
	"github.com/inkwell-labs/inkwell/pkg/types"
)

const dedupeWindow = 24 * time.Hour

// Service writes and serves user notifications. Emission is best-effort from
// the caller's point of view: plan transitions never roll back because a
// notification insert failed.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	clk clock.Clock
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, clk clock.Clock) *Service {
	return &Service{db: db, log: log, clk: clk}
}

// Emit persists a notification of typ for userID and reports whether a row
// was actually written. Types under duplicate suppression are skipped when an
// equivalent notification was already written inside the last 24 hours;
// skipping returns (false, nil) so callers with side channels (mail) can stay
// quiet too.
func (s *Service) Emit(ctx context.Context, userID string, typ types.NotificationType, data map[string]interface{}) (bool, error) {
	if data == nil {
		data = map[string]interface{}{}
	}

	if deduped(typ) {
		dup, err := s.recentDuplicate(ctx, userID, typ, data)
		if err != nil {
			return false, err
		}
		if dup {
			logctx.FromCtx(ctx, s.log).Debugw("notification suppressed by dedupe window",
				"user_id", userID, "type", typ)
			return false, nil
		}
	}

	title, message := template(typ, data)
	n := &models.Notification{
		ID:      tool.GenerateUUIDV7(),
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		Data:    datatypes.JSONMap(data),
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return false, fmt.Errorf("failed to create notification: %w", err)
	}
	return true, nil
}

func (s *Service) recentDuplicate(ctx context.Context, userID string, typ types.NotificationType, data map[string]interface{}) (bool, error) {
	since := s.clk.Now().Add(-dedupeWindow)
	q := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND type = ? AND created_at > ?", userID, typ, since)
	for _, field := range dedupeKeyFields(typ) {
		// CAST keeps the comparison textual on every dialect; sqlite's ->>
		// yields typed values while postgres always yields text.
		q = q.Where(fmt.Sprintf("CAST(data ->> '%s' AS TEXT) = ?", field), fmt.Sprint(data[field]))
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check notification dedupe window: %w", err)
	}
	return count > 0, nil
}

type ListParams struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

func (s *Service) List(ctx context.Context, userID string, params ListParams) ([]models.Notification, int64, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}
	q := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
	if params.UnreadOnly {
		q = q.Where("is_read = false")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	var items []models.Notification
	err := q.Order("created_at DESC").Limit(params.Limit).Offset(params.Offset).Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return items, total, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead flags one notification as read. Marking an already-read
// notification is a no-op; a foreign ID is reported as not found.
func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	now := s.clk.Now()
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	now := s.clk.Now()
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete notification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
