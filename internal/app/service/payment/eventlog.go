package payment

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inkwell-labs/inkwell/internal/models"
	"github.com/inkwell-labs/inkwell/pkg/logctx"
	"github.com/inkwell-labs/inkwell/pkg/tool"
)

// EventLogger persists raw gateway deliveries for audit. Writes happen off
// the webhook path so a slow insert never delays the gateway acknowledgement.
type EventLogger struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewEventLogger(db *gorm.DB, log *zap.SugaredLogger) *EventLogger {
	return &EventLogger{db: db, log: log}
}

// Save asynchronously persists an event log row. Nil input is ignored.
func (l *EventLogger) Save(ctx context.Context, entry *models.PaymentEventLog) {
	go func() {
		if entry == nil {
			return
		}
		if entry.ID == "" {
			entry.ID = tool.GenerateUUIDV7()
		}
		if err := l.db.Save(entry).Error; err != nil {
			logctx.FromCtx(ctx, l.log).Errorf("failed to save payment event log: %v", err)
		}
	}()
}
