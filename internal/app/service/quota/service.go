package quota

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inkwell-labs/inkwell/internal/models"
	"github.com/inkwell-labs/inkwell/pkg/clock"
	"github.com/inkwell-labs/inkwell/pkg/logctx"
	"github.com/inkwell-labs/inkwell/pkg/tool"
)

// Service enforces the free-tier daily quotas on top of the usage ledger.
// Check runs before the protected action, Consume strictly after it
// succeeded; the two are deliberately not atomic with the protected write,
// trading exact counting on crash for availability.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	clk clock.Clock
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, clk clock.Clock) *Service {
	return &Service{db: db, log: log, clk: clk}
}

// Check decides whether user may perform action right now. Premium users are
// allowed unconditionally without touching the ledger; free users are checked
// against today's counters. Denials come back as *QuotaExceededError.
func (s *Service) Check(ctx context.Context, user *models.User, action Action) error {
	if user.IsPremiumActive(s.clk.Now()) {
		return nil
	}

	used, err := s.usedToday(ctx, user.ID, action)
	if err != nil {
		return err
	}

	limit := limitFor(action)
	if !Allowed(used, limit) {
		return &QuotaExceededError{Action: action, Limit: limit}
	}
	return nil
}

// Consume increments today's counter for action. The increment is a single
// atomic upsert so concurrent actions for the same user/day cannot lose
// counts. Call only after the protected action succeeded.
func (s *Service) Consume(ctx context.Context, userID string, action Action) error {
	column, err := counterColumn(action)
	if err != nil {
		return err
	}

	entry := &models.UsageLedger{
		ID:        tool.GenerateUUIDV7(),
		UserID:    userID,
		EntryDate: s.clk.Today(),
	}
	switch action {
	case ActionJournalCreate:
		entry.JournalsCreated = 1
	case ActionAISuggestion:
		entry.AISuggestionsUsed = 1
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "entry_date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			column: gorm.Expr(column + " + 1"),
		}),
	}).Create(entry).Error
	if err != nil {
		return fmt.Errorf("failed to increment usage ledger: %w", err)
	}
	return nil
}

// UsageStatus is the read surface shown to clients. Display only; the ledger
// is consulted again at the point of the protected action.
type UsageStatus struct {
	Date      string        `json:"date"`
	Unlimited bool          `json:"unlimited"`
	Journal   UsageCounting `json:"journal"`
	AI        UsageCounting `json:"ai_suggestion"`
}

type UsageCounting struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

func (s *Service) Usage(ctx context.Context, user *models.User) (*UsageStatus, error) {
	status := &UsageStatus{
		Date:    s.clk.Today(),
		Journal: UsageCounting{Limit: JournalDailyLimit},
		AI:      UsageCounting{Limit: AISuggestionDailyLimit},
	}
	if user.IsPremiumActive(s.clk.Now()) {
		status.Unlimited = true
		return status, nil
	}

	entry, err := s.todayEntry(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		status.Journal.Used = entry.JournalsCreated
		status.AI.Used = entry.AISuggestionsUsed
	}
	status.Journal.Remaining = remaining(status.Journal.Used, JournalDailyLimit)
	status.AI.Remaining = remaining(status.AI.Used, AISuggestionDailyLimit)
	return status, nil
}

func (s *Service) usedToday(ctx context.Context, userID string, action Action) (int, error) {
	entry, err := s.todayEntry(ctx, userID)
	if err != nil || entry == nil {
		return 0, err
	}
	switch action {
	case ActionJournalCreate:
		return entry.JournalsCreated, nil
	case ActionAISuggestion:
		return entry.AISuggestionsUsed, nil
	default:
		return 0, fmt.Errorf("unknown quota action: %s", action)
	}
}

func (s *Service) todayEntry(ctx context.Context, userID string) (*models.UsageLedger, error) {
	var entry models.UsageLedger
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND entry_date = ?", userID, s.clk.Today()).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to read usage ledger: %v", err)
		return nil, fmt.Errorf("failed to read usage ledger: %w", err)
	}
	return &entry, nil
}

func counterColumn(action Action) (string, error) {
	switch action {
	case ActionJournalCreate:
		return "journals_created", nil
	case ActionAISuggestion:
		return "ai_suggestions_used", nil
	default:
		return "", fmt.Errorf("unknown quota action: %s", action)
	}
}

func remaining(used, limit int) int {
	if r := limit - used; r > 0 {
		return r
	}
	return 0
}
