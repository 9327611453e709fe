package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inkwell-labs/inkwell/internal/app/service/quota"
	"github.com/inkwell-labs/inkwell/internal/models"
	"github.com/inkwell-labs/inkwell/internal/platform/ai"
	"github.com/inkwell-labs/inkwell/pkg/logctx"
	"github.com/inkwell-labs/inkwell/pkg/tool"
)

var (
	ErrEntryNotFound = errors.New("journal entry not found")
	ErrInvalidMood   = errors.New("invalid mood")
	ErrEmptyContent  = errors.New("journal content must not be empty")
)

const maxContentLength = 50_000

// Service owns journal entries. Creation and AI suggestions are the two
// quota-metered actions: the quota is checked before the action and consumed
// only after it succeeded, so a failed write never burns an allowance.
type Service struct {
	db     *gorm.DB
	log    *zap.SugaredLogger
	quotas *quota.Service
	ai     ai.Provider
}

func NewService(db *gorm.DB, log *zap.SugaredLogger, quotas *quota.Service, aip ai.Provider) *Service {
	return &Service{db: db, log: log, quotas: quotas, ai: aip}
}

type CreateRequest struct {
	Title   string      `json:"title"`
	Content string      `json:"content"`
	Mood    models.Mood `json:"mood"`
}

// Create writes a new entry for user. Sentiment analysis is best-effort; an
// AI outage never blocks journaling.
func (s *Service) Create(ctx context.Context, user *models.User, req *CreateRequest) (*models.JournalEntry, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyContent
	}
	if len(req.Content) > maxContentLength {
		return nil, fmt.Errorf("journal content too long: %d bytes", len(req.Content))
	}
	if req.Mood != "" && !req.Mood.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMood, req.Mood)
	}

	if err := s.quotas.Check(ctx, user, quota.ActionJournalCreate); err != nil {
		return nil, err
	}

	entry := &models.JournalEntry{
		ID:      tool.GenerateUUIDV7(),
		UserID:  user.ID,
		Title:   strings.TrimSpace(req.Title),
		Content: req.Content,
		Mood:    req.Mood,
	}
	if label, score, err := s.ai.Sentiment(ctx, req.Content); err != nil {
		logctx.FromCtx(ctx, s.log).Warnf("sentiment analysis failed: %v", err)
	} else {
		entry.SentimentLabel = label
		entry.SentimentScore = score
	}

	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create journal entry: %w", err)
	}
	if err := s.quotas.Consume(ctx, user.ID, quota.ActionJournalCreate); err != nil {
		// The entry exists; losing one ledger tick undercounts in the user's
		// favor and is preferable to a phantom rollback.
		logctx.FromCtx(ctx, s.log).Errorf("failed to consume journal quota: %v", err)
	}
	return entry, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*models.JournalEntry, error) {
	var entry models.JournalEntry
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load journal entry: %w", err)
	}
	return &entry, nil
}

type ListParams struct {
	Mood   models.Mood
	Limit  int
	Offset int
}

func (s *Service) List(ctx context.Context, userID string, params ListParams) ([]models.JournalEntry, int64, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}
	q := s.db.WithContext(ctx).Model(&models.JournalEntry{}).Where("user_id = ?", userID)
	if params.Mood != "" {
		q = q.Where("mood = ?", params.Mood)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count journal entries: %w", err)
	}
	var rows []models.JournalEntry
	if err := q.Order("created_at DESC").Limit(params.Limit).Offset(params.Offset).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list journal entries: %w", err)
	}
	return rows, total, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.JournalEntry{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete journal entry: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// Suggest produces a writing prompt for mood. Unlike sentiment this is a
// user-requested AI action, so it is quota-metered for free users. The quota
// is consumed only when the provider actually returned a prompt.
func (s *Service) Suggest(ctx context.Context, user *models.User, mood models.Mood) (string, error) {
	if mood != "" && !mood.Valid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidMood, mood)
	}
	if err := s.quotas.Check(ctx, user, quota.ActionAISuggestion); err != nil {
		return "", err
	}

	prompt, err := s.ai.WritingPrompt(ctx, string(mood))
	if err != nil {
		return "", fmt.Errorf("failed to generate writing prompt: %w", err)
	}
	if err := s.quotas.Consume(ctx, user.ID, quota.ActionAISuggestion); err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to consume suggestion quota: %v", err)
	}
	return prompt, nil
}
