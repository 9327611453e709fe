package payment

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inkwell-labs/inkwell/internal/app/service/membership"
	"github.com/inkwell-labs/inkwell/internal/app/service/notification"
	"github.com/inkwell-labs/inkwell/internal/models"
	"github.com/inkwell-labs/inkwell/internal/platform/gateway"
	"github.com/inkwell-labs/inkwell/pkg/clock"
	"github.com/inkwell-labs/inkwell/pkg/config"
	"github.com/inkwell-labs/inkwell/pkg/logctx"
	"github.com/inkwell-labs/inkwell/pkg/tool"
	"github.com/inkwell-labs/inkwell/pkg/types"
)

// ErrAlreadyPaid is returned by CreateCheckout when the user's previous
// pending checkout turned out to be paid at the gateway. The settlement has
// been applied; the client should refresh membership state instead of paying
// again.
var ErrAlreadyPaid = errors.New("previous checkout already paid")

// Service owns checkout creation and payment reconciliation. It is the only
// writer of payment status transitions; all transitions leave pending exactly
// once and terminal rows are never modified again.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	log      *zap.SugaredLogger
	clk      clock.Clock
	gateways map[types.PaymentProvider]gateway.Gateway
	members  *membership.Service
	notifier *notification.Service
}

func NewService(
	cfg *config.Config,
	db *gorm.DB,
	log *zap.SugaredLogger,
	clk clock.Clock,
	payos *gateway.PayOSClient,
	vnpay *gateway.VNPayClient,
	members *membership.Service,
	notifier *notification.Service,
) *Service {
	return &Service{
		cfg: cfg, db: db, log: log, clk: clk,
		gateways: map[types.PaymentProvider]gateway.Gateway{
			types.PaymentProviderPayOS: payos,
			types.PaymentProviderVNPay: vnpay,
		},
		members:  members,
		notifier: notifier,
	}
}

func (s *Service) gatewayFor(provider types.PaymentProvider) (gateway.Gateway, error) {
	gw, ok := s.gateways[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
	return gw, nil
}

// CreateCheckout starts a premium subscription checkout at provider. An
// existing pending checkout is resolved first: still-live ones are returned
// as-is (Reused), ones past the deadline are reconciled against the gateway
// before a replacement is created. Gateway outages surface as
// gateway.ErrUnavailable and are retryable.
func (s *Service) CreateCheckout(ctx context.Context, user *models.User, provider types.PaymentProvider) (*CheckoutResult, error) {
	gw, err := s.gatewayFor(provider)
	if err != nil {
		return nil, err
	}

	reused, err := s.resolveStalePending(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if reused != nil {
		return &CheckoutResult{Payment: reused, Reused: true}, nil
	}

	now := s.clk.Now()
	p := &models.Payment{
		ID:           tool.GenerateUUIDV7(),
		UserID:       user.ID,
		OrderCode:    tool.GenerateOrderCode(now),
		Provider:     provider,
		Type:         types.PaymentTypePremiumSubscription,
		Status:       types.PaymentStatusPending,
		Amount:       s.cfg.Premium.PriceVND,
		DurationDays: s.cfg.Premium.DurationDays,
		ExpiresAt:    now.Add(s.cfg.Premium.CheckoutTimeout()),
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	checkout, err := gw.CreateCheckout(ctx, &gateway.CreateCheckoutRequest{
		OrderCode:   p.OrderCode,
		Amount:      p.Amount,
		Description: fmt.Sprintf("Inkwell Premium %d days", p.DurationDays),
	})
	if err != nil {
		// The row never reached the gateway; close it so it cannot block the
		// next checkout.
		if _, ferr := s.transition(ctx, s.db, p, types.PaymentStatusFailed); ferr != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to close unregistered payment %d: %v", p.OrderCode, ferr)
		}
		return nil, fmt.Errorf("failed to create %s checkout: %w", provider, err)
	}

	p.PaymentURL = checkout.CheckoutURL
	if err := s.db.WithContext(ctx).Model(p).Update("payment_url", p.PaymentURL).Error; err != nil {
		return nil, fmt.Errorf("failed to store checkout url: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("checkout created",
		"user_id", user.ID, "order_code", p.OrderCode, "provider", provider, "amount", p.Amount)
	return &CheckoutResult{Payment: p}, nil
}

type CheckoutResult struct {
	Payment *models.Payment
	// Reused is set when the returned payment is an earlier still-live
	// checkout rather than a newly created one.
	Reused bool
}

// resolveStalePending settles the user's pending checkout, if any. A checkout
// still inside its deadline is returned for reuse. One past the deadline is
// checked against the gateway: paid settles as success (the money moved),
// anything else settles as expired. Returns (nil, nil) when the way is clear
// for a new checkout.
func (s *Service) resolveStalePending(ctx context.Context, userID string) (*models.Payment, error) {
	var p models.Payment
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, types.PaymentStatusPending).
		Order("created_at DESC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up pending payment: %w", err)
	}

	now := s.clk.Now()
	if !p.IsExpired(now) {
		return &p, nil
	}

	gw, err := s.gatewayFor(p.Provider)
	if err != nil {
		return nil, err
	}
	status, err := gw.GetStatus(ctx, p.OrderCode)
	if err != nil {
		// Cannot tell whether the stale checkout was paid; retryable.
		return nil, fmt.Errorf("failed to resolve stale checkout %d: %w", p.OrderCode, err)
	}

	switch status {
	case gateway.StatusPaid:
		if _, err := s.settleSuccess(ctx, &p); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyPaid
	default:
		// Pending past the deadline, cancelled, or expired at the gateway:
		// the checkout is dead either way.
		applied, err := s.transition(ctx, s.db, &p, types.PaymentStatusExpired)
		if err != nil {
			return nil, err
		}
		if !applied {
			// A webhook settled it while we were asking the gateway.
			if err := s.db.WithContext(ctx).First(&p, "id = ?", p.ID).Error; err != nil {
				return nil, fmt.Errorf("failed to reload payment: %w", err)
			}
			if p.Status == types.PaymentStatusSuccess {
				return nil, ErrAlreadyPaid
			}
		}
		return nil, nil
	}
}

// ReconcileOutcome reports what a gateway event did to local state.
type ReconcileOutcome struct {
	Payment *models.Payment
	// Applied is set when this event performed the pending->terminal
	// transition. Duplicate is set when the payment was already terminal and
	// the event changed nothing.
	Applied   bool
	Duplicate bool
}

// Reconcile applies a verified gateway event to the matching payment.
// Unknown order codes return ErrPaymentNotFound, which webhook handlers treat
// as benign. Replays of already-settled payments return Duplicate without
// touching anything, so webhook delivery is idempotent. A failure event never
// downgrades a user; it only closes the payment row.
func (s *Service) Reconcile(ctx context.Context, ev *gateway.Event) (*ReconcileOutcome, error) {
	var p models.Payment
	err := s.db.WithContext(ctx).
		Where("provider = ? AND order_code = ?", ev.Provider, ev.OrderCode).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s order %d", ErrPaymentNotFound, ev.Provider, ev.OrderCode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up payment: %w", err)
	}

	if p.Status.Terminal() {
		logctx.FromCtx(ctx, s.log).Infow("duplicate payment event ignored",
			"order_code", ev.OrderCode, "status", p.Status)
		return &ReconcileOutcome{Payment: &p, Duplicate: true}, nil
	}

	if !ev.Succeeded {
		applied, err := s.transition(ctx, s.db, &p, types.PaymentStatusFailed)
		if err != nil {
			return nil, err
		}
		if !applied {
			// Lost the guard to a concurrent settlement; report the row as
			// it actually ended up, without a failure notification.
			if err := s.db.WithContext(ctx).First(&p, "id = ?", p.ID).Error; err != nil {
				return nil, fmt.Errorf("failed to reload payment: %w", err)
			}
			return &ReconcileOutcome{Payment: &p, Duplicate: true}, nil
		}
		s.emit(ctx, p.UserID, types.NotificationTypePaymentFailed, map[string]interface{}{
			"order_code": p.OrderCode,
			"provider":   string(p.Provider),
		})
		return &ReconcileOutcome{Payment: &p, Applied: true}, nil
	}

	if ev.Amount > 0 && ev.Amount != p.Amount {
		logctx.FromCtx(ctx, s.log).Warnw("payment amount mismatch",
			"order_code", p.OrderCode, "expected", p.Amount, "got", ev.Amount)
	}

	applied, err := s.settleSuccess(ctx, &p)
	if err != nil {
		return nil, err
	}
	if !applied {
		return &ReconcileOutcome{Payment: &p, Duplicate: true}, nil
	}
	return &ReconcileOutcome{Payment: &p, Applied: true}, nil
}

// settleSuccess performs the pending->success transition and the premium
// upgrade in one transaction. The status update is guarded on the current
// status, so two racing events settle exactly one upgrade; the loser reports
// applied=false. A success event arriving after the local deadline is still
// honored: the gateway took the money, local expiry only gates new checkouts.
func (s *Service) settleSuccess(ctx context.Context, p *models.Payment) (applied bool, err error) {
	now := s.clk.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", p.ID, types.PaymentStatusPending).
			Updates(map[string]interface{}{
				"status":  types.PaymentStatusSuccess,
				"paid_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to settle payment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true
		p.Status = types.PaymentStatusSuccess
		p.PaidAt = &now

		if _, err := s.members.Upgrade(ctx, tx, p.UserID, p.DurationDays); err != nil {
			return err
		}
		return nil
	})
	if err != nil || !applied {
		return applied, err
	}

	s.emit(ctx, p.UserID, types.NotificationTypePaymentSuccess, map[string]interface{}{
		"order_code": p.OrderCode,
		"provider":   string(p.Provider),
		"amount":     p.Amount,
	})
	s.emit(ctx, p.UserID, types.NotificationTypePremiumUpgrade, map[string]interface{}{
		"duration_days": p.DurationDays,
		"source":        "payment",
	})
	logctx.FromCtx(ctx, s.log).Infow("payment settled",
		"order_code", p.OrderCode, "user_id", p.UserID, "amount", p.Amount)
	return true, nil
}

// transition moves p from pending to a terminal status, guarded on the
// current status. Losing the guard is not an error; it reports applied=false
// and the caller decides how to treat the concurrent settlement.
func (s *Service) transition(ctx context.Context, db *gorm.DB, p *models.Payment, to types.PaymentStatus) (applied bool, err error) {
	now := s.clk.Now()
	updates := map[string]interface{}{"status": to}
	if to == types.PaymentStatusFailed {
		updates["cancelled_at"] = now
	}
	res := db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ? AND status = ?", p.ID, types.PaymentStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("failed to transition payment to %s: %w", to, res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	p.Status = to
	if to == types.PaymentStatusFailed {
		p.CancelledAt = &now
	}
	return true, nil
}

// Cancel closes the user's current pending checkout. The money never moved,
// so the row goes to failed with a cancellation timestamp and no notification
// is emitted.
func (s *Service) Cancel(ctx context.Context, userID string) (*models.Payment, error) {
	p, err := s.pendingFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	applied, err := s.transition(ctx, s.db, p, types.PaymentStatusFailed)
	if err != nil {
		return nil, err
	}
	if !applied {
		if err := s.db.WithContext(ctx).First(p, "id = ?", p.ID).Error; err != nil {
			return nil, fmt.Errorf("failed to reload payment: %w", err)
		}
	}
	return p, nil
}

// Current returns the user's live pending checkout. A checkout past its
// deadline is settled as expired right here, so clients never see a pending
// payment they can no longer complete.
func (s *Service) Current(ctx context.Context, userID string) (*models.Payment, error) {
	p, err := s.pendingFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.IsExpired(s.clk.Now()) {
		if _, err := s.transition(ctx, s.db, p, types.PaymentStatusExpired); err != nil {
			return nil, err
		}
		return nil, ErrNoPendingPayment
	}
	return p, nil
}

func (s *Service) pendingFor(ctx context.Context, userID string) (*models.Payment, error) {
	var p models.Payment
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, types.PaymentStatusPending).
		Order("created_at DESC").
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoPendingPayment
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up pending payment: %w", err)
	}
	return &p, nil
}

// History lists the user's payments, newest first.
func (s *Service) History(ctx context.Context, userID string, limit, offset int) ([]models.Payment, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q := s.db.WithContext(ctx).Model(&models.Payment{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}
	var rows []models.Payment
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	return rows, total, nil
}

// filtersAnd combines multiple CommonFilter into a single AND expression.
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

type ScanPaymentsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanPaymentsResponse struct {
	Items []*models.Payment `json:"items"`
	Total int64             `json:"total"`
}

// ScanPayments is the admin listing with arbitrary column filters.
func (s *Service) ScanPayments(ctx context.Context, req *ScanPaymentsRequest) (*ScanPaymentsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.Payment{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	var rows []*models.Payment
	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if req.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{
			Column: clause.Column{Name: req.SortBy},
			Desc:   req.SortOrder != "asc",
		}}})
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return &ScanPaymentsResponse{Items: rows, Total: total}, nil
}

func (s *Service) emit(ctx context.Context, userID string, typ types.NotificationType, data map[string]interface{}) {
	if _, err := s.notifier.Emit(ctx, userID, typ, data); err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to emit %s notification: %v", typ, err)
	}
}
