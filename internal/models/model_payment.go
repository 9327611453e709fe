package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/inkwell-labs/inkwell/pkg/types"
)

// Payment is one checkout attempt against a gateway. OrderCode is the
// correlation key the gateway echoes back in webhooks and status queries.
// Rows are never hard-deleted; status moves pending -> success|failed|expired
// exactly once.
type Payment struct {
	ID        string                `gorm:"column:id;type:uuid;primary_key;index:idx_payment_user_id,priority:2,sort:desc" json:"id"`
	UserID    string                `gorm:"column:user_id;type:uuid;not null;index:idx_payment_user_id,priority:1" json:"user_id"`
	OrderCode int64                 `gorm:"column:order_code;not null;uniqueIndex" json:"order_code"`
	Provider  types.PaymentProvider `gorm:"column:provider;type:varchar(32);not null" json:"provider"`
	Type      types.PaymentType     `gorm:"column:type;type:varchar(64);not null" json:"type"`
	Status    types.PaymentStatus   `gorm:"column:status;type:varchar(32);not null;index" json:"status"`
	// Amount is in VND (no minor unit).
	Amount       int64  `gorm:"column:amount;type:bigint;not null" json:"amount"`
	DurationDays int    `gorm:"column:duration_days;not null" json:"duration_days"`
	PaymentURL   string `gorm:"column:payment_url;type:text" json:"payment_url"`
	// ExpiresAt is the application-level checkout deadline, checked lazily on
	// read; no timer enforces it.
	ExpiresAt   time.Time      `gorm:"column:expires_at;not null" json:"expires_at"`
	PaidAt      *time.Time     `gorm:"column:paid_at;default:null" json:"paid_at"`
	CancelledAt *time.Time     `gorm:"column:cancelled_at;default:null" json:"cancelled_at"`
	Extra       datatypes.JSON `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Payment) TableName() string { return "payment" }

// IsExpired reports whether a still-pending checkout has outlived its
// deadline. Terminal payments are never considered expired again.
func (p *Payment) IsExpired(now time.Time) bool {
	return p != nil && p.Status == types.PaymentStatusPending && now.After(p.ExpiresAt)
}
