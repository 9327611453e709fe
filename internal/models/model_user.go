package models

import (
	"math"
	"time"

	"github.com/inkwell-labs/inkwell/pkg/types"
)

// User carries the account plus its premium plan state. Plan state is lazily
// consistent: once premium_expires_at passes, the row keeps plan=premium until
// the expiry sweeper downgrades it, so every entitlement decision must go
// through IsPremiumActive with an explicit now.
type User struct {
	ID           string     `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Email        string     `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	DisplayName  string     `gorm:"column:display_name;type:varchar(255);not null" json:"display_name"`
	Role         types.Role `gorm:"column:role;type:varchar(32);not null;default:'user'" json:"role"`
	Plan         types.Plan `gorm:"column:plan;type:varchar(32);not null;default:'free'" json:"plan"`
	// PremiumStartedAt is set on each upgrade and cleared on downgrade.
	PremiumStartedAt *time.Time `gorm:"column:premium_started_at;default:null" json:"premium_started_at"`
	// PremiumExpiresAt is premium_started_at + grant duration; nil while free.
	PremiumExpiresAt *time.Time `gorm:"column:premium_expires_at;default:null;index" json:"premium_expires_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// IsPremiumActive is the entitlement check: premium label AND expiry in the
// future. The stored plan field alone is display-only.
func (u *User) IsPremiumActive(now time.Time) bool {
	return u != nil &&
		u.Plan == types.PlanPremium &&
		u.PremiumExpiresAt != nil &&
		now.Before(*u.PremiumExpiresAt)
}

// DaysLeft reports remaining premium days rounded up, so 30 minutes left
// still shows as 1 day. Zero when not active.
func (u *User) DaysLeft(now time.Time) int {
	if !u.IsPremiumActive(now) {
		return 0
	}
	left := u.PremiumExpiresAt.Sub(now)
	return int(math.Ceil(left.Hours() / 24))
}

func (u *User) IsExpiringSoon(now time.Time) bool {
	return u.IsPremiumActive(now) && u.DaysLeft(now) <= 7
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == types.RoleAdmin }
