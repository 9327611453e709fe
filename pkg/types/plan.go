package types

// Plan is the stored plan label on a user row. The stored value is lazily
// consistent: a premium user whose expiry has passed keeps the premium label
// until the sweeper downgrades them, so entitlement checks must go through
// User.IsPremiumActive rather than comparing against PlanPremium directly.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)
