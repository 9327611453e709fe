package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock is the single time source for quota, membership, payment and sweeper
// logic. Today returns the server-local calendar date used as the usage
// ledger partition key; quota allowances reset when it rolls over.
type Clock interface {
	Now() time.Time
	Today() string
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Today() string { return time.Now().Format(time.DateOnly) }

func NewSystem() Clock { return systemClock{} }

// Fixed is a test clock pinned to T.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

func (f Fixed) Today() string { return f.T.Format(time.DateOnly) }

var Module = fx.Options(
	fx.Provide(NewSystem),
)
