package tool

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// orderCodeTailRange sizes the random tail under each creation second. The
// resulting codes stay below PayOS's 2^53 order code ceiling through 2255.
const orderCodeTailRange = 1_000_000

// GenerateOrderCode produces the numeric order code sent to the payment
// gateways as correlation key. Gateways require a positive integer unique per
// checkout; second-resolution timestamp plus a six-digit random tail keeps
// same-second collisions out of reach for a single merchant account.
func GenerateOrderCode(now time.Time) int64 {
	return now.Unix()*orderCodeTailRange + rand.Int63n(orderCodeTailRange)
}

// OrderCodeTime recovers the creation second embedded in an order code.
func OrderCodeTime(orderCode int64) time.Time {
	return time.Unix(orderCode/orderCodeTailRange, 0)
}
