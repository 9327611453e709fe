package gateway

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/inkwell-labs/inkwell/pkg/types"
)

// ErrUnavailable marks a gateway communication failure. It is transient and
// retryable; reconciliation must never read it as a definitive payment state.
var ErrUnavailable = errors.New("payment gateway unavailable")

// Status is the gateway-side view of a checkout.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

type CreateCheckoutRequest struct {
	OrderCode   int64
	Amount      int64
	Description string
}

type Checkout struct {
	CheckoutURL string
	OrderCode   int64
}

// Event is the provider-neutral shape of an asynchronous payment callback
// after the provider-specific parser verified its signature. Succeeded=false
// covers failure, cancellation and gateway-side expiry alike.
type Event struct {
	Provider  types.PaymentProvider
	OrderCode int64
	Succeeded bool
	Amount    int64
	Raw       json.RawMessage
}

// Gateway abstracts one payment provider. Implementations verify their own
// webhook signatures; reconciliation consumes already-verified Events.
type Gateway interface {
	Provider() types.PaymentProvider
	CreateCheckout(ctx context.Context, req *CreateCheckoutRequest) (*Checkout, error)
	GetStatus(ctx context.Context, orderCode int64) (Status, error)
}
