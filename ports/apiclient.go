package ports

import (
	"context"

	"github.com/layer-3/venmo/core"
)

// APIClient is the gateway client shared between payment drivers
type APIClient interface {
	// AuthMode reports how the client authorizes against the gateway
	AuthMode() core.AuthMode

	// FetchConfiguration returns the merchant's remote configuration
	FetchConfiguration(ctx context.Context) (*core.Configuration, error)

	// FetchCardDetails looks up card details for a payment method nonce
	FetchCardDetails(ctx context.Context, nonce string) (*core.CardDetails, error)
}
