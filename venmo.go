package venmo

import (
	"context"

	"github.com/layer-3/venmo/adapters/store"
	"github.com/layer-3/venmo/adapters/tokenizer"
	"github.com/layer-3/venmo/ports"
	"github.com/layer-3/venmo/service"
)

// New creates a driver sharing apiClient. Return states are signed with an
// ephemeral key and tracked in memory unless options say otherwise.
func New(apiClient ports.APIClient, opts ...Option) (*service.Driver, error) {
	if apiClient == nil {
		return nil, ErrAPIClientRequired
	}

	tok, err := tokenizer.NewEphemeralJWTTokenizer()
	if err != nil {
		return nil, err
	}

	defaults := []Option{
		service.WithStateTokenizer(tok),
		service.WithStore(store.NewMemoryStore()),
	}

	return service.NewDriver(apiClient, append(defaults, opts...)...)
}

// Tokenize runs one tokenization and waits for its outcome. A cancelled
// switch returns (nil, nil). If ctx ends first its error is returned and the
// switch stays pending on the driver.
func Tokenize(ctx context.Context, c Client) (*TokenizedCredential, error) {
	type outcome struct {
		credential *TokenizedCredential
		err        error
	}

	done := make(chan outcome, 1)
	c.TokenizeCredential(ctx, func(credential *TokenizedCredential, err error) {
		done <- outcome{credential, err}
	})

	select {
	case o := <-done:
		return o.credential, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
