package ports

import (
	"context"
	"errors"
	"time"
)

// ErrStateConsumed is returned by ConsumeState when the state was already used
var ErrStateConsumed = errors.New("return state already consumed")

// Store records return states that have already been consumed
type Store interface {
	ConsumeState(ctx context.Context, stateID string, expiry time.Duration) error
	IsStateConsumed(ctx context.Context, stateID string) (bool, error)
}
