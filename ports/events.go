package ports

import "context"

// Analytics receives named driver analytics events
type Analytics interface {
	Track(ctx context.Context, event string) error
}
