package service

import (
	"time"

	"github.com/layer-3/venmo/core"
	"github.com/layer-3/venmo/ports"
	"go.uber.org/zap"
)

const (
	// DefaultReturnGracePeriod is how long the driver waits for a return URL
	// after the host app comes back to the foreground
	DefaultReturnGracePeriod = 2 * time.Second

	// DefaultStateTTL bounds how long a return state stays acceptable
	DefaultStateTTL = 15 * time.Minute
)

// Option configures a Driver
type Option func(*Driver)

// WithHostApp sets the display name and return URL scheme
func WithHostApp(host core.HostApp) Option {
	return func(d *Driver) {
		d.host = host
	}
}

// WithAppSwitcher sets the mechanism used to open the Venmo app
func WithAppSwitcher(switcher ports.AppSwitcher) Option {
	return func(d *Driver) {
		d.switcher = switcher
	}
}

// WithStateTokenizer sets how return states are signed and verified
func WithStateTokenizer(tokenizer ports.StateTokenizer) Option {
	return func(d *Driver) {
		d.tokenizer = tokenizer
	}
}

// WithStore sets the consumed state registry
func WithStore(store ports.Store) Option {
	return func(d *Driver) {
		d.store = store
	}
}

// WithAnalytics sets the analytics sink
func WithAnalytics(analytics ports.Analytics) Option {
	return func(d *Driver) {
		d.analytics = analytics
	}
}

// WithLogger sets the driver logger
func WithLogger(logger *zap.Logger) Option {
	return func(d *Driver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithReturnGracePeriod sets the foreground grace period. Zero cancels
// immediately when the host app becomes active without a return URL.
func WithReturnGracePeriod(grace time.Duration) Option {
	return func(d *Driver) {
		if grace >= 0 {
			d.returnGrace = grace
		}
	}
}

// WithStateTTL sets how long a return state is accepted
func WithStateTTL(ttl time.Duration) Option {
	return func(d *Driver) {
		if ttl > 0 {
			d.stateTTL = ttl
		}
	}
}
