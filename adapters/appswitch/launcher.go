package appswitch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/layer-3/venmo/ports"
)

var (
	ErrSchemeNotInstalled = errors.New("no installed application handles the url scheme")
	ErrOutboxFull         = errors.New("app switch outbox is full")
)

// Launcher opens URLs for the schemes it knows to be installed. Opened URLs
// are queued on an outbox for the host surface to deliver, usually as a
// redirect.
type Launcher struct {
	mu      sync.RWMutex
	schemes map[string]struct{}
	outbox  chan *url.URL
}

var _ ports.AppSwitcher = (*Launcher)(nil)

// NewLauncher creates a launcher with the given installed schemes
func NewLauncher(schemes ...string) *Launcher {
	l := &Launcher{
		schemes: make(map[string]struct{}),
		outbox:  make(chan *url.URL, 8),
	}
	for _, scheme := range schemes {
		l.Install(scheme)
	}
	return l
}

// Install marks a scheme as launchable
func (l *Launcher) Install(scheme string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.schemes[strings.ToLower(scheme)] = struct{}{}
}

// Uninstall removes a scheme
func (l *Launcher) Uninstall(scheme string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.schemes, strings.ToLower(scheme))
}

// CanOpenURL reports whether an installed application handles u
func (l *Launcher) CanOpenURL(u *url.URL) bool {
	if u == nil {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.schemes[strings.ToLower(u.Scheme)]
	return ok
}

// OpenURL queues u for delivery
func (l *Launcher) OpenURL(ctx context.Context, u *url.URL) error {
	if !l.CanOpenURL(u) {
		return fmt.Errorf("%w: %s", ErrSchemeNotInstalled, u.Scheme)
	}

	select {
	case l.outbox <- u:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrOutboxFull
	}
}

// Opened delivers URLs as they are opened
func (l *Launcher) Opened() <-chan *url.URL {
	return l.outbox
}

// Next waits for the next opened URL
func (l *Launcher) Next(ctx context.Context) (*url.URL, error) {
	select {
	case u := <-l.outbox:
		return u, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
