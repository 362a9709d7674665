package venmo

import (
	"context"
	"net/url"

	"github.com/layer-3/venmo/core"
	"github.com/layer-3/venmo/service"
)

// Client represents the public interface of the Venmo driver
type Client interface {
	// IsAppSwitchAvailable reports whether the Venmo app can be launched
	IsAppSwitchAvailable() bool

	// TokenizeCredential starts an app switch, done is called exactly once
	TokenizeCredential(ctx context.Context, done service.Completion)

	// CanHandleReturnURL reports whether u is a Venmo return URL for the host
	CanHandleReturnURL(u *url.URL) bool

	// HandleReturnURL completes the pending tokenization from a return URL
	HandleReturnURL(ctx context.Context, u *url.URL) bool

	// ApplicationDidBecomeActive signals the host app is in the foreground
	ApplicationDidBecomeActive(ctx context.Context)

	// SetObserver registers lifecycle notifications
	SetObserver(o service.Observer) *service.Registration

	// State returns where the driver is in the app switch flow
	State() core.State

	// SwitchURL returns the app switch URL of the pending tokenization
	SwitchURL() *url.URL
}

var _ Client = (*service.Driver)(nil)

// TokenizedCredential is the result of a successful tokenization
type TokenizedCredential = core.TokenizedCredential

// HostApp describes the application launching Venmo
type HostApp = core.HostApp

// Option configures a driver
type Option = service.Option
