package ports

import (
	"context"
	"net/url"
)

// AppSwitcher hands control to other installed applications
type AppSwitcher interface {
	CanOpenURL(u *url.URL) bool
	OpenURL(ctx context.Context, u *url.URL) error
}
