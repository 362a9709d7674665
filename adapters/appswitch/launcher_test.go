package appswitch

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLauncher(t *testing.T) {
	l := NewLauncher("com.venmo.touch.v2")
	venmo, err := url.Parse("com.venmo.touch.v2://x-callback-url/vzero/auth")
	require.NoError(t, err)
	other, err := url.Parse("com.other.app://open")
	require.NoError(t, err)

	assert.True(t, l.CanOpenURL(venmo))
	assert.False(t, l.CanOpenURL(other))
	assert.False(t, l.CanOpenURL(nil))

	ctx := context.Background()
	assert.ErrorIs(t, l.OpenURL(ctx, other), ErrSchemeNotInstalled)
	require.NoError(t, l.OpenURL(ctx, venmo))

	got, err := l.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, venmo, got)

	l.Uninstall("COM.VENMO.TOUCH.V2")
	assert.False(t, l.CanOpenURL(venmo))
}

func TestLauncherNextHonoursContext(t *testing.T) {
	l := NewLauncher()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := l.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLauncherOutboxFull(t *testing.T) {
	l := NewLauncher("app")
	u, err := url.Parse("app://open")
	require.NoError(t, err)

	for i := 0; i < cap(l.outbox); i++ {
		require.NoError(t, l.OpenURL(context.Background(), u))
	}
	assert.ErrorIs(t, l.OpenURL(context.Background(), u), ErrOutboxFull)
}
