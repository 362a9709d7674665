package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/layer-3/venmo/config"
	"github.com/layer-3/venmo/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthCommand(t *testing.T) {
	configFile := ""
	cmd := newAuthCommand(&configFile)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"sandbox_abcd1234_merchant_id"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "tokenization_key")
	assert.Contains(t, out.String(), "merchant_id")
	assert.Contains(t, out.String(), "card detail: false")
}

func TestAuthCommandRejectsGarbage(t *testing.T) {
	configFile := ""
	cmd := newAuthCommand(&configFile)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"not an authorization"})

	assert.Error(t, cmd.Execute())
}

func TestNewStateTokenizerEphemeral(t *testing.T) {
	tok, err := newStateTokenizer("")
	require.NoError(t, err)

	now := time.Now()
	state, err := tok.SwitchRequestToState(&core.SwitchRequest{ID: "id", IssuedAt: now, ExpiresAt: now.Add(time.Minute)})
	require.NoError(t, err)

	req, err := tok.StateToSwitchRequest(state)
	require.NoError(t, err)
	assert.Equal(t, "id", req.ID)
}

func TestNewStateTokenizerMissingKeyFile(t *testing.T) {
	_, err := newStateTokenizer("/does/not/exist.pem")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := newLogger(&config.Config{Env: "production", LogLevel: "warn"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))

	_, err = newLogger(&config.Config{Env: "local", LogLevel: "loud"})
	assert.Error(t, err)
}
