package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/layer-3/venmo/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gateway struct {
	server        *httptest.Server
	configHits    atomic.Int32
	lastClientKey atomic.Value
	lastBearer    atomic.Value
}

func newGateway(t *testing.T, configBody string, configStatus int) *gateway {
	t.Helper()
	g := &gateway{}
	mux := http.NewServeMux()
	mux.HandleFunc("/merchants/merchant_id/client_api/v1/configuration", func(w http.ResponseWriter, r *http.Request) {
		g.configHits.Add(1)
		g.lastClientKey.Store(r.Header.Get("Client-Key"))
		g.lastBearer.Store(r.Header.Get("Authorization"))
		w.WriteHeader(configStatus)
		w.Write([]byte(configBody))
	})
	mux.HandleFunc("/merchants/merchant_id/client_api/v1/payment_methods/fake-nonce", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"paymentMethods":[{"nonce":"fake-nonce","description":"ending in 11","details":{"cardType":"Visa","lastTwo":"11"}}]}`))
	})
	g.server = httptest.NewServer(mux)
	t.Cleanup(g.server.Close)
	return g
}

const venmoConfig = `{"merchantId":"merchant_id","payWithVenmo":{"accessToken":"access-token","environment":"sandbox","merchantId":"venmo-merchant"}}`

func TestClientFetchConfiguration(t *testing.T) {
	g := newGateway(t, venmoConfig, http.StatusOK)
	c, err := New("sandbox_abcd_merchant_id", WithBaseURL(g.server.URL))
	require.NoError(t, err)

	cfg, err := c.FetchConfiguration(context.Background())
	require.NoError(t, err)

	assert.True(t, cfg.VenmoEnabled())
	assert.Equal(t, "venmo-merchant", cfg.MerchantID)
	assert.Equal(t, "access-token", cfg.VenmoAccessToken)
	assert.Equal(t, "sandbox", cfg.VenmoEnvironment)
	assert.Equal(t, "sandbox_abcd_merchant_id", g.lastClientKey.Load())
	assert.Equal(t, core.AuthModeTokenizationKey, c.AuthMode())
}

func TestClientCachesConfiguration(t *testing.T) {
	g := newGateway(t, venmoConfig, http.StatusOK)
	c, err := New("sandbox_abcd_merchant_id", WithBaseURL(g.server.URL))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := c.FetchConfiguration(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), g.configHits.Load())

	uncached, err := New("sandbox_abcd_merchant_id", WithBaseURL(g.server.URL), WithConfigurationTTL(0))
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := uncached.FetchConfiguration(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), g.configHits.Load())
}

func TestClientConfigurationWithoutVenmo(t *testing.T) {
	g := newGateway(t, `{"merchantId":"merchant_id"}`, http.StatusOK)
	c, err := New("sandbox_abcd_merchant_id", WithBaseURL(g.server.URL))
	require.NoError(t, err)

	cfg, err := c.FetchConfiguration(context.Background())
	require.NoError(t, err)
	assert.False(t, cfg.VenmoEnabled())
}

func TestClientConfigurationErrors(t *testing.T) {
	g := newGateway(t, `{"error":"boom"}`, http.StatusInternalServerError)
	c, err := New("sandbox_abcd_merchant_id", WithBaseURL(g.server.URL))
	require.NoError(t, err)

	_, err = c.FetchConfiguration(context.Background())
	assert.ErrorIs(t, err, ErrUnexpectedStatus)

	empty := newGateway(t, `{}`, http.StatusOK)
	c, err = New("sandbox_abcd_merchant_id", WithBaseURL(empty.server.URL))
	require.NoError(t, err)

	_, err = c.FetchConfiguration(context.Background())
	assert.ErrorIs(t, err, ErrMalformedConfiguration)
}

func TestClientFetchCardDetails(t *testing.T) {
	g := newGateway(t, venmoConfig, http.StatusOK)
	token := clientToken(t, "merchant_id", g.server.URL, time.Now().Add(time.Hour))
	c, err := New(token)
	require.NoError(t, err)
	assert.Equal(t, core.AuthModeClientToken, c.AuthMode())

	details, err := c.FetchCardDetails(context.Background(), "fake-nonce")
	require.NoError(t, err)
	assert.Equal(t, "Visa", details.Network)
	assert.Equal(t, "11", details.LastTwo)
	assert.Equal(t, "ending in 11", details.Description)

	_, err = c.FetchCardDetails(context.Background(), "unknown-nonce")
	assert.ErrorIs(t, err, ErrPaymentMethodNotFound)

	_, err = c.FetchConfiguration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+token, g.lastBearer.Load())
}
