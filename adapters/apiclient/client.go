package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/layer-3/venmo/core"
	"github.com/layer-3/venmo/ports"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultConfigurationTTL is how long a fetched configuration is reused
	DefaultConfigurationTTL = 5 * time.Minute

	defaultTimeout = 30 * time.Second
	userAgent      = "venmo-driver-go/" + core.SDKVersion
)

var (
	ErrUnexpectedStatus       = errors.New("unexpected gateway response status")
	ErrNotFound               = errors.New("gateway resource not found")
	ErrPaymentMethodNotFound  = errors.New("payment method not found")
	ErrMalformedConfiguration = errors.New("malformed gateway configuration")
)

// Client talks to the gateway's client API
type Client struct {
	auth       *Authorization
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	configTTL  time.Duration

	group    singleflight.Group
	mu       sync.Mutex
	config   *core.Configuration
	cachedAt time.Time
}

var _ ports.APIClient = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the gateway URL derived from the authorization
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient sets the HTTP client used for gateway calls
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithConfigurationTTL sets how long configuration is cached. Zero disables caching.
func WithConfigurationTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl >= 0 {
			c.configTTL = ttl
		}
	}
}

// New creates a client from a tokenization key or client token
func New(authorization string, opts ...Option) (*Client, error) {
	auth, err := ParseAuthorization(authorization)
	if err != nil {
		return nil, err
	}

	c := &Client{
		auth:       auth,
		baseURL:    auth.GatewayURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
		configTTL:  DefaultConfigurationTTL,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// AuthMode reports how the client authorizes
func (c *Client) AuthMode() core.AuthMode {
	return c.auth.Mode
}

// MerchantID returns the merchant the client is authorized for
func (c *Client) MerchantID() string {
	return c.auth.MerchantID
}

type configurationResponse struct {
	MerchantID   string `json:"merchantId"`
	PayWithVenmo *struct {
		AccessToken string `json:"accessToken"`
		Environment string `json:"environment"`
		MerchantID  string `json:"merchantId"`
	} `json:"payWithVenmo"`
}

// FetchConfiguration returns the merchant configuration, reusing a cached
// copy while it is fresh. Concurrent fetches share one request.
func (c *Client) FetchConfiguration(ctx context.Context) (*core.Configuration, error) {
	if cfg := c.cachedConfiguration(); cfg != nil {
		return cfg, nil
	}

	v, err, _ := c.group.Do("configuration", func() (interface{}, error) {
		var resp configurationResponse
		if err := c.get(ctx, "v1/configuration", &resp); err != nil {
			return nil, err
		}

		cfg := &core.Configuration{MerchantID: resp.MerchantID}
		if resp.PayWithVenmo != nil {
			cfg.VenmoAccessToken = resp.PayWithVenmo.AccessToken
			cfg.VenmoEnvironment = resp.PayWithVenmo.Environment
			if resp.PayWithVenmo.MerchantID != "" {
				cfg.MerchantID = resp.PayWithVenmo.MerchantID
			}
		}
		if cfg.MerchantID == "" {
			return nil, ErrMalformedConfiguration
		}

		c.mu.Lock()
		c.config = cfg
		c.cachedAt = time.Now()
		c.mu.Unlock()

		return cfg, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch configuration: %w", err)
	}

	cfg := *v.(*core.Configuration)
	return &cfg, nil
}

func (c *Client) cachedConfiguration() *core.Configuration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.config == nil || c.configTTL == 0 || time.Since(c.cachedAt) > c.configTTL {
		return nil
	}
	cfg := *c.config
	return &cfg
}

type paymentMethodsResponse struct {
	PaymentMethods []struct {
		Nonce       string `json:"nonce"`
		Description string `json:"description"`
		Details     struct {
			CardType string `json:"cardType"`
			LastTwo  string `json:"lastTwo"`
		} `json:"details"`
	} `json:"paymentMethods"`
}

// FetchCardDetails looks up the card behind a payment method nonce
func (c *Client) FetchCardDetails(ctx context.Context, nonce string) (*core.CardDetails, error) {
	if nonce == "" {
		return nil, ErrPaymentMethodNotFound
	}

	var resp paymentMethodsResponse
	if err := c.get(ctx, "v1/payment_methods/"+url.PathEscape(nonce), &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrPaymentMethodNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment method: %w", err)
	}

	for _, pm := range resp.PaymentMethods {
		if pm.Nonce == nonce {
			return &core.CardDetails{
				Network:     pm.Details.CardType,
				LastTwo:     pm.Details.LastTwo,
				Description: pm.Description,
			}, nil
		}
	}

	return nil, ErrPaymentMethodNotFound
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	endpoint := fmt.Sprintf("%s/merchants/%s/client_api/%s",
		c.baseURL, url.PathEscape(c.auth.MerchantID), path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	switch c.auth.Mode {
	case core.AuthModeClientToken:
		req.Header.Set("Authorization", "Bearer "+c.auth.Raw)
	default:
		req.Header.Set("Client-Key", c.auth.Raw)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("gateway request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}

	return nil
}
