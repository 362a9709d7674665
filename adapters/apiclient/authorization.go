package apiclient

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/venmo/core"
)

var (
	ErrInvalidAuthorization = errors.New("authorization is neither a tokenization key nor a client token")
	ErrClientTokenExpired   = errors.New("client token has expired")
)

var tokenizationKeyPattern = regexp.MustCompile(`^([a-zA-Z0-9]+)_([a-zA-Z0-9]+)_([a-zA-Z0-9_]+)$`)

var gatewayURLs = map[string]string{
	"development": "http://localhost:3000",
	"sandbox":     "https://api.sandbox.braintreegateway.com",
	"production":  "https://api.braintreegateway.com",
}

// ClientTokenClaims are the claims of a JWT client token
type ClientTokenClaims struct {
	jwt.RegisteredClaims
	MerchantID string `json:"merchant_id"`
	GatewayURL string `json:"gateway_url,omitempty"`
}

// Authorization is a parsed tokenization key or client token
type Authorization struct {
	Mode       core.AuthMode
	Raw        string
	MerchantID string
	GatewayURL string
}

// ParseAuthorization detects the authorization mode of raw. Client tokens
// are not verified here, only the gateway can do that.
func ParseAuthorization(raw string) (*Authorization, error) {
	raw = strings.TrimSpace(raw)

	if m := tokenizationKeyPattern.FindStringSubmatch(raw); m != nil {
		gatewayURL, ok := gatewayURLs[m[1]]
		if !ok {
			return nil, fmt.Errorf("%w: unknown environment %q", ErrInvalidAuthorization, m[1])
		}
		return &Authorization{
			Mode:       core.AuthModeTokenizationKey,
			Raw:        raw,
			MerchantID: m[3],
			GatewayURL: gatewayURL,
		}, nil
	}

	if strings.Count(raw, ".") != 2 {
		return nil, ErrInvalidAuthorization
	}

	claims := &ClientTokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAuthorization, err)
	}
	if claims.MerchantID == "" {
		return nil, fmt.Errorf("%w: client token has no merchant_id", ErrInvalidAuthorization)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(time.Now()) {
		return nil, ErrClientTokenExpired
	}

	gatewayURL := claims.GatewayURL
	if gatewayURL == "" {
		gatewayURL = gatewayURLs["production"]
	}

	return &Authorization{
		Mode:       core.AuthModeClientToken,
		Raw:        raw,
		MerchantID: claims.MerchantID,
		GatewayURL: strings.TrimRight(gatewayURL, "/"),
	}, nil
}
