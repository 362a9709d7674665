package tokenizer

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/venmo/core"
	"github.com/layer-3/venmo/ports"
)

// AudienceReturnState marks tokens carried through the Venmo return URL
const AudienceReturnState = "venmo:return-state"

var ErrInvalidState = errors.New("invalid return state")

// JWTTokenizer implements the StateTokenizer interface using ES256 JWTs
type JWTTokenizer struct {
	signKey *ecdsa.PrivateKey
}

// NewJWTTokenizer creates a new JWT tokenizer
func NewJWTTokenizer(signKey *ecdsa.PrivateKey) ports.StateTokenizer {
	return &JWTTokenizer{signKey: signKey}
}

// NewEphemeralJWTTokenizer creates a tokenizer with a freshly generated key.
// States issued by it do not survive a process restart.
func NewEphemeralJWTTokenizer() (ports.StateTokenizer, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate state key: %w", err)
	}
	return NewJWTTokenizer(key), nil
}

// SwitchRequestToState converts a SwitchRequest to a signed state token
func (j *JWTTokenizer) SwitchRequestToState(req *core.SwitchRequest) (string, error) {
	claims := StateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        req.ID,
			ExpiresAt: jwt.NewNumericDate(req.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(req.IssuedAt),
			Audience:  jwt.ClaimStrings{AudienceReturnState},
		},
		MerchantID:      req.MerchantID,
		ReturnURLScheme: req.ReturnURLScheme,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)

	signedToken, err := token.SignedString(j.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign state: %w", err)
	}

	return signedToken, nil
}

// StateToSwitchRequest verifies a state token and returns its SwitchRequest
func (j *JWTTokenizer) StateToSwitchRequest(state string) (*core.SwitchRequest, error) {
	token, err := jwt.ParseWithClaims(state, &StateClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &j.signKey.PublicKey, nil
	}, jwt.WithAudience(AudienceReturnState), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}

	if !token.Valid {
		return nil, ErrInvalidState
	}

	claims, ok := token.Claims.(*StateClaims)
	if !ok || claims.ID == "" {
		return nil, fmt.Errorf("%w: invalid claims", ErrInvalidState)
	}

	req := &core.SwitchRequest{
		ID:              claims.ID,
		MerchantID:      claims.MerchantID,
		ReturnURLScheme: claims.ReturnURLScheme,
		ExpiresAt:       claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		req.IssuedAt = claims.IssuedAt.Time
	}

	return req, nil
}
