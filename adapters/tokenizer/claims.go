package tokenizer

import "github.com/golang-jwt/jwt/v5"

// StateClaims combines standard claims with app switch specific ones
type StateClaims struct {
	jwt.RegisteredClaims
	MerchantID      string `json:"mid,omitempty"`
	ReturnURLScheme string `json:"rus"`
}
