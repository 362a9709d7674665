package core

// AuthMode is how an API client authorizes against the gateway
type AuthMode string

const (
	// AuthModeTokenizationKey is a static, publishable tokenization key
	AuthModeTokenizationKey AuthMode = "tokenization_key"

	// AuthModeClientToken is a JWT client token issued by the merchant server
	AuthModeClientToken AuthMode = "client_token"
)

// SupportsCardDetails reports whether card details can be fetched in this mode
func (m AuthMode) SupportsCardDetails() bool {
	return m == AuthModeClientToken
}

func (m AuthMode) String() string {
	return string(m)
}

// Configuration is the merchant's remote gateway configuration
type Configuration struct {
	MerchantID       string
	VenmoAccessToken string
	VenmoEnvironment string
}

// VenmoEnabled reports whether Pay with Venmo is turned on for the merchant
func (c *Configuration) VenmoEnabled() bool {
	return c != nil && c.VenmoAccessToken != ""
}

// HostApp describes the application initiating the app switch
type HostApp struct {
	DisplayName     string // Shown by Venmo as the requesting app
	ReturnURLScheme string // Scheme Venmo uses to hand control back
}
