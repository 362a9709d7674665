package core

// TokenizedCredential is the result of a successful Venmo app switch
type TokenizedCredential struct {
	Nonce       string // Payment method nonce standing in for the card
	Description string // Localized description, usually the Venmo username
	Username    string // Venmo username of the paying user
	CardNetwork string // Card network, only with client token authorization
	LastTwo     string // Last two card digits, only with client token authorization
}

// HasCardDetails reports whether network and last digits were populated
func (c *TokenizedCredential) HasCardDetails() bool {
	return c != nil && c.CardNetwork != "" && c.LastTwo != ""
}

// CardDetails is the gateway description of a tokenized card
type CardDetails struct {
	Network     string
	LastTwo     string
	Description string
}
