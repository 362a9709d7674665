package core

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
)

// SDKVersion is reported to Venmo in the app switch metadata
const SDKVersion = "1.0.0"

// AppSwitchParams are the inputs to an app switch URL
type AppSwitchParams struct {
	Config    *Configuration
	Host      HostApp
	State     string
	SessionID string
}

type sdkMeta struct {
	SessionID   string `json:"sessionId"`
	Integration string `json:"integration"`
	Platform    string `json:"platform"`
	Version     string `json:"version"`
}

type sdkData struct {
	Meta sdkMeta `json:"_meta"`
}

// AppSwitchURL builds the URL that opens the Venmo app
func AppSwitchURL(p AppSwitchParams) (*url.URL, error) {
	if p.Config == nil {
		return nil, fmt.Errorf("app switch url: configuration is required")
	}

	data, err := json.Marshal(sdkData{Meta: sdkMeta{
		SessionID:   p.SessionID,
		Integration: "custom",
		Platform:    "go",
		Version:     SDKVersion,
	}})
	if err != nil {
		return nil, fmt.Errorf("app switch url: marshal sdk data: %w", err)
	}

	q := url.Values{}
	q.Set("x-success", CallbackURL(p.Host.ReturnURLScheme, OutcomeSuccess, p.State))
	q.Set("x-error", CallbackURL(p.Host.ReturnURLScheme, OutcomeError, p.State))
	q.Set("x-cancel", CallbackURL(p.Host.ReturnURLScheme, OutcomeCancel, p.State))
	q.Set("x-source", p.Host.DisplayName)
	q.Set("braintree_merchant_id", p.Config.MerchantID)
	q.Set("braintree_access_token", p.Config.VenmoAccessToken)
	q.Set("braintree_environment", p.Config.VenmoEnvironment)
	q.Set("braintree_sdk_data", base64.StdEncoding.EncodeToString(data))

	u := BaseAppSwitchURL()
	u.RawQuery = q.Encode()
	return u, nil
}
