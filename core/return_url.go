package core

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	// VenmoScheme is the URL scheme registered by the Venmo app
	VenmoScheme = "com.venmo.touch.v2"

	callbackHost   = "x-callback-url"
	authPath       = "/vzero/auth"
	returnPathRoot = "/vzero/auth/venmo/"
)

var (
	ErrReturnURLScheme  = errors.New("return url scheme mismatch")
	ErrReturnURLPath    = errors.New("return url path is not a venmo callback")
	ErrReturnURLState   = errors.New("return url state is missing")
	ErrReturnURLNonce   = errors.New("return url payment method nonce is missing")
	ErrReturnURLOutcome = errors.New("unknown return url outcome")
)

// ReturnPayload is the parsed content of a Venmo return URL
type ReturnPayload struct {
	Outcome      Outcome
	State        string
	Nonce        string
	Username     string
	ErrorMessage string
	ErrorCode    string
}

// BaseAppSwitchURL is the URL probed to detect whether Venmo is installed
func BaseAppSwitchURL() *url.URL {
	return &url.URL{Scheme: VenmoScheme, Host: callbackHost, Path: authPath}
}

// CallbackURL builds the x-success / x-error / x-cancel URL for an outcome
func CallbackURL(scheme string, outcome Outcome, state string) string {
	u := url.URL{
		Scheme: scheme,
		Host:   callbackHost,
		Path:   returnPathRoot + string(outcome),
	}
	q := url.Values{}
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String()
}

// IsReturnURL reports whether u looks like a Venmo callback for the scheme
func IsReturnURL(u *url.URL, scheme string) bool {
	if u == nil || scheme == "" {
		return false
	}
	return strings.EqualFold(u.Scheme, scheme) &&
		u.Host == callbackHost &&
		strings.HasPrefix(u.Path, returnPathRoot)
}

// ParseReturnURL validates and decodes a Venmo return URL
func ParseReturnURL(u *url.URL, scheme string) (*ReturnPayload, error) {
	if u == nil {
		return nil, ErrReturnURLPath
	}
	if !strings.EqualFold(u.Scheme, scheme) {
		return nil, fmt.Errorf("%w: got %q", ErrReturnURLScheme, u.Scheme)
	}
	if !IsReturnURL(u, scheme) {
		return nil, fmt.Errorf("%w: %s%s", ErrReturnURLPath, u.Host, u.Path)
	}

	query := u.Query()
	payload := &ReturnPayload{
		Outcome: Outcome(strings.TrimSuffix(strings.TrimPrefix(u.Path, returnPathRoot), "/")),
		State:   query.Get("state"),
	}
	if payload.State == "" {
		return nil, ErrReturnURLState
	}

	switch payload.Outcome {
	case OutcomeSuccess:
		payload.Nonce = query.Get("paymentMethodNonce")
		payload.Username = query.Get("username")
		if payload.Nonce == "" {
			return nil, ErrReturnURLNonce
		}
	case OutcomeError:
		payload.ErrorMessage = query.Get("errorMessage")
		payload.ErrorCode = query.Get("errorCode")
	case OutcomeCancel:
	default:
		return nil, fmt.Errorf("%w: %q", ErrReturnURLOutcome, payload.Outcome)
	}

	return payload, nil
}
