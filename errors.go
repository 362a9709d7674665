package venmo

import (
	"github.com/layer-3/venmo/core"
	"github.com/layer-3/venmo/service"
)

// ErrorDomain identifies errors reported by the driver
const ErrorDomain = core.ErrorDomain

// Error is a driver error tagged with its kind
type Error = core.Error

// ErrorKind is the closed set of driver failure kinds
type ErrorKind = core.ErrorKind

const (
	KindUnknown            = core.KindUnknown
	KindFeatureDisabled    = core.KindFeatureDisabled
	KindAppNotAvailable    = core.KindAppNotAvailable
	KindMissingDisplayName = core.KindMissingDisplayName
	KindAppSwitchFailed    = core.KindAppSwitchFailed
	KindInvalidReturnURL   = core.KindInvalidReturnURL
)

var (
	// ErrUnknown matches any error of kind KindUnknown
	ErrUnknown = core.ErrUnknown

	// ErrFeatureDisabled is returned when Venmo is not enabled for the merchant
	ErrFeatureDisabled = core.ErrFeatureDisabled

	// ErrAppNotAvailable is returned when the Venmo app cannot be launched
	ErrAppNotAvailable = core.ErrAppNotAvailable

	// ErrMissingDisplayName is returned when the host app has no display name
	ErrMissingDisplayName = core.ErrMissingDisplayName

	// ErrAppSwitchFailed is returned when the app switch could not be performed
	ErrAppSwitchFailed = core.ErrAppSwitchFailed

	// ErrInvalidReturnURL is returned when the return URL cannot be trusted
	ErrInvalidReturnURL = core.ErrInvalidReturnURL

	// ErrTokenizationInProgress rejects a second concurrent tokenization
	ErrTokenizationInProgress = service.ErrTokenizationInProgress

	// ErrAPIClientRequired is returned by New without an API client
	ErrAPIClientRequired = service.ErrAPIClientRequired
)

// KindOf reports the kind of a driver error
func KindOf(err error) ErrorKind {
	return core.KindOf(err)
}
