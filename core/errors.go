package core

import (
	"errors"
	"fmt"
)

// ErrorDomain identifies driver errors across package and process boundaries
const ErrorDomain = "com.braintreepayments.BTVenmoDriverErrorDomain"

// ErrorKind is the closed set of driver failure kinds
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindFeatureDisabled
	KindAppNotAvailable
	KindMissingDisplayName
	KindAppSwitchFailed
	KindInvalidReturnURL
)

var (
	ErrUnknown            = errors.New("unknown venmo error")
	ErrFeatureDisabled    = errors.New("venmo is not enabled for this merchant")
	ErrAppNotAvailable    = errors.New("venmo app is not installed")
	ErrMissingDisplayName = errors.New("host display name is required")
	ErrAppSwitchFailed    = errors.New("failed to switch to the venmo app")
	ErrInvalidReturnURL   = errors.New("invalid venmo return url")
)

var kindSentinels = map[ErrorKind]error{
	KindUnknown:            ErrUnknown,
	KindFeatureDisabled:    ErrFeatureDisabled,
	KindAppNotAvailable:    ErrAppNotAvailable,
	KindMissingDisplayName: ErrMissingDisplayName,
	KindAppSwitchFailed:    ErrAppSwitchFailed,
	KindInvalidReturnURL:   ErrInvalidReturnURL,
}

var kindNames = map[ErrorKind]string{
	KindUnknown:            "unknown",
	KindFeatureDisabled:    "feature_disabled",
	KindAppNotAvailable:    "app_not_available",
	KindMissingDisplayName: "missing_display_name",
	KindAppSwitchFailed:    "app_switch_failed",
	KindInvalidReturnURL:   "invalid_return_url",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Error is a tagged driver error
type Error struct {
	Kind    ErrorKind
	Message string // Human readable detail, may be empty
	Err     error  // Underlying cause, may be nil
}

// NewError builds an Error of the given kind
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	base := kindSentinels[e.Kind]
	if base == nil {
		base = ErrUnknown
	}
	msg := base.Error()
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Domain returns the stable error domain
func (e *Error) Domain() string {
	return ErrorDomain
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind
func (e *Error) Is(target error) bool {
	if sentinel, ok := kindSentinels[e.Kind]; ok && sentinel == target {
		return true
	}
	return false
}

// KindOf extracts the kind of a driver error, KindUnknown otherwise
func KindOf(err error) ErrorKind {
	var driverErr *Error
	if errors.As(err, &driverErr) {
		return driverErr.Kind
	}
	return KindUnknown
}
