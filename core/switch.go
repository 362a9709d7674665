package core

import "time"

// State is the driver's position in an app switch flow
type State int

const (
	StateIdle State = iota
	StateAwaitingSwitch
	StateSwitched
	StateAwaitingReturn
)

func (s State) String() string {
	switch s {
	case StateAwaitingSwitch:
		return "awaiting_switch"
	case StateSwitched:
		return "switched"
	case StateAwaitingReturn:
		return "awaiting_return"
	default:
		return "idle"
	}
}

// SwitchRequest represents one pending app switch
type SwitchRequest struct {
	ID              string    // Unique identifier, echoed back through the return state
	MerchantID      string    // Merchant the switch was issued for
	ReturnURLScheme string    // Scheme the return URL must use
	IssuedAt        time.Time // When the switch was initiated
	ExpiresAt       time.Time // After this the return state is rejected
}

// Outcome is what the Venmo app reported on return
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
	OutcomeCancel  Outcome = "cancel"
)
