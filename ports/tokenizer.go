package ports

import "github.com/layer-3/venmo/core"

// StateTokenizer converts between switch requests and return state tokens
type StateTokenizer interface {
	SwitchRequestToState(req *core.SwitchRequest) (string, error)
	StateToSwitchRequest(state string) (*core.SwitchRequest, error)
}
