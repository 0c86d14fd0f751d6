package publisher

import "sync/atomic"

// State is the broker connection state. Connecting is transient and
// only visible while a connect attempt is in flight.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

// String returns the lowercase state name for logging.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// stateCell is an atomic holder for the connection state. It is
// written by connect results and by paho's disconnect callbacks, and
// read at the top of every publish cycle, so loads and stores must not
// tear across those goroutines.
type stateCell struct {
	v atomic.Int32
}

func (c *stateCell) Load() State {
	return State(c.v.Load())
}

func (c *stateCell) Store(s State) {
	c.v.Store(int32(s))
}
