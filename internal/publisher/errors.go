package publisher

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned by publishTick when no broker session is
// established. It is an expected, frequently-hit branch during outages
// and never terminates the run loop.
var ErrNotConnected = errors.New("not connected to broker")

// ErrConnectTimeout is returned when the broker's CONNACK does not
// arrive within the configured connect timeout.
var ErrConnectTimeout = errors.New("timed out waiting for broker acknowledgment")

// ConnectRefusedError reports that the broker rejected the session
// with a non-zero CONNACK reason code.
type ConnectRefusedError struct {
	Code byte
}

func (e *ConnectRefusedError) Error() string {
	return fmt.Sprintf("broker refused connection (reason code %d)", e.Code)
}

// BrokerRejectedError reports that the broker acknowledged a publish
// with an error reason code. The session itself is still alive — the
// broker answered — so this is logged and the loop continues.
type BrokerRejectedError struct {
	Code byte
}

func (e *BrokerRejectedError) Error() string {
	return fmt.Sprintf("broker rejected publish (reason code %d)", e.Code)
}
