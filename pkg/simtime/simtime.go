// Package simtime defines the virtual clock unit shared by the event loop,
// the pub/sub fabric, and the gateway. Simulated time never touches the
// wall clock: every timestamp in this system is a nanosecond offset from an
// implementation-chosen epoch, advanced only by the event loop.
package simtime

import "math"

// TimestampNs is a nanosecond count on the simulator's virtual clock.
type TimestampNs int64

// Max is the sentinel a Replayable returns from NextEventTime once it is
// exhausted.
const Max TimestampNs = math.MaxInt64

// Zero is the virtual-clock epoch used by the reference dataset.
const Zero TimestampNs = 0

// Sub returns t-o, saturating rather than wrapping if either operand is Max.
func (t TimestampNs) Sub(o TimestampNs) TimestampNs {
	if t == Max || o == Max {
		return Max
	}
	return t - o
}
