// Package telemetry provides execution and trace identifiers used to tag
// a run and its orders for logging, independent of the
// simulator's own deterministic virtual clock.
package telemetry

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ExecutionID identifies one run of the simulator.
type ExecutionID = uuid.UUID

var (
	executionID     ExecutionID
	executionIDOnce sync.Once
)

// GetExecutionID returns the process-wide execution id, generating it on
// first use.
func GetExecutionID() ExecutionID {
	executionIDOnce.Do(func() {
		executionID = uuid.Must(uuid.NewV7())
	})
	return executionID
}

// TraceID tags an individual order within a run.
// Unlike the reference utility this is derived from a monotonic counter
// rather than wall-clock time, so tagging never depends on anything
// outside the simulator's own deterministic virtual clock.
type TraceID = uint64

var sequence atomic.Uint64

// NextTraceID returns a fresh, process-wide unique TraceID.
func NextTraceID() TraceID {
	return sequence.Add(1)
}
