// Package serverstate tracks process-wide lifecycle state: readiness,
// draining, and the number of streams currently being relayed.
package serverstate

import (
	"sync/atomic"
	"time"
)

var (
	status   atomic.Value
	draining atomic.Bool
	active   atomic.Int64
	started  = time.Now()
)

func init() {
	status.Store("not_ready")
}

// State is the JSON snapshot served by the state endpoint.
type State struct {
	Status        string `json:"status"`
	Draining      bool   `json:"draining"`
	ActiveStreams int64  `json:"activeStreams"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

// SetState sets the server state string.
func SetState(s string) {
	status.Store(s)
}

// GetState returns the current server state.
func GetState() string {
	if v, ok := status.Load().(string); ok {
		return v
	}
	return "unknown"
}

// StartDrain marks the server as draining; new stream requests are
// rejected while in-flight ones run to completion.
func StartDrain() {
	draining.Store(true)
	SetState("draining")
}

// IsDraining reports whether the server is draining.
func IsDraining() bool {
	return draining.Load()
}

// StreamStarted and StreamEnded track in-flight streams.
func StreamStarted() { active.Add(1) }
func StreamEnded()   { active.Add(-1) }

// ActiveStreams returns the number of in-flight streams.
func ActiveStreams() int64 {
	return active.Load()
}

// Snapshot returns the current state for serving.
func Snapshot() State {
	return State{
		Status:        GetState(),
		Draining:      IsDraining(),
		ActiveStreams: ActiveStreams(),
		UptimeSeconds: int64(time.Since(started).Seconds()),
	}
}
