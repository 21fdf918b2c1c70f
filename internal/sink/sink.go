// Package sink abstracts the client-facing push channel. The relay talks
// to a Sink only; the SSE and WebSocket emitters adapt it to the two
// transports the gateway serves.
package sink

import (
	"sync"

	"github.com/agentgw/agentgw/internal/agent"
)

// Sink is the downstream push channel for one client request. After
// Complete or CompleteWithError no further Push is valid; implementations
// may fail such pushes, the Guard below suppresses them entirely.
type Sink interface {
	Push(res *agent.ProcessResult) error
	Complete()
	CompleteWithError(err error)
}

// Guard wraps a Sink and enforces single-termination semantics: at most
// one record with finished=true goes through, pushes after a terminal
// record are dropped, and only the first completion signal reaches the
// underlying sink. All further calls are no-ops.
type Guard struct {
	inner Sink

	mu             sync.Mutex
	pushedTerminal bool
	closed         bool
}

// Guarded wraps s in a Guard.
func Guarded(s Sink) *Guard {
	return &Guard{inner: s}
}

// Push forwards the record unless the stream already terminated.
// Suppressed pushes report success; the stream is over either way.
func (g *Guard) Push(res *agent.ProcessResult) error {
	g.mu.Lock()
	if g.closed || g.pushedTerminal {
		g.mu.Unlock()
		return nil
	}
	if res.Finished {
		g.pushedTerminal = true
	}
	g.mu.Unlock()
	return g.inner.Push(res)
}

// Complete signals graceful completion, once.
func (g *Guard) Complete() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	g.mu.Unlock()
	g.inner.Complete()
}

// CompleteWithError signals failure, once. A completion that already
// happened wins; the error is then dropped.
func (g *Guard) CompleteWithError(err error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	g.mu.Unlock()
	g.inner.CompleteWithError(err)
}

// Terminated reports whether a completion signal has been delivered.
func (g *Guard) Terminated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}
