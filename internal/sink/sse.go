package sink

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/agentgw/agentgw/internal/agent"
	"github.com/agentgw/agentgw/internal/logx"
)

// SSEEmitter pushes records to the client as Server-Sent Events. The
// owning HTTP handler blocks on Done until the stream terminates, which
// keeps the response writer alive for the background streaming task.
type SSEEmitter struct {
	req     *agent.Request
	flusher http.Flusher

	mu   sync.Mutex
	w    http.ResponseWriter
	done chan struct{}
	once sync.Once
}

// NewSSE prepares w for event streaming and returns the emitter.
// It fails when the response writer cannot flush incrementally.
func NewSSE(w http.ResponseWriter, req *agent.Request) (*SSEEmitter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("response writer does not support streaming")
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	return &SSEEmitter{req: req, w: w, flusher: flusher, done: make(chan struct{})}, nil
}

// Push writes one record as a data: event and flushes it out.
func (e *SSEEmitter) Push(res *agent.ProcessResult) error {
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", b); err != nil {
		return fmt.Errorf("push to client: %w", err)
	}
	e.flusher.Flush()
	return nil
}

// Complete ends the stream with the [DONE] sentinel and releases the
// handler blocked on Done.
func (e *SSEEmitter) Complete() {
	e.once.Do(func() {
		e.mu.Lock()
		if _, err := fmt.Fprint(e.w, "data: [DONE]\n\n"); err != nil {
			l := logx.ForRequest(e.req.RequestID)
			l.Warn().Err(err).Msg("write done sentinel")
		} else {
			e.flusher.Flush()
		}
		e.mu.Unlock()
		close(e.done)
	})
}

// CompleteWithError emits a terminal error record so the UI can render
// the failure, then ends the stream. Write failures here are logged and
// swallowed; the client is gone either way.
func (e *SSEEmitter) CompleteWithError(err error) {
	e.once.Do(func() {
		b, _ := json.Marshal(agent.NewErrorResult(e.req, err.Error()))
		e.mu.Lock()
		if _, werr := fmt.Fprintf(e.w, "data: %s\n\n", b); werr != nil {
			l := logx.ForRequest(e.req.RequestID)
			l.Warn().Err(werr).Msg("write error record")
		} else {
			e.flusher.Flush()
		}
		e.mu.Unlock()
		close(e.done)
	})
}

// Done is closed when the stream has terminated either way.
func (e *SSEEmitter) Done() <-chan struct{} {
	return e.done
}
