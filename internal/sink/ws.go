package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/coder/websocket"

	"github.com/agentgw/agentgw/internal/agent"
	"github.com/agentgw/agentgw/internal/logx"
)

// WSEmitter delivers the record stream over a WebSocket connection for
// clients that cannot hold an SSE response open. Records are sent as text
// frames carrying the same JSON the SSE emitter produces; the close code
// carries the completion signal.
type WSEmitter struct {
	req  *agent.Request
	ctx  context.Context
	conn *websocket.Conn

	done chan struct{}
	once sync.Once
}

// NewWS wraps an accepted connection.
func NewWS(ctx context.Context, conn *websocket.Conn, req *agent.Request) *WSEmitter {
	return &WSEmitter{req: req, ctx: ctx, conn: conn, done: make(chan struct{})}
}

// Push sends one record as a text frame.
func (e *WSEmitter) Push(res *agent.ProcessResult) error {
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := e.conn.Write(e.ctx, websocket.MessageText, b); err != nil {
		return fmt.Errorf("push to client: %w", err)
	}
	return nil
}

// Complete closes the connection with a normal close code.
func (e *WSEmitter) Complete() {
	e.once.Do(func() {
		if err := e.conn.Close(websocket.StatusNormalClosure, "done"); err != nil {
			l := logx.ForRequest(e.req.RequestID)
			l.Debug().Err(err).Msg("ws close")
		}
		close(e.done)
	})
}

// CompleteWithError sends the terminal error record as a final frame,
// best effort, then closes with an error code. The close reason is
// capped because close reasons are limited to 125 bytes.
func (e *WSEmitter) CompleteWithError(err error) {
	e.once.Do(func() {
		if b, merr := json.Marshal(agent.NewErrorResult(e.req, err.Error())); merr == nil {
			if werr := e.conn.Write(e.ctx, websocket.MessageText, b); werr != nil {
				l := logx.ForRequest(e.req.RequestID)
				l.Debug().Err(werr).Msg("ws error record")
			}
		}
		reason := err.Error()
		if len(reason) > 120 {
			reason = reason[:120]
		}
		if cerr := e.conn.Close(websocket.StatusInternalError, reason); cerr != nil {
			l := logx.ForRequest(e.req.RequestID)
			l.Debug().Err(cerr).Msg("ws close")
		}
		close(e.done)
	})
}

// Done is closed when the stream has terminated either way.
func (e *WSEmitter) Done() <-chan struct{} {
	return e.done
}
