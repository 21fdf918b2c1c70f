package sink

import (
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/agentgw/agentgw/internal/agent"
)

// recorder captures everything the relay would send downstream.
type recorder struct {
	mu        sync.Mutex
	pushed    []*agent.ProcessResult
	completed int
	failed    []error
}

func (r *recorder) Push(res *agent.ProcessResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushed = append(r.pushed, res)
	return nil
}

func (r *recorder) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
}

func (r *recorder) CompleteWithError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, err)
}

func TestGuardDropsPushAfterTerminalRecord(t *testing.T) {
	rec := &recorder{}
	g := Guarded(rec)

	if err := g.Push(&agent.ProcessResult{ReqID: "r"}); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := g.Push(&agent.ProcessResult{ReqID: "r", Finished: true}); err != nil {
		t.Fatalf("terminal push: %v", err)
	}
	if err := g.Push(&agent.ProcessResult{ReqID: "r"}); err != nil {
		t.Fatalf("late push: %v", err)
	}

	if len(rec.pushed) != 2 {
		t.Fatalf("pushed %d records; want 2", len(rec.pushed))
	}
	// Completion after the terminal record still reaches the sink once.
	g.Complete()
	g.Complete()
	if rec.completed != 1 {
		t.Fatalf("completed %d times; want 1", rec.completed)
	}
}

func TestGuardFirstCompletionWins(t *testing.T) {
	rec := &recorder{}
	g := Guarded(rec)
	g.Complete()
	g.CompleteWithError(errors.New("late"))
	if rec.completed != 1 || len(rec.failed) != 0 {
		t.Fatalf("completed=%d failed=%d; want 1/0", rec.completed, len(rec.failed))
	}
	if !g.Terminated() {
		t.Fatal("guard should report termination")
	}
	if err := g.Push(&agent.ProcessResult{}); err != nil {
		t.Fatalf("push after close: %v", err)
	}
	if len(rec.pushed) != 0 {
		t.Fatal("push after close must not reach the sink")
	}
}

func TestSSEEmitterStream(t *testing.T) {
	rr := httptest.NewRecorder()
	e, err := NewSSE(rr, &agent.Request{RequestID: "req-1", AgentType: agent.TypeReact})
	if err != nil {
		t.Fatalf("NewSSE: %v", err)
	}

	if err := e.Push(agent.NewHeartbeatResult("req-1")); err != nil {
		t.Fatalf("push: %v", err)
	}
	e.Complete()

	select {
	case <-e.Done():
	default:
		t.Fatal("Done should be closed after Complete")
	}

	if ct := rr.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `"packageType":"heartbeat"`) {
		t.Errorf("missing heartbeat record in %q", body)
	}
	if !strings.HasSuffix(body, "data: [DONE]\n\n") {
		t.Errorf("missing done sentinel in %q", body)
	}
}

func TestSSEEmitterErrorRecord(t *testing.T) {
	rr := httptest.NewRecorder()
	e, err := NewSSE(rr, &agent.Request{RequestID: "req-2", AgentType: agent.TypeReact})
	if err != nil {
		t.Fatalf("NewSSE: %v", err)
	}
	e.CompleteWithError(errors.New("upstream status 500"))
	// A second completion must be a no-op.
	e.Complete()

	body := rr.Body.String()
	if !strings.Contains(body, `"status":"failed"`) || !strings.Contains(body, "upstream status 500") {
		t.Errorf("missing error record in %q", body)
	}
	if strings.Contains(body, "[DONE]") {
		t.Errorf("error termination must not emit the done sentinel: %q", body)
	}
}

func TestSSEEmitterRouterErrorShape(t *testing.T) {
	rr := httptest.NewRecorder()
	e, err := NewSSE(rr, &agent.Request{RequestID: "req-3", AgentType: agent.TypeRouter})
	if err != nil {
		t.Fatalf("NewSSE: %v", err)
	}
	e.CompleteWithError(errors.New("no route"))

	// Router failures surface in the response body with a success status.
	body := rr.Body.String()
	if !strings.Contains(body, `"status":"success"`) || !strings.Contains(body, `"response":"no route"`) {
		t.Errorf("unexpected router error record: %q", body)
	}
}
