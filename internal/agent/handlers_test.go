package agent

import "testing"

func TestReactHandlerAccumulates(t *testing.T) {
	h := &ReactHandler{}
	req := &Request{RequestID: "r1", AgentType: TypeReact}
	acc := &Accumulator{}

	res, err := h.Handle(req, &Response{Result: "step one. "}, acc)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if res.Finished {
		t.Error("first event should not be terminal")
	}
	if res.ResponseAll != "step one. " {
		t.Errorf("responseAll = %q", res.ResponseAll)
	}

	res, err = h.Handle(req, &Response{Result: "done.", Finish: true}, acc)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !res.Finished {
		t.Error("finish event should be terminal")
	}
	if res.ResponseAll != "step one. done." {
		t.Errorf("responseAll = %q", res.ResponseAll)
	}
	if res.UseTimes != 2 {
		t.Errorf("useTimes = %d; want 2", res.UseTimes)
	}
	if res.ReqID != "r1" {
		t.Errorf("reqId = %q; want r1", res.ReqID)
	}
}

func TestPlannerHandlerCountsTasks(t *testing.T) {
	h := &PlannerHandler{}
	req := &Request{RequestID: "r2", AgentType: TypePlanner}
	acc := &Accumulator{}

	if _, err := h.Handle(req, &Response{MessageType: "plan", Result: "plan: "}, acc); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if _, err := h.Handle(req, &Response{MessageType: "task", Result: "t1 "}, acc); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	res, err := h.Handle(req, &Response{MessageType: "result", Result: "answer", Finish: true}, acc)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !res.Finished {
		t.Error("expected terminal record")
	}
	if got := res.ResultMap["taskCount"]; got != 1 {
		t.Errorf("taskCount = %v; want 1", got)
	}
	if res.ResponseAll != "plan: t1 answer" {
		t.Errorf("responseAll = %q", res.ResponseAll)
	}
}

func TestRouterHandlerSingleShot(t *testing.T) {
	h := &RouterHandler{}
	req := &Request{RequestID: "r3", AgentType: TypeRouter}
	acc := &Accumulator{}

	res, err := h.Handle(req, &Response{Result: "use planner", IsFinal: true}, acc)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !res.Finished {
		t.Error("router decision should be terminal")
	}
	if res.Response != "use planner" {
		t.Errorf("response = %q", res.Response)
	}
}

func TestErrorResultShapes(t *testing.T) {
	router := NewErrorResult(&Request{RequestID: "r", AgentType: TypeRouter}, "boom")
	if router.Status != StatusSuccess || !router.Finished || router.Response != "boom" {
		t.Errorf("router error result = %+v", router)
	}

	other := NewErrorResult(&Request{RequestID: "r", AgentType: TypeReact}, "boom")
	if other.Status != StatusFailed || !other.Finished || other.ErrorMsg != "boom" {
		t.Errorf("react error result = %+v", other)
	}
	if other.ResultMap == nil {
		t.Error("non-router error result should carry an empty resultMap")
	}
}

func TestHeartbeatResultShape(t *testing.T) {
	hb := NewHeartbeatResult("req-9")
	if hb.Finished {
		t.Error("heartbeat must not be terminal")
	}
	if hb.Status != StatusSuccess || hb.PackageType != PackageTypeHeartbeat {
		t.Errorf("heartbeat = %+v", hb)
	}
	if hb.Response != "" || hb.ResponseAll != "" {
		t.Error("heartbeat carries no payload")
	}
	if hb.ReqID != "req-9" {
		t.Errorf("reqId = %q", hb.ReqID)
	}
}
