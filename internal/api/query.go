package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/agentgw/agentgw/internal/agent"
	"github.com/agentgw/agentgw/internal/logx"
	"github.com/agentgw/agentgw/internal/serverstate"
	"github.com/agentgw/agentgw/internal/sink"
)

// QueryRequest is the inbound client query.
type QueryRequest struct {
	RequestID   string `json:"requestId"`
	User        string `json:"user"`
	Query       string `json:"query"`
	DeepThink   int    `json:"deepThink"`
	OutputStyle string `json:"outputStyle"`
	// AgentType overrides the deepThink-derived type when non-zero;
	// used by callers that address the router directly.
	AgentType int `json:"agentType,omitempty"`
}

// buildAgentRequest maps the client query onto the upstream request.
// deepThink selects plan-and-solve over react, and each mode gets its
// configured prompt.
func (a *API) buildAgentRequest(q *QueryRequest) *agent.Request {
	id := q.RequestID
	if id == "" {
		id = uuid.NewString()
	}
	typ := agent.TypeReact
	if q.DeepThink != 0 {
		typ = agent.TypePlanner
	}
	if q.AgentType != 0 {
		typ = agent.Type(q.AgentType)
	}
	req := &agent.Request{
		RequestID:   id,
		User:        q.User,
		Query:       q.Query,
		AgentType:   typ,
		IsStream:    true,
		OutputStyle: q.OutputStyle,
	}
	switch typ {
	case agent.TypePlanner:
		req.SOPPrompt = a.cfg.SOPPrompt
	case agent.TypeReact:
		req.BasePrompt = a.cfg.BasePrompt
	}
	return req
}

// StreamAgent handles POST /api/v1/agent/stream: it acknowledges the
// query with a loading record, relays the upstream stream as SSE, and
// keeps the connection open until the stream terminates.
func (a *API) StreamAgent(w http.ResponseWriter, r *http.Request) {
	if serverstate.IsDraining() {
		http.Error(w, "draining", http.StatusServiceUnavailable)
		return
	}
	var q QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if q.Query == "" {
		http.Error(w, "missing query", http.StatusBadRequest)
		return
	}
	req := a.buildAgentRequest(&q)
	if err := a.relay.Validate(req); err != nil {
		// Configuration error; refused before any upstream call.
		l := logx.ForRequest(req.RequestID)
		l.Error().Err(err).Msg("refuse request")
		writeError(w, http.StatusBadRequest, err)
		return
	}

	emitter, err := sink.NewSSE(w, req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	// The ack goes out before the streaming task starts so it is always
	// the first record the client sees.
	if err := emitter.Push(agent.NewLoadingResult(req)); err != nil {
		l := logx.ForRequest(req.RequestID)
		l.Warn().Err(err).Msg("push ack")
	}
	if _, err := a.relay.Execute(r.Context(), req, emitter); err != nil {
		emitter.CompleteWithError(err)
	}
	<-emitter.Done()
}

// StreamAgentWS handles GET /api/v1/agent/ws: the same record stream
// over a WebSocket, for clients that cannot hold SSE open. The query
// travels in URL parameters since the connection starts with a GET.
func (a *API) StreamAgentWS(w http.ResponseWriter, r *http.Request) {
	if serverstate.IsDraining() {
		http.Error(w, "draining", http.StatusServiceUnavailable)
		return
	}
	vals := r.URL.Query()
	q := QueryRequest{
		RequestID:   vals.Get("requestId"),
		User:        vals.Get("user"),
		Query:       vals.Get("query"),
		OutputStyle: vals.Get("outputStyle"),
	}
	if v := vals.Get("deepThink"); v != "" {
		q.DeepThink, _ = strconv.Atoi(v)
	}
	if v := vals.Get("agentType"); v != "" {
		q.AgentType, _ = strconv.Atoi(v)
	}
	if q.Query == "" {
		http.Error(w, "missing query", http.StatusBadRequest)
		return
	}
	req := a.buildAgentRequest(&q)
	if err := a.relay.Validate(req); err != nil {
		l := logx.ForRequest(req.RequestID)
		l.Error().Err(err).Msg("refuse request")
		writeError(w, http.StatusBadRequest, err)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		l := logx.ForRequest(req.RequestID)
		l.Warn().Err(err).Msg("ws accept")
		return
	}
	emitter := sink.NewWS(r.Context(), conn, req)
	if err := emitter.Push(agent.NewLoadingResult(req)); err != nil {
		l := logx.ForRequest(req.RequestID)
		l.Warn().Err(err).Msg("push ack")
	}
	if _, err := a.relay.Execute(r.Context(), req, emitter); err != nil {
		emitter.CompleteWithError(err)
	}
	<-emitter.Done()
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
