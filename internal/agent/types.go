// Package agent defines the data model shared between the relay and the
// per-agent-type response handlers, and the registry that maps agent type
// codes to handlers.
package agent

import "strings"

// Type is the agent-type discriminator carried by every upstream request.
// The codes are fixed by the upstream protocol.
type Type int

const (
	TypeRouter  Type = 1
	TypePlanner Type = 3
	TypeReact   Type = 5
)

func (t Type) String() string {
	switch t {
	case TypeRouter:
		return "router"
	case TypePlanner:
		return "planner"
	case TypeReact:
		return "react"
	default:
		return "unknown"
	}
}

// Request is the upstream request body. It is immutable once built;
// RequestID is the caller-supplied correlation id and stays stable across
// retries so log lines can be joined.
type Request struct {
	RequestID   string `json:"requestId"`
	User        string `json:"erp"`
	Query       string `json:"query"`
	AgentType   Type   `json:"agentType"`
	SOPPrompt   string `json:"sopPrompt,omitempty"`
	BasePrompt  string `json:"basePrompt,omitempty"`
	IsStream    bool   `json:"isStream"`
	OutputStyle string `json:"outputStyle,omitempty"`
}

// Response is one decoded upstream event. Beyond the message type and the
// finish marker the payload is owned by the upstream protocol; handlers
// pick out what they understand and ignore the rest.
type Response struct {
	RequestID   string         `json:"requestId"`
	MessageID   string         `json:"messageId"`
	MessageType string         `json:"messageType"`
	MessageTime string         `json:"messageTime"`
	Finish      bool           `json:"finish"`
	Result      string         `json:"result"`
	ResultMap   map[string]any `json:"resultMap,omitempty"`
	IsFinal     bool           `json:"isFinal"`
}

// ProcessResult is the normalized record pushed to the downstream client.
// The JSON shape is wire-visible to the UI and must not change casually.
type ProcessResult struct {
	Status       string         `json:"status"`
	Finished     bool           `json:"finished"`
	Response     string         `json:"response"`
	ResponseAll  string         `json:"responseAll"`
	ErrorMsg     string         `json:"errorMsg,omitempty"`
	ReqID        string         `json:"reqId"`
	ResponseType string         `json:"responseType"`
	PackageType  string         `json:"packageType"`
	UseTimes     int            `json:"useTimes"`
	UseTokens    int            `json:"useTokens"`
	Encrypted    bool           `json:"encrypted"`
	ResultMap    map[string]any `json:"resultMap,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusLoading = "loading"

	ResponseTypeText = "text"

	PackageTypeHeartbeat = "heartbeat"
	PackageTypeResult    = "result"
)

// Accumulator is the per-stream state threaded through successive handler
// invocations. It is created when the stream starts, owned exclusively by
// the relay for the lifetime of one client request, and dead after the
// stream's terminal event. It is never shared across requests.
type Accumulator struct {
	// Responses holds every dispatched event in arrival order.
	Responses []*Response
	// all collects the incremental text handlers have emitted so far.
	all strings.Builder
	// Tasks counts task-level events seen by the planner handler.
	Tasks int
}

// Record appends an event and returns the position it was stored at.
func (a *Accumulator) Record(r *Response) int {
	a.Responses = append(a.Responses, r)
	return len(a.Responses)
}

// Append adds incremental text to the running aggregate.
func (a *Accumulator) Append(s string) {
	a.all.WriteString(s)
}

// All returns the aggregated text so far.
func (a *Accumulator) All() string {
	return a.all.String()
}
