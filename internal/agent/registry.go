package agent

import (
	"errors"
	"fmt"
)

// ErrUnknownAgentType reports a discriminator with no registered handler.
// This is a configuration error: the relay refuses the whole request
// before any upstream call is made.
var ErrUnknownAgentType = errors.New("unknown agent type")

// Handler interprets upstream events for one agent type. Implementations
// may mutate the accumulator but must not block on the network; all other
// state flows through the arguments.
type Handler interface {
	Handle(req *Request, event *Response, acc *Accumulator) (*ProcessResult, error)
}

// Registry maps agent type codes to handlers. It is populated once at
// startup and read-only afterwards, so lookups need no locking.
type Registry struct {
	handlers map[Type]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[Type]Handler)}
}

// Register adds a handler for a type. Later registrations replace earlier
// ones, which keeps tests free to override defaults.
func (r *Registry) Register(t Type, h Handler) {
	r.handlers[t] = h
}

// Lookup resolves the handler for a type.
func (r *Registry) Lookup(t Type) (Handler, error) {
	h, ok := r.handlers[t]
	if !ok {
		return nil, fmt.Errorf("%w: %d (%s)", ErrUnknownAgentType, int(t), t)
	}
	return h, nil
}

// Default returns a registry with the three built-in handlers.
func Default() *Registry {
	r := NewRegistry()
	r.Register(TypeRouter, &RouterHandler{})
	r.Register(TypePlanner, &PlannerHandler{})
	r.Register(TypeReact, &ReactHandler{})
	return r
}
