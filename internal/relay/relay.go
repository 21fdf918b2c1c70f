// Package relay issues the upstream agent-execution request, consumes its
// SSE stream, dispatches decoded events through the per-agent-type
// handlers, and pushes normalized records to the downstream sink. It owns
// both connection lifecycles: the upstream body is released exactly once
// on every exit path, and the sink receives exactly one terminal signal.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/agentgw/agentgw/internal/agent"
	"github.com/agentgw/agentgw/internal/journal"
	"github.com/agentgw/agentgw/internal/logx"
	"github.com/agentgw/agentgw/internal/metrics"
	"github.com/agentgw/agentgw/internal/serverstate"
	"github.com/agentgw/agentgw/internal/sink"
	"github.com/agentgw/agentgw/internal/sse"
)

// ErrUpstreamStatus reports a non-2xx upstream response; nothing is
// relayed in that case.
var ErrUpstreamStatus = errors.New("upstream status error")

// Options configures a Relay.
type Options struct {
	// Endpoint is the upstream agent-execution URL.
	Endpoint string
	// Handlers resolves agent types; a miss fails the request before any
	// upstream call.
	Handlers *agent.Registry
	// Journal records terminal outcomes; nil disables journaling.
	Journal *journal.Journal
	// Timeout bounds one whole stream; zero leaves it unbounded.
	Timeout time.Duration
	// ReadTimeout caps the total lifetime of the upstream exchange as a
	// backstop against dead connections; zero means 30 minutes.
	ReadTimeout time.Duration
	// Client overrides the shared HTTP client, for tests.
	Client *http.Client
}

// Relay is safe for concurrent use; one process-wide instance serves all
// client requests over a single pooled HTTP client.
type Relay struct {
	client   *http.Client
	endpoint string
	handlers *agent.Registry
	journal  *journal.Journal
	timeout  time.Duration
}

// New builds a Relay with a connection-pooled client tuned for long SSE
// responses: few idle conns kept warm, generous keep-alive.
func New(opts Options) *Relay {
	client := opts.Client
	if client == nil {
		readTimeout := opts.ReadTimeout
		if readTimeout <= 0 {
			readTimeout = 30 * time.Minute
		}
		client = &http.Client{
			Timeout: readTimeout,
			Transport: &http.Transport{
				DialContext:           (&net.Dialer{Timeout: 60 * time.Second}).DialContext,
				MaxIdleConns:          10,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       5 * time.Minute,
				ResponseHeaderTimeout: 60 * time.Second,
			},
		}
	}
	return &Relay{
		client:   client,
		endpoint: opts.Endpoint,
		handlers: opts.Handlers,
		journal:  opts.Journal,
		timeout:  opts.Timeout,
	}
}

// Validate checks that the request can be served at all. It is the
// pre-flight counterpart of Execute so callers can reject misconfigured
// requests before committing a streaming response.
func (r *Relay) Validate(req *agent.Request) error {
	_, err := r.handlers.Lookup(req.AgentType)
	return err
}

// Execute starts the streaming task for one client request and returns
// the loading acknowledgment immediately. An unregistered agent type is
// the only synchronous failure; it is surfaced before any upstream call.
// ctx should be the inbound request context so a client disconnect
// cancels the upstream call.
func (r *Relay) Execute(ctx context.Context, req *agent.Request, s sink.Sink) (*agent.ProcessResult, error) {
	h, err := r.handlers.Lookup(req.AgentType)
	if err != nil {
		return nil, err
	}
	l := logx.ForRequest(req.RequestID)
	l.Info().
		Str("agent_type", req.AgentType.String()).
		Str("endpoint", r.endpoint).
		Msg("dispatch")
	go r.run(ctx, req, h, sink.Guarded(s))
	return agent.NewLoadingResult(req), nil
}

// run is the streaming task. All failures are resolved here and reach the
// client only through the sink's terminal signal.
func (r *Relay) run(ctx context.Context, req *agent.Request, h agent.Handler, s *sink.Guard) {
	log := logx.ForRequest(req.RequestID)
	start := time.Now()
	agentType := req.AgentType.String()

	metrics.StreamStarted()
	serverstate.StreamStarted()

	var (
		records int
		success bool
		termErr error
	)
	defer func() {
		if p := recover(); p != nil {
			termErr = fmt.Errorf("streaming task panic: %v", p)
			log.Error().Interface("panic", p).Msg("streaming task panic")
			s.CompleteWithError(termErr)
		}
		metrics.StreamEnded()
		serverstate.StreamEnded()
		dur := time.Since(start)
		metrics.RecordStreamRequest(agentType, success)
		metrics.ObserveStreamDuration(agentType, dur)

		status := agent.StatusSuccess
		errMsg := ""
		if !success {
			status = agent.StatusFailed
			if termErr != nil {
				errMsg = termErr.Error()
			}
		}
		o := journal.Outcome{
			ReqID:      req.RequestID,
			AgentType:  agentType,
			Status:     status,
			ErrorMsg:   errMsg,
			Records:    records,
			DurationMS: dur.Milliseconds(),
			FinishedAt: time.Now(),
		}
		if err := r.journal.Record(context.WithoutCancel(ctx), o); err != nil {
			log.Warn().Err(err).Msg("journal outcome")
		}
		log.Info().Dur("cost", dur).Int("records", records).Bool("success", success).Msg("stream end")
	}()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	body, err := r.open(ctx, req)
	if err != nil {
		termErr = err
		log.Error().Err(err).Msg("upstream request failed")
		s.CompleteWithError(err)
		return
	}
	// The one and only release of the upstream connection, on every exit
	// path including panics.
	defer func() {
		if cerr := body.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("close upstream body")
		}
	}()

	acc := &agent.Accumulator{}
	framer := sse.NewFramer(body)
	for framer.Next() {
		kind, payload := framer.Line()
		switch kind {
		case sse.KindHeartbeat:
			log.Debug().Str("payload", payload).Msg("heartbeat")
			metrics.RecordHeartbeat()
			metrics.RecordRelayedRecord(agentType, agent.PackageTypeHeartbeat)
			if err := s.Push(agent.NewHeartbeatResult(req.RequestID)); err != nil {
				termErr = err
				log.Warn().Err(err).Msg("downstream push failed")
				s.CompleteWithError(err)
				return
			}

		case sse.KindDone:
			// Graceful end with no prior terminal record.
			success = true
			log.Debug().Msg("upstream done sentinel")
			s.Complete()
			return

		case sse.KindData:
			var event agent.Response
			if err := json.Unmarshal([]byte(payload), &event); err != nil {
				// A skipped event would break the ordering the UI relies
				// on, so a malformed line aborts the whole stream.
				termErr = fmt.Errorf("malformed upstream event: %w", err)
				log.Error().Err(err).Str("payload", payload).Msg("decode event")
				s.CompleteWithError(termErr)
				return
			}
			res, err := h.Handle(req, &event, acc)
			if err != nil {
				termErr = fmt.Errorf("handler %s: %w", agentType, err)
				log.Error().Err(err).Str("message_type", event.MessageType).Msg("handler failed")
				s.CompleteWithError(termErr)
				return
			}
			metrics.RecordRelayedRecord(agentType, res.PackageType)
			if err := s.Push(res); err != nil {
				termErr = err
				log.Warn().Err(err).Msg("downstream push failed")
				s.CompleteWithError(err)
				return
			}
			records++
			if res.Finished {
				// Terminal record wins over any trailing Done sentinel;
				// the rest of the upstream stream is discarded.
				success = true
				s.Complete()
				return
			}
		}
	}

	if err := framer.Err(); err != nil {
		termErr = fmt.Errorf("read upstream stream: %w", err)
		log.Error().Err(err).Msg("stream read failed")
		s.CompleteWithError(termErr)
		return
	}
	// EOF without a done sentinel or terminal record; treat as graceful.
	success = true
	s.Complete()
}

// open issues the upstream POST and hands back the streaming body.
func (r *Relay) open(ctx context.Context, req *agent.Request) (io.ReadCloser, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal upstream request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("upstream unreachable: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d", ErrUpstreamStatus, resp.StatusCode)
	}
	return resp.Body, nil
}
