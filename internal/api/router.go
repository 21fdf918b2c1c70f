// Package api exposes the HTTP surface of the gateway: the streaming
// query endpoints, lifecycle and status probes, the journal lookup, and
// the OpenAPI description.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/agentgw/agentgw/internal/config"
	"github.com/agentgw/agentgw/internal/journal"
	"github.com/agentgw/agentgw/internal/relay"
)

// API bundles the handlers' shared dependencies.
type API struct {
	relay   *relay.Relay
	journal *journal.Journal
	cfg     config.ServerConfig
}

// New builds the API. journal may be nil, in which case result lookups
// report not found.
func New(r *relay.Relay, j *journal.Journal, cfg config.ServerConfig) *API {
	return &API{relay: r, journal: j, cfg: cfg}
}

// Router assembles the chi router for the whole HTTP surface.
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogger)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/api/openapi.json", ServeOpenAPI)
	r.Get("/api/docs", ServeSwagger)

	r.Group(func(r chi.Router) {
		if a.cfg.APIKey != "" {
			r.Use(APIKeyMiddleware(a.cfg.APIKey))
		}
		r.Post("/api/v1/agent/stream", a.StreamAgent)
		r.Get("/api/v1/agent/ws", a.StreamAgentWS)
		r.Get("/api/v1/agent/result/{reqId}", a.GetResult)
		r.Get("/api/v1/state", a.GetState)
		r.Get("/api/v1/status", a.GetStatus)
	})
	return r
}
