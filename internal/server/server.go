// Package server assembles the HTTP handler for the gateway process.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentgw/agentgw/internal/api"
	"github.com/agentgw/agentgw/internal/config"
	"github.com/agentgw/agentgw/internal/journal"
	"github.com/agentgw/agentgw/internal/relay"
)

// New constructs the public handler: the API surface, the status page,
// and, unless cfg.MetricsAddr points at a separate listener, /metrics.
func New(rel *relay.Relay, j *journal.Journal, cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()
	r.Mount("/", api.New(rel, j, cfg).Router())
	r.Get("/state", StatusHandler())
	if cfg.MetricsAddr == "" {
		r.Handle("/metrics", promhttp.Handler())
	}
	return r
}

// NewMetricsHandler serves /metrics for the dedicated metrics listener.
func NewMetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
