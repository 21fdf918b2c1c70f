package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:        "agentgw_build_info",
			Help:        "Build information",
			ConstLabels: prometheus.Labels{"component": "gateway"},
		},
		[]string{"date", "sha", "version"},
	)

	streamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentgw_stream_requests_total",
			Help: "Number of client stream requests",
		},
		[]string{"agent_type", "outcome"},
	)

	relayedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentgw_relayed_records_total",
			Help: "Normalized records pushed downstream",
		},
		[]string{"agent_type", "package_type"},
	)

	heartbeats = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agentgw_heartbeats_total",
			Help: "Heartbeat lines relayed as keep-alive records",
		},
	)

	streamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentgw_stream_duration_seconds",
			Help:    "Wall time of one upstream stream",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
		},
		[]string{"agent_type"},
	)

	activeStreams = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "agentgw_active_streams",
			Help: "Streams currently being relayed",
		},
	)
)

// Register registers all collectors with the given registerer.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(buildInfo, streamRequests, relayedRecords, heartbeats, streamDuration, activeStreams)
}

// SetBuildInfo sets the build information gauge.
func SetBuildInfo(version, sha, date string) {
	buildInfo.WithLabelValues(date, sha, version).Set(1)
}

// RecordStreamRequest counts one finished stream by outcome.
func RecordStreamRequest(agentType string, success bool) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	streamRequests.WithLabelValues(agentType, outcome).Inc()
}

// RecordRelayedRecord counts one record pushed downstream.
func RecordRelayedRecord(agentType, packageType string) {
	relayedRecords.WithLabelValues(agentType, packageType).Inc()
}

// RecordHeartbeat counts one relayed keep-alive.
func RecordHeartbeat() {
	heartbeats.Inc()
}

// ObserveStreamDuration records the wall time of one stream.
func ObserveStreamDuration(agentType string, d time.Duration) {
	streamDuration.WithLabelValues(agentType).Observe(d.Seconds())
}

// StreamStarted and StreamEnded track the active stream gauge.
func StreamStarted() { activeStreams.Inc() }
func StreamEnded()   { activeStreams.Dec() }
