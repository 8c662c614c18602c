// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for the MissionRPC host. Grounded on the teacher's
// coreengine/observability/metrics.go and tracing.go, re-labeled for
// MissionRPC's own domain (requests, continuations, the object store)
// instead of the teacher's pipeline/agent/LLM metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "missionrpc_requests_total",
			Help: "Total number of dispatched requests",
		},
		[]string{"service", "procedure", "status"}, // status: ok, error
	)

	dispatchDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "missionrpc_dispatch_duration_seconds",
			Help:    "Time from HandleRequest entry to its Response, including any yields",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"service", "procedure"},
	)

	yieldsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "missionrpc_yields_total",
			Help: "Total number of continuation yields observed by the scheduler",
		},
		[]string{"service", "procedure"},
	)

	activeContinuations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "missionrpc_active_continuations",
			Help: "Continuations currently queued across all clients",
		},
	)

	objectStoreSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "missionrpc_object_store_size",
			Help: "Number of live handles currently held by the object store",
		},
	)

	connectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "missionrpc_connected_clients",
			Help: "Number of clients currently connected to the kernel",
		},
	)
)

// RecordRequest records one completed dispatch.
func RecordRequest(service, procedure, status string, durationSeconds float64) {
	requestsTotal.WithLabelValues(service, procedure, status).Inc()
	dispatchDurationSeconds.WithLabelValues(service, procedure).Observe(durationSeconds)
}

// RecordYield records one continuation yield for (service, procedure).
func RecordYield(service, procedure string) {
	yieldsTotal.WithLabelValues(service, procedure).Inc()
}

// SetActiveContinuations sets the active-continuations gauge to n.
func SetActiveContinuations(n int) {
	activeContinuations.Set(float64(n))
}

// SetObjectStoreSize sets the object-store-size gauge to n.
func SetObjectStoreSize(n int) {
	objectStoreSize.Set(float64(n))
}

// SetConnectedClients sets the connected-clients gauge to n.
func SetConnectedClients(n int) {
	connectedClients.Set(float64(n))
}
