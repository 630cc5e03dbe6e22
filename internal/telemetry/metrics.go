// Package telemetry provides chain layers that record Prometheus metrics and
// OpenTelemetry spans around whatever runs after them.
package telemetry

import (
	"time"

	"github.com/dmitrijs2005/azura/internal/common"
	"github.com/dmitrijs2005/azura/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StatusOK labels runs that returned no error.
const StatusOK = "ok"

// Metrics holds the collectors shared by all instrumented chains.
type Metrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	activeSockets   prometheus.Gauge
}

// NewMetrics registers the collectors with reg under namespace.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Dispatched requests and socket events by outcome",
		}, []string{"transport", "route", "status"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time spent in the chain after the metrics layer",
			Buckets:   prometheus.DefBuckets,
		}, []string{"transport", "route"}),

		activeSockets: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sockets",
			Help:      "Open socket connections",
		}),
	}
}

// Observe records one run. The status label is the error kind, or "ok".
func (m *Metrics) Observe(transport, route string, err error, elapsed time.Duration) {
	status := StatusOK
	if err != nil {
		status = common.Kind(err)
	}
	m.requestsTotal.WithLabelValues(transport, route, status).Inc()
	m.requestDuration.WithLabelValues(transport, route).Observe(elapsed.Seconds())
}

func (m *Metrics) SocketOpened() { m.activeSockets.Inc() }
func (m *Metrics) SocketClosed() { m.activeSockets.Dec() }

// Layer times everything after it and counts the outcome under the route
// named by route. The error is returned unchanged.
func Layer[C, R any](m *Metrics, transport string, route func(ctx C, req R) string) middleware.LayerFunc[C, R] {
	return func(ctx C, req R, next middleware.Next) error {
		start := time.Now()
		err := next()
		m.Observe(transport, route(ctx, req), err, time.Since(start))
		return err
	}
}

// Fixed names every run route.
func Fixed[C, R any](route string) func(C, R) string {
	return func(C, R) string { return route }
}
