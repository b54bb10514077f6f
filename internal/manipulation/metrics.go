// SPDX-License-Identifier: MIT
package manipulation

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records manipulation service calls
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the service call metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartsvg",
			Subsystem: "manipulation",
			Name:      "calls_total",
			Help:      "Calls to the manipulation service by path and status.",
		}, []string{"path", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "smartsvg",
			Subsystem: "manipulation",
			Name:      "call_duration_seconds",
			Help:      "Latency of manipulation service calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path"}),
	}
	reg.MustRegister(m.calls, m.duration)
	return m
}

func (m *Metrics) observe(path string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	var svcErr *ServiceError
	switch {
	case errors.As(err, &svcErr):
		status = strconv.Itoa(svcErr.Status)
	case err != nil:
		status = "error"
	}
	m.calls.WithLabelValues(path, status).Inc()
	m.duration.WithLabelValues(path).Observe(elapsed.Seconds())
}
