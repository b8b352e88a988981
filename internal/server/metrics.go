package server

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Metrics holds the request counters and latency histograms of both
// transports.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	reloads  *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		// requests counts calls by method and result code
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "enhancecost_requests_total",
			Help: "Estimator requests by method and code",
		}, []string{"method", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "enhancecost_request_duration_seconds",
			Help:    "Estimator request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
		}, []string{"method"}),
		reloads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "enhancecost_snapshot_reloads_total",
			Help: "Price snapshot reloads by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) observe(method, code string, elapsed time.Duration) {
	m.requests.WithLabelValues(method, code).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Reloaded records a snapshot reload attempt.
func (m *Metrics) Reloaded(err error) {
	if err != nil {
		m.reloads.WithLabelValues("error").Inc()
		return
	}
	m.reloads.WithLabelValues("ok").Inc()
}

// UnaryInterceptor records every unary call.
func (m *Metrics) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		begin := time.Now()
		resp, err := handler(ctx, req)
		m.observe(info.FullMethod, status.Code(err).String(), time.Since(begin))
		return resp, err
	}
}
