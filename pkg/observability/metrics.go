package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/flowstep/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "flowstep"

// Metrics holds the collectors. Create it with NewMetrics.
type Metrics struct {
	steps        *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	undos        prometheus.Counter
	augmentation prometheus.Histogram
	terminations prometheus.Counter
	flowValue    prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg. A nil reg uses the default
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		steps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "steps_total",
			Help:      "Total number of steps, by kind",
		}, []string{"kind"}),
		stepDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "step_duration_seconds",
			Help:      "Time spent computing a step",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}, []string{"kind"}),
		undos: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "undos_total",
			Help:      "Total number of undone steps",
		}),
		augmentation: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "augment_amount",
			Help:      "Flow pushed per augmentation",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		terminations: f.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "terminations_total",
			Help:      "Total number of runs that reached a maximum flow",
		}),
		flowValue: f.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_flow_value",
			Help:      "Flow value after the most recent augmentation",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			kind := string(e.Kind)
			m.steps.WithLabelValues(kind).Inc()
			m.stepDuration.WithLabelValues(kind).Observe(e.Duration.Seconds())
		},
		OnUndo: func(context.Context, *domain.StepEvent) {
			m.undos.Inc()
		},
		OnAugment: func(_ context.Context, e *domain.AugmentEvent) {
			m.augmentation.Observe(float64(e.Amount))
			m.flowValue.Set(float64(e.FlowValue))
		},
		OnTerminate: func(context.Context, *domain.TerminateEvent) {
			m.terminations.Inc()
		},
	}
}

// Middleware records request counts and latency, labeled with the chi
// route pattern to keep cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unknown"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
