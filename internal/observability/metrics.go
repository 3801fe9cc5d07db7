package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rgehrsitz/fecons/internal/calculation"
	"github.com/rgehrsitz/fecons/internal/config"
	"github.com/rgehrsitz/fecons/internal/domain"
)

// Pipeline run outcomes used as the "outcome" label
const (
	OutcomeOK        = "ok"
	OutcomeInvalid   = "invalid"
	OutcomeCancelled = "cancelled"
	OutcomeError     = "error"
)

// Metrics bundles Prometheus metrics for pipeline runs, sensitivity sweeps
// and the HTTP API.
type Metrics struct {
	gatherer prometheus.Gatherer

	PipelineRuns     *prometheus.CounterVec
	PipelineDuration *prometheus.HistogramVec

	SweepParameters *prometheus.CounterVec
	SweepDuration   prometheus.Histogram
	SweepProgress   prometheus.Gauge

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewMetrics registers fecons metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fecons_pipeline_runs_total",
		Help: "Costing pipeline runs, labeled by machine type, fuel and outcome.",
	}, []string{"machine", "fuel", "outcome"}), "fecons_pipeline_runs_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fecons_pipeline_duration_seconds",
		Help:    "Costing pipeline latency in seconds.",
		Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	}, []string{"machine"}), "fecons_pipeline_duration_seconds")
	if err != nil {
		return nil, err
	}

	params, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fecons_sweep_parameters_total",
		Help: "Sensitivity sweep parameters, labeled by result (analyzed, failure, skipped_zero).",
	}, []string{"result"}), "fecons_sweep_parameters_total")
	if err != nil {
		return nil, err
	}

	sweepDuration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "fecons_sweep_duration_seconds",
		Help:    "Wall time of complete sensitivity sweeps.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}), "fecons_sweep_duration_seconds")
	if err != nil {
		return nil, err
	}

	progress, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fecons_sweep_progress_ratio",
		Help: "Fraction of the current sensitivity sweep that has completed.",
	}), "fecons_sweep_progress_ratio")
	if err != nil {
		return nil, err
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fecons_http_requests_total",
		Help: "Handled HTTP requests, labeled by method, route pattern and status code.",
	}, []string{"method", "route", "code"}), "fecons_http_requests_total")
	if err != nil {
		return nil, err
	}

	httpDuration, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fecons_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"method", "route"}), "fecons_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:         gatherer,
		PipelineRuns:     runs,
		PipelineDuration: durations,
		SweepParameters:  params,
		SweepDuration:    sweepDuration,
		SweepProgress:    progress,
		HTTPRequests:     requests,
		HTTPDuration:     httpDuration,
	}, nil
}

// ObserveRun satisfies calculation.RunObserver
func (m *Metrics) ObserveRun(machine, fuel string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	if machine == "" {
		machine = "unknown"
	}
	if fuel == "" {
		fuel = "unknown"
	}
	m.PipelineRuns.WithLabelValues(machine, fuel, Outcome(err)).Inc()
	m.PipelineDuration.WithLabelValues(machine).Observe(elapsed.Seconds())
}

// Outcome classifies a pipeline error for the outcome label
func Outcome(err error) string {
	var verr *config.ValidationError
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &verr):
		return OutcomeInvalid
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	default:
		return OutcomeError
	}
}

// Progress returns a sweep progress callback that drives the progress gauge
// and then calls next, if any
func (m *Metrics) Progress(next calculation.ProgressFunc) calculation.ProgressFunc {
	return func(done, total int, path string) {
		if m != nil && total > 0 {
			m.SweepProgress.Set(float64(done) / float64(total))
		}
		if next != nil {
			next(done, total, path)
		}
	}
}

// ObserveSweep records the parameter counts and duration of a finished sweep
func (m *Metrics) ObserveSweep(res *domain.SensitivityResult, elapsed time.Duration) {
	if m == nil || res == nil {
		return
	}
	m.SweepParameters.WithLabelValues("analyzed").Add(float64(res.ParametersAnalyzed))
	m.SweepParameters.WithLabelValues("failure").Add(float64(len(res.Failures)))
	m.SweepParameters.WithLabelValues("skipped_zero").Add(float64(len(res.SkippedZero)))
	m.SweepDuration.Observe(elapsed.Seconds())
}

// Middleware records request counts and durations, labeled by the chi route
// pattern rather than the raw path
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		if m == nil {
			return
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes a ready-to-use /metrics handler.
func (m *Metrics) Handler() http.Handler {
	gatherer := m.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
