package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/rgehrsitz/fecons/internal/calculation"
	"github.com/rgehrsitz/fecons/internal/config"
	"github.com/rgehrsitz/fecons/internal/domain"
)

func TestEngineRunRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	in, _, err := config.NewInputParser().LoadFromFile("../../testdata/catf_mfe.yaml")
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	engine := calculation.NewCalculationEngine()
	engine.Observer = metrics

	if _, err := engine.Run(context.Background(), in); err != nil {
		t.Fatalf("Run: %v", err)
	}
	in.Basic.PNRL = domain.F(-1)
	if _, err := engine.Run(context.Background(), in); err == nil {
		t.Fatal("expected a validation failure")
	}

	if got := testutil.ToFloat64(metrics.PipelineRuns.WithLabelValues("mfe", "dt", OutcomeOK)); got != 1 {
		t.Fatalf("fecons_pipeline_runs_total ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.PipelineRuns.WithLabelValues("mfe", "dt", OutcomeInvalid)); got != 1 {
		t.Fatalf("fecons_pipeline_runs_total invalid = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "fecons_pipeline_duration_seconds", map[string]string{"machine": "mfe"}); count != 2 {
		t.Fatalf("fecons_pipeline_duration_seconds sample_count = %d, want 2", count)
	}
}

func TestObserveRunUnknownLabels(t *testing.T) {
	metrics, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	metrics.ObserveRun("", "", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(metrics.PipelineRuns.WithLabelValues("unknown", "unknown", OutcomeError)); got != 1 {
		t.Fatalf("unknown labels = %v, want 1", got)
	}

	var nilMetrics *Metrics
	nilMetrics.ObserveRun("mfe", "dt", time.Millisecond, nil)
	nilMetrics.ObserveSweep(&domain.SensitivityResult{}, time.Second)
}

func TestOutcome(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"nil":       {nil, OutcomeOK},
		"invalid":   {fmt.Errorf("pipeline not run: %w", &config.ValidationError{}), OutcomeInvalid},
		"cancelled": {fmt.Errorf("stage cas22: %w", context.Canceled), OutcomeCancelled},
		"deadline":  {context.DeadlineExceeded, OutcomeCancelled},
		"other":     {calculation.ErrNonPositiveNetPower, OutcomeError},
	}
	for name, tc := range cases {
		if got := Outcome(tc.err); got != tc.want {
			t.Errorf("%s: Outcome = %q, want %q", name, got, tc.want)
		}
	}
}

func TestProgressDrivesGauge(t *testing.T) {
	metrics, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	var seen []string
	progress := metrics.Progress(func(done, total int, path string) {
		seen = append(seen, path)
	})
	progress(1, 4, "basic.p_nrl")
	if got := testutil.ToFloat64(metrics.SweepProgress); got != 0.25 {
		t.Fatalf("fecons_sweep_progress_ratio = %v, want 0.25", got)
	}
	progress(4, 4, "financial.interest_rate")
	if got := testutil.ToFloat64(metrics.SweepProgress); got != 1 {
		t.Fatalf("fecons_sweep_progress_ratio = %v, want 1", got)
	}
	if len(seen) != 2 || seen[1] != "financial.interest_rate" {
		t.Fatalf("next callback saw %v", seen)
	}

	// a nil next and an empty sweep are both fine
	metrics.Progress(nil)(0, 0, "")
}

func TestObserveSweep(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	metrics.ObserveSweep(&domain.SensitivityResult{
		ParametersAnalyzed: 12,
		SkippedZero:        []string{"a", "b"},
		Failures:           []domain.SensitivityFailure{{Path: "c", Error: "boom"}},
	}, 250*time.Millisecond)

	if got := testutil.ToFloat64(metrics.SweepParameters.WithLabelValues("analyzed")); got != 12 {
		t.Fatalf("analyzed = %v, want 12", got)
	}
	if got := testutil.ToFloat64(metrics.SweepParameters.WithLabelValues("skipped_zero")); got != 2 {
		t.Fatalf("skipped_zero = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.SweepParameters.WithLabelValues("failure")); got != 1 {
		t.Fatalf("failure = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "fecons_sweep_duration_seconds", nil); count != 1 {
		t.Fatalf("fecons_sweep_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Get("/v1/sweeps/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/v1/sweeps/1", "/v1/sweeps/2", "/healthz", "/nowhere"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", "/v1/sweeps/{id}", "404")); got != 2 {
		t.Fatalf("sweep route count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", "/healthz", "200")); got != 1 {
		t.Fatalf("healthz count = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "fecons_http_request_duration_seconds", map[string]string{
		"method": "GET",
		"route":  "/v1/sweeps/{id}",
	}); count != 2 {
		t.Fatalf("fecons_http_request_duration_seconds sample_count = %d, want 2", count)
	}
}

func TestMetricsHandlerExposesCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	metrics.ObserveRun("ife", "dt", time.Millisecond, nil)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), `fecons_pipeline_runs_total{fuel="dt",machine="ife",outcome="ok"} 1`) {
		t.Fatalf("metrics body missing pipeline counter:\n%s", body)
	}
}

func TestNewMetricsReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	second, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("second NewMetrics: %v", err)
	}

	second.ObserveRun("mfe", "dd", time.Millisecond, nil)
	if got := testutil.ToFloat64(first.PipelineRuns.WithLabelValues("mfe", "dd", OutcomeOK)); got != 1 {
		t.Fatalf("shared counter = %v, want 1", got)
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	t.Fatalf("histogram %s with labels %v not found", name, labels)
	return 0
}

func matchLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	if len(want) == 0 {
		return true
	}
	matched := 0
	for _, p := range pairs {
		if v, ok := want[p.GetName()]; ok {
			if v != p.GetValue() {
				return false
			}
			matched++
		}
	}
	return matched == len(want)
}
