package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rgehrsitz/fecons/internal/calculation"
	"github.com/rgehrsitz/fecons/internal/config"
	"github.com/rgehrsitz/fecons/internal/domain"
	"github.com/rgehrsitz/fecons/internal/observability"
	"github.com/rgehrsitz/fecons/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err)
	return data
}

func fixtureJSON(t *testing.T, name string) []byte {
	t.Helper()
	in, err := config.NewInputParser().Parse(readFixture(t, name))
	require.NoError(t, err)
	data, err := json.Marshal(in)
	require.NoError(t, err)
	return data
}

func newTestServer(t *testing.T, withStore bool) (*Server, *observability.Metrics) {
	t.Helper()
	metrics, err := observability.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	engine := calculation.NewCalculationEngine()
	engine.Observer = metrics
	srv := NewServer(engine)
	srv.Metrics = metrics
	srv.Workers = 4
	if withStore {
		st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = st.Close() })
		srv.Store = st
	}
	return srv, metrics
}

func do(t *testing.T, h http.Handler, method, target, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, false)
	rr := do(t, srv.Routes(), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestEconomics_YAMLAndJSONAgree(t *testing.T) {
	srv, metrics := newTestServer(t, false)
	h := srv.Routes()

	yamlResp := do(t, h, http.MethodPost, "/v1/economics", "application/x-yaml", readFixture(t, "catf_mfe.yaml"))
	require.Equal(t, http.StatusOK, yamlResp.Code, yamlResp.Body.String())
	jsonResp := do(t, h, http.MethodPost, "/v1/economics", "application/json; charset=utf-8", fixtureJSON(t, "catf_mfe.yaml"))
	require.Equal(t, http.StatusOK, jsonResp.Code, jsonResp.Body.String())
	assert.Equal(t, "application/json", jsonResp.Header().Get("Content-Type"))

	var fromYAML, fromJSON domain.EconomicsResult
	require.NoError(t, json.Unmarshal(yamlResp.Body.Bytes(), &fromYAML))
	require.NoError(t, json.Unmarshal(jsonResp.Body.Bytes(), &fromJSON))
	assert.Greater(t, fromYAML.LCOE, 0.0)
	assert.Equal(t, fromYAML.LCOE, fromJSON.LCOE)

	in, _, err := config.NewInputParser().LoadFromFile("../../testdata/catf_mfe.yaml")
	require.NoError(t, err)
	want, err := calculation.NewCalculationEngine().LCOE(context.Background(), in)
	require.NoError(t, err)
	assert.InDelta(t, want, fromYAML.LCOE, 1e-9)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.PipelineRuns.WithLabelValues("mfe", "dt", observability.OutcomeOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("POST", "/v1/economics", "200")))
}

func TestEconomics_InvalidInputIs422WithViolations(t *testing.T) {
	srv, _ := newTestServer(t, false)
	rr := do(t, srv.Routes(), http.MethodPost, "/v1/economics", "application/yaml", readFixture(t, "invalid.yaml"))
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "input validation failed")
	assert.NotEmpty(t, body.Violations)

	report := config.Validate(mustParse(t, readFixture(t, "invalid.yaml")))
	assert.Equal(t, report.Errors, body.Violations, "every violation is reported, not just the first")
}

func TestEconomics_MalformedBody(t *testing.T) {
	srv, _ := newTestServer(t, false)
	h := srv.Routes()

	rr := do(t, h, http.MethodPost, "/v1/economics", "application/json", []byte(`{"basic": {"no_such_key": 1}}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "unknown field")

	rr = do(t, h, http.MethodPost, "/v1/economics", "application/yaml", []byte("basic:\n  typo_key: 3\n"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, "/v1/economics", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "empty")

	srv.MaxBodyBytes = 16
	rr = do(t, srv.Routes(), http.MethodPost, "/v1/economics", "application/yaml", readFixture(t, "catf_mfe.yaml"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "exceeds")
}

func TestValidate(t *testing.T) {
	srv, _ := newTestServer(t, false)
	h := srv.Routes()

	rr := do(t, h, http.MethodPost, "/v1/validate", "application/yaml", readFixture(t, "catf_mfe.yaml"))
	require.Equal(t, http.StatusOK, rr.Code)
	var ok validateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ok))
	assert.True(t, ok.Valid)
	assert.Empty(t, ok.Errors)

	rr = do(t, h, http.MethodPost, "/v1/validate", "application/yaml", readFixture(t, "invalid.yaml"))
	require.Equal(t, http.StatusOK, rr.Code, "validation findings are a successful answer")
	var bad validateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &bad))
	assert.False(t, bad.Valid)
	assert.NotEmpty(t, bad.Errors)
	assert.Empty(t, bad.Warnings)
}

func TestSensitivity_WithoutStore(t *testing.T) {
	srv, metrics := newTestServer(t, false)
	rr := do(t, srv.Routes(), http.MethodPost, "/v1/sensitivity?top=3&step=0.02", "application/yaml", readFixture(t, "catf_mfe.yaml"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Empty(t, rr.Header().Get("X-Sweep-Id"))

	var res domain.SensitivityResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.Len(t, res.Entries, 3)
	assert.Equal(t, 0.02, res.DeltaFraction)
	assert.Greater(t, res.ParametersAnalyzed, 3)
	assert.Equal(t, float64(res.ParametersAnalyzed), testutil.ToFloat64(metrics.SweepParameters.WithLabelValues("analyzed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SweepProgress))
}

func TestSensitivity_BadQuery(t *testing.T) {
	srv, _ := newTestServer(t, false)
	h := srv.Routes()
	for _, q := range []string{"top=-1", "top=x", "step=0", "step=1.5", "step=abc"} {
		rr := do(t, h, http.MethodPost, "/v1/sensitivity?"+q, "application/yaml", readFixture(t, "catf_mfe.yaml"))
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
	}

	rr := do(t, h, http.MethodPost, "/v1/sensitivity", "application/yaml", readFixture(t, "invalid.yaml"))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestSensitivity_PersistsToLedger(t *testing.T) {
	srv, _ := newTestServer(t, true)
	h := srv.Routes()

	rr := do(t, h, http.MethodPost, "/v1/sensitivity?top=5", "application/yaml", readFixture(t, "ife_laser.yaml"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	id := rr.Header().Get("X-Sweep-Id")
	require.NotEmpty(t, id)

	var res domain.SensitivityResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	assert.LessOrEqual(t, len(res.Entries), 5)
	assert.False(t, res.Interrupted)

	rr = do(t, h, http.MethodGet, "/v1/sweeps", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var sweeps []store.Sweep
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sweeps))
	require.Len(t, sweeps, 1)
	assert.Equal(t, store.StatusComplete, sweeps[0].Status)
	assert.InDelta(t, res.BaselineLCOE, sweeps[0].BaselineLCOE, 1e-9)

	rr = do(t, h, http.MethodGet, "/v1/sweeps/"+id, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var sw store.Sweep
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &sw))
	assert.Equal(t, res.ParametersAnalyzed, len(sw.Entries)+len(sw.Failures), "every analyzed parameter is in the ledger")

	rr = do(t, h, http.MethodGet, "/v1/sweeps/404", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = do(t, h, http.MethodGet, "/v1/sweeps/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSweeps_NoStore(t *testing.T) {
	srv, _ := newTestServer(t, false)
	rr := do(t, srv.Routes(), http.MethodGet, "/v1/sweeps", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "no sweep ledger")
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, false)
	h := srv.Routes()
	do(t, h, http.MethodGet, "/healthz", "", nil)

	rr := do(t, h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), `fecons_http_requests_total{code="200",method="GET",route="/healthz"} 1`), rr.Body.String())
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	srv, _ := newTestServer(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	assert.NoError(t, <-done)
}

func mustParse(t *testing.T, data []byte) *domain.Inputs {
	t.Helper()
	in, err := config.NewInputParser().Parse(data)
	require.NoError(t, err)
	return in
}
