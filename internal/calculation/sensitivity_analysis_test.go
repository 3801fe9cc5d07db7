package calculation

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/rgehrsitz/fecons/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syntheticInputs has three live fields, one zero field and two fields the
// synthetic LCOE ignores
func syntheticInputs() *domain.Inputs {
	return &domain.Inputs{
		Basic: &domain.Basic{
			PNRL:              domain.F(2),
			PlantAvailability: domain.F(0.8),
			Downtime:          domain.F(0),
			AM:                domain.F(1),
			NMod:              domain.I(2),
		},
		Financial: &domain.Financial{InterestRate: domain.F(0.05)},
	}
}

// syntheticLCOE is 50 * p_nrl^2 * availability^-1 * interest^0.5
func syntheticLCOE(_ context.Context, in *domain.Inputs) (float64, error) {
	x := domain.Float(in.Basic.PNRL)
	y := domain.Float(in.Basic.PlantAvailability)
	z := domain.Float(in.Financial.InterestRate)
	return 50 * x * x / y * math.Sqrt(z), nil
}

// forwardElasticity is the exact forward-difference elasticity of v^a at relative step h
func forwardElasticity(a, h float64) float64 {
	return (math.Pow(1+h, a) - 1) / h
}

type memoryRecorder struct {
	mu       sync.Mutex
	entries  []domain.SensitivityEntry
	failures []domain.SensitivityFailure
	failOn   string
}

func (r *memoryRecorder) RecordEntry(_ context.Context, e domain.SensitivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.Path == r.failOn {
		return errors.New("disk full")
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *memoryRecorder) RecordFailure(_ context.Context, f domain.SensitivityFailure) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, f)
	return nil
}

func TestSensitivityAnalyzer_SyntheticElasticities(t *testing.T) {
	sa := &SensitivityAnalyzer{Pipeline: syntheticLCOE}
	const step = 0.01

	res, err := sa.Analyze(context.Background(), syntheticInputs(), domain.SensitivityOptions{Step: step, TopN: -1})
	require.NoError(t, err)

	assert.Equal(t, step, res.DeltaFraction)
	assert.InDelta(t, 50*4/0.8*math.Sqrt(0.05), res.BaselineLCOE, 1e-12)
	assert.Equal(t, 5, res.ParametersAnalyzed)
	assert.Equal(t, []string{"basic.downtime"}, res.SkippedZero)
	assert.Empty(t, res.Failures)
	assert.False(t, res.Interrupted)
	require.Len(t, res.Entries, 5)

	byPath := map[string]domain.SensitivityEntry{}
	for _, e := range res.Entries {
		byPath[e.Path] = e
	}

	analytic := map[string]float64{
		"basic.p_nrl":              2,
		"basic.plant_availability": -1,
		"financial.interest_rate":  0.5,
	}
	for path, a := range analytic {
		e, ok := byPath[path]
		require.True(t, ok, path)
		assert.InDelta(t, forwardElasticity(a, step), e.Elasticity, 1e-6, path)
		assert.InDelta(t, a, e.Elasticity, math.Abs(a)*step, "%s within the forward-difference error bound", path)
	}

	assert.Zero(t, byPath["basic.am"].Elasticity)
	assert.Zero(t, byPath["basic.n_mod"].Elasticity)

	x := byPath["basic.p_nrl"]
	assert.Equal(t, 2.0, x.BaselineValue)
	assert.Equal(t, "Fusion Power (P_NRL)", x.DisplayName)
	assert.InDelta(t, (x.PerturbedLCOE-res.BaselineLCOE)/0.02, x.Derivative, 1e-9)
}

func TestSensitivityAnalyzer_RankingIsDeterministic(t *testing.T) {
	sa := &SensitivityAnalyzer{Pipeline: syntheticLCOE}
	opts := domain.SensitivityOptions{TopN: -1}

	first, err := sa.Analyze(context.Background(), syntheticInputs(), opts)
	require.NoError(t, err)
	second, err := sa.Analyze(context.Background(), syntheticInputs(), opts)
	require.NoError(t, err)

	paths := func(r *domain.SensitivityResult) []string {
		var out []string
		for _, e := range r.Entries {
			out = append(out, e.Path)
		}
		return out
	}
	want := []string{
		"basic.p_nrl",
		"basic.plant_availability",
		"financial.interest_rate",
		// zero elasticity ties break by path
		"basic.am",
		"basic.n_mod",
	}
	assert.Equal(t, want, paths(first))
	assert.Equal(t, first, second)
}

func TestSensitivityAnalyzer_ParallelMatchesSequential(t *testing.T) {
	sa := &SensitivityAnalyzer{Pipeline: syntheticLCOE}

	sequential, err := sa.Analyze(context.Background(), syntheticInputs(), domain.SensitivityOptions{TopN: -1})
	require.NoError(t, err)
	parallel, err := sa.Analyze(context.Background(), syntheticInputs(), domain.SensitivityOptions{TopN: -1, Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
}

func TestSensitivityAnalyzer_TopN(t *testing.T) {
	sa := &SensitivityAnalyzer{Pipeline: syntheticLCOE}

	res, err := sa.Analyze(context.Background(), syntheticInputs(), domain.SensitivityOptions{TopN: 2})
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, "basic.p_nrl", res.Entries[0].Path)
	assert.Equal(t, 5, res.ParametersAnalyzed)
}

func TestSensitivityAnalyzer_BaselineMustBeUsable(t *testing.T) {
	zero := &SensitivityAnalyzer{Pipeline: func(context.Context, *domain.Inputs) (float64, error) { return 0, nil }}
	_, err := zero.Analyze(context.Background(), syntheticInputs(), domain.SensitivityOptions{})
	assert.ErrorIs(t, err, ErrBaselineLCOE)

	inf := &SensitivityAnalyzer{Pipeline: func(context.Context, *domain.Inputs) (float64, error) { return math.Inf(1), nil }}
	_, err = inf.Analyze(context.Background(), syntheticInputs(), domain.SensitivityOptions{})
	assert.ErrorIs(t, err, ErrBaselineLCOE)

	broken := &SensitivityAnalyzer{Pipeline: func(context.Context, *domain.Inputs) (float64, error) { return 0, errors.New("boom") }}
	_, err = broken.Analyze(context.Background(), syntheticInputs(), domain.SensitivityOptions{})
	assert.ErrorContains(t, err, "baseline run failed")

	_, err = (&SensitivityAnalyzer{}).Analyze(context.Background(), syntheticInputs(), domain.SensitivityOptions{})
	assert.Error(t, err)
}

func TestSensitivityAnalyzer_FailuresDoNotAbortSweep(t *testing.T) {
	pipeline := func(ctx context.Context, in *domain.Inputs) (float64, error) {
		if domain.Float(in.Basic.PNRL) != 2 {
			return 0, errors.New("p_nrl out of range")
		}
		if domain.Float(in.Financial.InterestRate) != 0.05 {
			panic("division by zero")
		}
		if domain.Float(in.Basic.PlantAvailability) != 0.8 {
			return math.NaN(), nil
		}
		return syntheticLCOE(ctx, in)
	}
	recorder := &memoryRecorder{}
	sa := &SensitivityAnalyzer{Pipeline: pipeline, Recorder: recorder}

	res, err := sa.Analyze(context.Background(), syntheticInputs(), domain.SensitivityOptions{TopN: -1})
	require.NoError(t, err)

	require.Len(t, res.Failures, 3)
	failed := map[string]string{}
	for _, f := range res.Failures {
		failed[f.Path] = f.Error
	}
	assert.Contains(t, failed["basic.p_nrl"], "p_nrl out of range")
	assert.Contains(t, failed["financial.interest_rate"], "pipeline panic")
	assert.Contains(t, failed["basic.plant_availability"], "non-finite")

	assert.Len(t, res.Entries, 2)
	assert.Len(t, recorder.entries, 2)
	assert.Len(t, recorder.failures, 3)
}

func TestSensitivityAnalyzer_RecorderErrorsAreReturned(t *testing.T) {
	recorder := &memoryRecorder{failOn: "basic.am"}
	sa := &SensitivityAnalyzer{Pipeline: syntheticLCOE, Recorder: recorder}

	res, err := sa.Analyze(context.Background(), syntheticInputs(), domain.SensitivityOptions{TopN: -1})
	require.Error(t, err)
	assert.ErrorContains(t, err, "sweep ledger")
	assert.ErrorContains(t, err, "disk full")
	require.NotNil(t, res, "the sweep result survives a ledger failure")
	assert.Len(t, res.Entries, 5)
	assert.Len(t, recorder.entries, 4)
}

func TestSensitivityAnalyzer_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	pipeline := func(ctx context.Context, in *domain.Inputs) (float64, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return syntheticLCOE(ctx, in)
	}
	sa := &SensitivityAnalyzer{Pipeline: pipeline}

	res, err := sa.Analyze(ctx, syntheticInputs(), domain.SensitivityOptions{TopN: -1})
	require.NoError(t, err)
	assert.True(t, res.Interrupted)
	assert.Len(t, res.Entries, 1, "the run in flight when cancelled is kept")
	assert.Equal(t, 5, res.ParametersAnalyzed)
	assert.Equal(t, 2, calls, "no run is scheduled after cancellation")
}

func TestSensitivityAnalyzer_SkipResumesSweep(t *testing.T) {
	var seen []string
	var mu sync.Mutex
	sa := &SensitivityAnalyzer{
		Pipeline: syntheticLCOE,
		Progress: func(done, total int, path string) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, path)
			assert.Equal(t, 3, total)
			assert.Equal(t, len(seen), done)
		},
	}

	res, err := sa.Analyze(context.Background(), syntheticInputs(), domain.SensitivityOptions{
		TopN: -1,
		Skip: []string{"basic.p_nrl", "basic.am"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ParametersAnalyzed)
	assert.Len(t, seen, 3)
	for _, e := range res.Entries {
		assert.NotEqual(t, "basic.p_nrl", e.Path)
		assert.NotEqual(t, "basic.am", e.Path)
	}
}

func TestSensitivityAnalyzer_DoesNotModifyBaseline(t *testing.T) {
	in := syntheticInputs()
	before := in.Clone()

	_, err := (&SensitivityAnalyzer{Pipeline: syntheticLCOE}).Analyze(context.Background(), in, domain.SensitivityOptions{Workers: 3})
	require.NoError(t, err)
	assert.Equal(t, before, in)
}

func TestSensitivityAnalyzer_FullPipeline(t *testing.T) {
	engine := NewCalculationEngine()
	sa := NewSensitivityAnalyzer(engine)

	res, err := sa.Analyze(context.Background(), loadFixture(t, "catf_mfe.yaml"), domain.SensitivityOptions{TopN: 10, Workers: 4})
	require.NoError(t, err)

	assert.Greater(t, res.BaselineLCOE, 0.0)
	assert.Greater(t, res.ParametersAnalyzed, 40)
	require.Len(t, res.Entries, 10)
	for i := 1; i < len(res.Entries); i++ {
		assert.GreaterOrEqual(t, math.Abs(res.Entries[i-1].Elasticity), math.Abs(res.Entries[i].Elasticity))
	}
	for _, e := range res.Entries {
		assert.NotEmpty(t, e.DisplayName)
	}
	assert.Contains(t, res.SkippedZero, "power_input.f_dec")
}

func TestPerturbationStep(t *testing.T) {
	assert.InDelta(t, 0.02, perturbationStep(domain.Leaf{Value: 2}, 0.01), 1e-15)
	assert.InDelta(t, 0.02, perturbationStep(domain.Leaf{Value: -2}, 0.01), 1e-15)
	assert.Equal(t, 1.0, perturbationStep(domain.Leaf{Value: 2, IsInt: true}, 0.01))
	assert.Equal(t, 3.0, perturbationStep(domain.Leaf{Value: 250, IsInt: true}, 0.01))
}

func TestRankSensitivity(t *testing.T) {
	entries := []domain.SensitivityEntry{
		{Path: "b", Elasticity: 0.5},
		{Path: "c", Elasticity: -2},
		{Path: "a", Elasticity: -0.5},
		{Path: "d", Elasticity: 1},
	}
	RankSensitivity(entries)

	var got []string
	for _, e := range entries {
		got = append(got, e.Path)
	}
	assert.Equal(t, []string{"c", "d", "a", "b"}, got)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Thermal Efficiency (eta_th)", DisplayName("power_input.eta_th"))
	assert.Equal(t, "Interest Rate", DisplayName("financial.interest_rate"))
	assert.Equal(t, "Frac Cu", DisplayName("coils.frac_cu"))
	assert.Equal(t, "Standalone", DisplayName("standalone"))
}
