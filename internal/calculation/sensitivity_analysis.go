package calculation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/rgehrsitz/fecons/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// ErrBaselineLCOE is returned when the unperturbed model has no usable LCOE
var ErrBaselineLCOE = errors.New("baseline LCOE is zero or not finite")

// PipelineFunc evaluates one Input Model to its LCOE in USD/MWh. It must not
// retain or modify the model it is given.
type PipelineFunc func(ctx context.Context, in *domain.Inputs) (float64, error)

// SweepRecorder receives each perturbation outcome as soon as it completes
type SweepRecorder interface {
	RecordEntry(ctx context.Context, entry domain.SensitivityEntry) error
	RecordFailure(ctx context.Context, failure domain.SensitivityFailure) error
}

// ProgressFunc is called after each perturbation run
type ProgressFunc func(done, total int, path string)

// SensitivityAnalyzer ranks input leaves by LCOE elasticity using forward
// differences over the whole pipeline
type SensitivityAnalyzer struct {
	Pipeline PipelineFunc
	Recorder SweepRecorder
	Progress ProgressFunc
	Logger   Logger
}

// NewSensitivityAnalyzer creates an analyzer whose inner runs use a quiet copy
// of engine
func NewSensitivityAnalyzer(engine *CalculationEngine) *SensitivityAnalyzer {
	quiet := engine.Quiet()
	return &SensitivityAnalyzer{
		Pipeline: quiet.LCOE,
		Logger:   engine.logger(),
	}
}

func (sa *SensitivityAnalyzer) logger() Logger {
	if sa.Logger == nil {
		return NopLogger{}
	}
	return sa.Logger
}

// perturbation is one indexed slot of a sweep
type perturbation struct {
	leaf    domain.Leaf
	delta   float64
	entry   *domain.SensitivityEntry
	failure *domain.SensitivityFailure
}

// Analyze perturbs every non-zero scalar leaf of baseline, re-runs the pipeline
// on an isolated clone, and returns the top-N entries by |elasticity|. A
// cancelled context stops scheduling new runs; completed entries are kept and
// the result is flagged Interrupted.
func (sa *SensitivityAnalyzer) Analyze(ctx context.Context, baseline *domain.Inputs, opts domain.SensitivityOptions) (*domain.SensitivityResult, error) {
	if sa.Pipeline == nil {
		return nil, fmt.Errorf("sensitivity analyzer has no pipeline")
	}
	if baseline == nil {
		return nil, fmt.Errorf("sensitivity analysis needs a baseline input model")
	}
	log := sa.logger()

	step := opts.Step
	if step <= 0 {
		step = domain.DefaultSensitivityStep
	}
	topN := opts.TopN
	if topN == 0 {
		topN = domain.DefaultSensitivityTopN
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "fecons.sensitivity")
	defer span.End()

	base, err := sa.Pipeline(ctx, baseline.Clone())
	if err != nil {
		return nil, fmt.Errorf("baseline run failed: %w", err)
	}
	if base == 0 || !isFinite(base) {
		return nil, fmt.Errorf("%w: %v", ErrBaselineLCOE, base)
	}
	log.Infof("sensitivity baseline LCOE %.4f $/MWh", base)

	result := &domain.SensitivityResult{DeltaFraction: step, BaselineLCOE: base}

	skip := make(map[string]bool, len(opts.Skip))
	for _, p := range opts.Skip {
		skip[p] = true
	}

	var slots []*perturbation
	for _, leaf := range domain.ScalarLeaves(baseline) {
		switch {
		case skip[leaf.Path]:
			continue
		case leaf.Value == 0:
			result.SkippedZero = append(result.SkippedZero, leaf.Path)
			continue
		}
		slots = append(slots, &perturbation{leaf: leaf, delta: perturbationStep(leaf, step)})
	}
	result.ParametersAnalyzed = len(slots)
	span.SetAttributes(attribute.Int("fecons.parameters", len(slots)), attribute.Float64("fecons.step", step))
	log.Infof("analyzing %d scalar parameters (%d skipped at zero)", len(slots), len(result.SkippedZero))

	var (
		mu         sync.Mutex
		done       int
		ledgerErrs error
	)
	// completed outcomes are still written after a cancellation
	ledgerCtx := context.WithoutCancel(ctx)
	finish := func(p *perturbation) {
		mu.Lock()
		defer mu.Unlock()
		done++
		if sa.Recorder != nil {
			if p.entry != nil {
				ledgerErrs = multierr.Append(ledgerErrs, sa.Recorder.RecordEntry(ledgerCtx, *p.entry))
			} else if p.failure != nil {
				ledgerErrs = multierr.Append(ledgerErrs, sa.Recorder.RecordFailure(ledgerCtx, *p.failure))
			}
		}
		if p.failure != nil {
			log.Warnf("[%d/%d] %s failed: %s", done, len(slots), p.leaf.Path, p.failure.Error)
		} else if p.entry != nil {
			log.Debugf("[%d/%d] %-45s elasticity=%+.6f", done, len(slots), p.leaf.Path, p.entry.Elasticity)
		}
		if sa.Progress != nil {
			sa.Progress(done, len(slots), p.leaf.Path)
		}
	}

	if opts.Workers > 1 {
		var g errgroup.Group
		g.SetLimit(opts.Workers)
		for _, p := range slots {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				if sa.measure(ctx, baseline, base, p) {
					finish(p)
				}
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for _, p := range slots {
			if ctx.Err() != nil {
				break
			}
			if sa.measure(ctx, baseline, base, p) {
				finish(p)
			}
		}
	}
	result.Interrupted = ctx.Err() != nil

	for _, p := range slots {
		switch {
		case p.entry != nil:
			result.Entries = append(result.Entries, *p.entry)
		case p.failure != nil:
			result.Failures = append(result.Failures, *p.failure)
		}
	}
	RankSensitivity(result.Entries)
	if topN > 0 && len(result.Entries) > topN {
		result.Entries = result.Entries[:topN]
	}
	if result.Interrupted {
		log.Warnf("sensitivity sweep interrupted after %d of %d parameters", done, len(slots))
	}

	if ledgerErrs != nil {
		return result, fmt.Errorf("sweep ledger: %w", ledgerErrs)
	}
	return result, nil
}

// measure runs one perturbation into its slot. It reports false when the run
// was abandoned because ctx was cancelled.
func (sa *SensitivityAnalyzer) measure(ctx context.Context, baseline *domain.Inputs, base float64, p *perturbation) (completed bool) {
	fail := func(err error) {
		p.failure = &domain.SensitivityFailure{Path: p.leaf.Path, Error: err.Error()}
	}
	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Errorf("pipeline panic: %v", r))
			completed = true
		}
	}()

	clone := baseline.Clone()
	if err := domain.SetLeaf(clone, p.leaf.Path, p.leaf.Value+p.delta); err != nil {
		fail(err)
		return true
	}
	lcoe, err := sa.Pipeline(ctx, clone)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		fail(err)
		return true
	}
	if !isFinite(lcoe) {
		fail(fmt.Errorf("%w: perturbed LCOE %v", ErrNonFinite, lcoe))
		return true
	}

	derivative := (lcoe - base) / p.delta
	p.entry = &domain.SensitivityEntry{
		Path:          p.leaf.Path,
		DisplayName:   DisplayName(p.leaf.Path),
		BaselineValue: p.leaf.Value,
		PerturbedLCOE: lcoe,
		Derivative:    derivative,
		Elasticity:    ((lcoe - base) / base) / (p.delta / p.leaf.Value),
	}
	return true
}

// perturbationStep is the absolute forward step for a leaf. Integer leaves
// move by at least one whole unit.
func perturbationStep(leaf domain.Leaf, step float64) float64 {
	delta := math.Abs(leaf.Value) * step
	if leaf.IsInt {
		delta = math.Max(1, math.Round(delta))
	}
	return delta
}

// RankSensitivity orders entries by descending |elasticity|, ties by path
func RankSensitivity(entries []domain.SensitivityEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ai, aj := math.Abs(entries[i].Elasticity), math.Abs(entries[j].Elasticity)
		if ai != aj {
			return ai > aj
		}
		return entries[i].Path < entries[j].Path
	})
}
