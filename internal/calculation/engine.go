package calculation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rgehrsitz/fecons/internal/config"
	"github.com/rgehrsitz/fecons/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/rgehrsitz/fecons/internal/calculation"

// netPowerTolerance is the relative gap between derived and target net power
// above which a run is flagged
const netPowerTolerance = 0.10

// RunObserver receives the outcome of every pipeline run
type RunObserver interface {
	ObserveRun(machine, fuel string, elapsed time.Duration, err error)
}

// CalculationEngine orchestrates the costing pipeline
type CalculationEngine struct {
	Constants *domain.CostingConstants
	Logger    Logger
	Observer  RunObserver
}

// NewCalculationEngine creates an engine over the compiled-in constants
func NewCalculationEngine() *CalculationEngine {
	c := domain.DefaultCostingConstants()
	return NewCalculationEngineWithConstants(&c)
}

// NewCalculationEngineWithConstants creates an engine over a caller-supplied
// constants table. The table is never modified.
func NewCalculationEngineWithConstants(constants *domain.CostingConstants) *CalculationEngine {
	return &CalculationEngine{
		Constants: constants,
		Logger:    NopLogger{},
	}
}

// SetLogger installs a logger; nil installs the no-op logger
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

func (ce *CalculationEngine) logger() Logger {
	if ce.Logger == nil {
		return NopLogger{}
	}
	return ce.Logger
}

// Quiet returns a copy of the engine that discards diagnostics
func (ce *CalculationEngine) Quiet() *CalculationEngine {
	cp := *ce
	cp.Logger = NopLogger{}
	return &cp
}

// Run validates in and, if it is valid, evaluates every cost account and the
// LCOE/NPV aggregate. Invalid input returns a wrapped *config.ValidationError
// and no account is computed.
func (ce *CalculationEngine) Run(ctx context.Context, in *domain.Inputs) (*domain.EconomicsResult, error) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "fecons.pipeline")
	defer span.End()

	res, err := ce.run(ctx, in)

	if ce.Observer != nil {
		var machine, fuel string
		if in != nil && in.Basic != nil {
			machine, fuel = string(in.Basic.MachineType), string(in.Basic.FuelType)
		}
		ce.Observer.ObserveRun(machine, fuel, time.Since(start), err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("fecons.fuel", string(res.Fuel)),
		attribute.Int("fecons.n_mod", res.NMod),
		attribute.Float64("fecons.lcoe", res.LCOE),
	)
	return res, nil
}

// LCOE runs the pipeline and returns only the levelized cost
func (ce *CalculationEngine) LCOE(ctx context.Context, in *domain.Inputs) (float64, error) {
	res, err := ce.Run(ctx, in)
	if err != nil {
		return 0, err
	}
	return res.LCOE, nil
}

func (ce *CalculationEngine) run(ctx context.Context, in *domain.Inputs) (*domain.EconomicsResult, error) {
	log := ce.logger()
	if ce.Constants == nil {
		return nil, fmt.Errorf("calculation engine has no costing constants")
	}

	report := config.Validate(in)
	if err := report.Err(); err != nil {
		log.Errorf("%v", err)
		return nil, fmt.Errorf("pipeline not run: %w", err)
	}
	for _, w := range report.Warnings {
		log.Warnf("validation warning: %s", w)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	basic := in.Basic
	cctx := &costContext{
		in:   in,
		c:    ce.Constants,
		fuel: basic.FuelType,
		mfe:  basic.MachineType == domain.MachineMFE,
		noak: basic.NOAK,
		nMod: float64(domain.IntOr(basic.NMod, 1)),
		log:  log,
	}
	cctx.projectTime = TotalProjectTime(domain.Float(basic.ConstructionTime), cctx.fuel, cctx.noak, ce.Constants)

	res := &domain.EconomicsResult{
		Name:             in.Name,
		Fuel:             basic.FuelType,
		NOAK:             basic.NOAK,
		NMod:             int(cctx.nMod),
		TotalProjectTime: cctx.projectTime,
	}
	if cctx.mfe {
		res.CoilModel = in.Coils.Model().String()
	}

	var err error
	err = stage(ctx, "geometry", func() error {
		cctx.geom, err = ComputeGeometry(basic, in.RadialBuild)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("geometry: %w", err)
	}
	res.Geometry = cctx.geom

	err = stage(ctx, "power_balance", func() error {
		cctx.power, res.FuelSplit, err = ComputePowerBalance(basic, in.PowerInput)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("power balance: %w", err)
	}
	res.PowerTable = cctx.power
	log.Debugf("power balance: p_et=%.1f MW p_net=%.1f MW q_eng=%.2f", cctx.power.PET, cctx.power.PNet, cctx.power.QEng)

	if target := basic.PNetTarget; target != nil && *target > 0 {
		gap := math.Abs(cctx.power.PNet-*target) / *target
		if gap > netPowerTolerance {
			note := fmt.Sprintf("derived net power %.1f MW differs from target %.1f MW by %.0f%%", cctx.power.PNet, *target, gap*100)
			log.Warnf("%s", note)
			res.Notes = append(res.Notes, note)
		}
	}

	if err := stage(ctx, "accounts", func() error { return computeAccounts(cctx, res) }); err != nil {
		return nil, err
	}
	if err := stage(ctx, "aggregate", func() error { return aggregate(cctx, res) }); err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	log.Infof("%s: LCOE %.2f $/MWh, NPV %.1f M$, overnight %.1f M$", describe(res), res.LCOE, res.NPV, res.OvernightCost)
	return res, nil
}

// stage runs fn inside a child span
func stage(ctx context.Context, name string, fn func() error) error {
	_, span := otel.Tracer(tracerName).Start(ctx, "fecons."+name, trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()
	err := fn()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// computeAccounts evaluates the cost accounts in dependency order
func computeAccounts(cctx *costContext, res *domain.EconomicsResult) error {
	cas10, err := computeCAS10(cctx)
	if err != nil {
		return err
	}
	cas21, err := computeCAS21(cctx)
	if err != nil {
		return err
	}
	cas22, err := computeCAS22(cctx)
	if err != nil {
		return err
	}
	bop, err := computeBalanceOfPlant(cctx)
	if err != nil {
		return err
	}

	direct := append([]domain.CostAccountResult{cas21, cas22}, bop...)
	cas29, err := computeCAS29(cctx, direct)
	if err != nil {
		return err
	}
	parts := append(direct, cas29)
	cas20, err := summarizeCAS20(cctx, parts)
	if err != nil {
		return err
	}

	cas30, err := computeCAS30(cctx, cas20.Total)
	if err != nil {
		return err
	}
	var cas23to28 float64
	for _, r := range bop {
		cas23to28 += r.Total
	}
	cas50, err := computeCAS50(cctx, cas23to28)
	if err != nil {
		return err
	}

	res.OvernightCost = cas10.Total + cas20.Total + cas30.Total + cas50.Total
	cas60, err := computeCAS60(cctx, res.OvernightCost)
	if err != nil {
		return err
	}
	res.TotalCapitalCost = res.OvernightCost + cas60.Total

	cas70, err := computeCAS70(cctx)
	if err != nil {
		return err
	}
	cas80, err := computeCAS80(cctx)
	if err != nil {
		return err
	}
	cas90, err := computeCAS90(cctx, res.TotalCapitalCost)
	if err != nil {
		return err
	}

	res.Accounts = make([]domain.CostAccountResult, 0, 17)
	res.Accounts = append(res.Accounts, cas10, cas20)
	res.Accounts = append(res.Accounts, parts...)
	res.Accounts = append(res.Accounts, cas30, cas50, cas60, cas70, cas80, cas90)

	for _, a := range res.Accounts {
		cctx.log.Debugf("%s %-36s %12.3f M$", a.Code, a.Label, a.Total)
	}
	return nil
}

func describe(res *domain.EconomicsResult) string {
	name := res.Name
	if name == "" {
		name = "design"
	}
	maturity := "FOAK"
	if res.NOAK {
		maturity = "NOAK"
	}
	return fmt.Sprintf("%s (%s, %s, %d module(s))", name, res.Fuel.Label(), maturity, res.NMod)
}
