package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rgehrsitz/fecons/internal/breakeven"
	"github.com/spf13/cobra"
)

func breakEvenCmd(opts *globalOptions) *cobra.Command {
	var (
		target float64
		params []string
		lower  float64
		upper  float64
		format string
	)
	cmd := &cobra.Command{
		Use:   "break-even [input-file]",
		Short: "Find the input values at which a design reaches a target LCOE",
		Long: `Bisect one or more numeric inputs until the design's LCOE matches a target.

With a single --param the search interval can be fixed with --min and --max;
otherwise each parameter is searched within +/-50% of its baseline value.
Without --param the common design levers are ranked by how little they must
move to reach the target.

Examples:
  fecons break-even plant.yaml --target-lcoe 80
  fecons break-even plant.yaml --target-lcoe 80 --param basic.p_nrl --max 5000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if target <= 0 {
				return errors.New("--target-lcoe must be positive")
			}
			boundsSet := cmd.Flags().Changed("min") || cmd.Flags().Changed("max")
			if boundsSet && len(params) != 1 {
				return errors.New("--min and --max need exactly one --param")
			}
			log := opts.logger(cmd)
			in, err := loadInputs(args[0], log)
			if err != nil {
				return err
			}
			engine, err := opts.engine(log)
			if err != nil {
				return err
			}

			options := breakeven.DefaultSolverOptions()
			options.Workers = max(1, opts.workers)
			solver := breakeven.NewSolver(engine, options)

			var report any
			var table string
			tf := &breakeven.TableFormatter{}
			if len(params) == 1 {
				req := breakeven.Request{Baseline: in, Path: params[0], TargetLCOE: target}
				if cmd.Flags().Changed("min") {
					req.Min = &lower
				}
				if cmd.Flags().Changed("max") {
					req.Max = &upper
				}
				res, err := solver.Solve(cmd.Context(), req)
				if err != nil {
					return err
				}
				report, table = res, tf.Format(res)
			} else {
				multi, err := solver.SolveAll(cmd.Context(), in, params, target)
				if err != nil {
					return err
				}
				report, table = multi, tf.FormatMulti(multi)
			}

			switch strings.ToLower(format) {
			case "table", "console":
				fmt.Fprint(cmd.OutOrStdout(), table)
			case "json":
				out, err := (&breakeven.JSONFormatter{Pretty: true}).Format(report)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			default:
				return fmt.Errorf("unknown output format: %s (valid: table, json)", format)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&target, "target-lcoe", 0, "Target LCOE in $/MWh")
	cmd.Flags().StringArrayVar(&params, "param", nil, "Input path to solve for, repeatable (default: common design levers)")
	cmd.Flags().Float64Var(&lower, "min", 0, "Lower search bound (single --param only)")
	cmd.Flags().Float64Var(&upper, "max", 0, "Upper search bound (single --param only)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, json)")
	_ = cmd.MarkFlagRequired("target-lcoe")
	return cmd
}
