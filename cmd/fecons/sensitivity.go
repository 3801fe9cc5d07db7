package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rgehrsitz/fecons/internal/calculation"
	"github.com/rgehrsitz/fecons/internal/domain"
	"github.com/rgehrsitz/fecons/internal/output"
	"github.com/rgehrsitz/fecons/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func sensitivityCmd(opts *globalOptions) *cobra.Command {
	var (
		step   float64
		top    int
		format string
		dbPath string
		resume bool
	)
	cmd := &cobra.Command{
		Use:   "sensitivity [input-file]",
		Short: "Rank input parameters by their LCOE elasticity",
		Long: `Perturb every non-zero numeric input by a small relative step, re-run the
full costing pipeline, and rank the parameters by |elasticity|.

With --db every measurement is appended to a SQLite sweep ledger; an
interrupted sweep can be continued with --resume.

Examples:
  fecons sensitivity plant.yaml
  fecons sensitivity plant.yaml --step 0.02 --top 20 --workers 4
  fecons sensitivity plant.yaml --db sweeps.db --resume`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if resume && dbPath == "" {
				return errors.New("--resume needs a sweep ledger (--db)")
			}
			if step <= 0 || step >= 1 {
				return fmt.Errorf("--step must be in (0, 1), got %g", step)
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

			sa := calculation.NewSensitivityAnalyzer(engine)
			sa.Progress = func(done, total int, path string) {
				log.Debugf("sensitivity %d/%d %s", done, total, path)
			}
			sopts := domain.SensitivityOptions{Step: step, TopN: top, Workers: opts.workers}

			start := time.Now()
			res, runErr := runSweep(cmd.Context(), sa, in, sopts, dbPath, resume, log)
			if res == nil {
				return runErr
			}
			log.Infof("sensitivity sweep over %d parameter(s) took %s", res.ParametersAnalyzed, time.Since(start).Round(time.Millisecond))
			if res.Interrupted {
				log.Warnf("sweep interrupted; showing partial results")
			}

			if err := output.NewReportGenerator(cmd.OutOrStdout()).GenerateSensitivityReport(res, format); err != nil {
				return err
			}
			return runErr
		},
	}
	cmd.Flags().Float64Var(&step, "step", domain.DefaultSensitivityStep, "Relative perturbation per parameter")
	cmd.Flags().IntVar(&top, "top", domain.DefaultSensitivityTopN, "Number of ranked parameters to report (negative for all)")
	cmd.Flags().StringVarP(&format, "format", "f", "console", "Output format (console, csv, json)")
	cmd.Flags().StringVar(&dbPath, "db", os.Getenv("FECONS_DB"), "SQLite sweep ledger to record measurements in")
	cmd.Flags().BoolVar(&resume, "resume", false, "Continue the newest unfinished sweep of this input in the ledger")
	return cmd
}

// runSweep runs the analyzer directly, or through the ledger when dbPath is set
func runSweep(ctx context.Context, sa *calculation.SensitivityAnalyzer, in *domain.Inputs, sopts domain.SensitivityOptions, dbPath string, resume bool, log calculation.Logger) (*domain.SensitivityResult, error) {
	if dbPath == "" {
		return sa.Analyze(ctx, in, sopts)
	}

	st, err := store.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			log.Errorf("closing sweep ledger: %v", cerr)
		}
	}()
	st.SetLogger(log)

	run, err := st.RunSweep(ctx, sa, in, sopts, resume)
	if run == nil {
		return nil, err
	}
	if run.Resumed {
		log.Infof("resumed sweep %d (%d parameter(s) already recorded)", run.SweepID, run.Skipped)
	} else {
		log.Infof("recording sweep %d in %s", run.SweepID, dbPath)
	}
	return run.Result, err
}

func sweepsCmd(opts *globalOptions) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "sweeps",
		Short: "Inspect sensitivity sweeps recorded in the ledger",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", envOr("FECONS_DB", "fecons.db"), "SQLite sweep ledger")

	openLedger := func(cmd *cobra.Command) (*store.Store, error) {
		if _, err := os.Stat(dbPath); err != nil {
			return nil, fmt.Errorf("sweep ledger %s: %w", dbPath, err)
		}
		st, err := store.Open(cmd.Context(), dbPath)
		if err != nil {
			return nil, err
		}
		st.SetLogger(opts.logger(cmd))
		return st, nil
	}

	var listFormat string
	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded sweeps, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			st, err := openLedger(cmd)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, st.Close()) }()

			sweeps, err := st.ListSweeps(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if strings.ToLower(listFormat) == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(sweeps)
			}
			if len(sweeps) == 0 {
				fmt.Fprintln(out, "No sweeps recorded.")
				return nil
			}
			fmt.Fprintf(out, "%-6s %-20s %-12s %-8s %14s %10s\n", "ID", "Created", "Status", "Step", "Baseline LCOE", "Params")
			fmt.Fprintln(out, strings.Repeat("-", 75))
			for _, sw := range sweeps {
				fmt.Fprintf(out, "%-6d %-20s %-12s %-8s %14.2f %10d\n",
					sw.ID, sw.CreatedAt.Local().Format("2006-01-02 15:04:05"), sw.Status,
					strconv.FormatFloat(sw.DeltaFraction, 'g', -1, 64), sw.BaselineLCOE, sw.ParametersAnalyzed)
			}
			return nil
		},
	}
	list.Flags().StringVarP(&listFormat, "format", "f", "table", "Output format (table, json)")

	var (
		showFormat string
		showTop    int
	)
	show := &cobra.Command{
		Use:   "show [sweep-id]",
		Short: "Show the ranked result of one recorded sweep",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid sweep id %q", args[0])
			}
			st, err := openLedger(cmd)
			if err != nil {
				return err
			}
			defer func() { err = multierr.Append(err, st.Close()) }()

			sw, err := st.GetSweep(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if strings.ToLower(showFormat) == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(sw)
			}
			fmt.Fprintf(out, "Sweep %d  status=%s  created=%s  input=%s\n\n",
				sw.ID, sw.Status, sw.CreatedAt.Local().Format(time.RFC3339), sw.InputHash)
			return output.NewReportGenerator(out).GenerateSensitivityReport(sw.Result(showTop), showFormat)
		},
	}
	show.Flags().StringVarP(&showFormat, "format", "f", "console", "Output format (console, csv, json)")
	show.Flags().IntVar(&showTop, "top", domain.DefaultSensitivityTopN, "Number of ranked parameters to show (negative for all)")

	cmd.AddCommand(list, show)
	return cmd
}
