package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rgehrsitz/fecons/internal/calculation"
	"github.com/rgehrsitz/fecons/internal/compare"
	"github.com/rgehrsitz/fecons/internal/config"
	"github.com/rgehrsitz/fecons/internal/domain"
	"github.com/rgehrsitz/fecons/internal/output"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalOptions holds the persistent flags shared by every command
type globalOptions struct {
	logLevel  string
	logFormat string
	quiet     bool
	constants string
	workers   int
}

// logger builds the diagnostics logger for cmd; --quiet discards everything
func (o *globalOptions) logger(cmd *cobra.Command) calculation.Logger {
	if o.quiet {
		return calculation.NopLogger{}
	}
	return newSlogLogger(cmd.ErrOrStderr(), o.logLevel, o.logFormat)
}

// engine creates a calculation engine over the default constants, or over the
// --constants override file when one is given
func (o *globalOptions) engine(log calculation.Logger) (*calculation.CalculationEngine, error) {
	engine := calculation.NewCalculationEngine()
	if o.constants != "" {
		c, err := config.NewInputParser().LoadConstants(o.constants)
		if err != nil {
			return nil, err
		}
		engine = calculation.NewCalculationEngineWithConstants(c)
		log.Infof("using costing constants from %s", o.constants)
	}
	engine.SetLogger(log)
	return engine, nil
}

// loadInputs reads and validates an input model, logging any warnings
func loadInputs(path string, log calculation.Logger) (*domain.Inputs, error) {
	in, warnings, err := config.NewInputParser().LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		log.Warnf("%s", w)
	}
	return in, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v, c, d := buildInfo()
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "fecons %s (commit %s, built %s)\n", v, c, d)
			return err
		},
	}
}

// buildInfo falls back to the module build info when ldflags were not set
func buildInfo() (string, string, string) {
	v, c, d := version, commit, date
	if info, ok := debug.ReadBuildInfo(); ok {
		if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if c == "none" && len(s.Value) >= 7 {
					c = s.Value[:7]
				}
			case "vcs.time":
				if d == "unknown" {
					d = s.Value
				}
			}
		}
	}
	return v, c, d
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "fecons",
		Short: "Fusion power plant costing engine",
		Long: `fecons costs a fusion power plant design through the CAS10-CAS90 account
structure and reports its levelized cost of electricity (LCOE) and NPV.

Examples:
  fecons calculate plant.yaml
  fecons calculate plant.yaml --format json
  fecons sensitivity plant.yaml --top 15 --db sweeps.db
  fecons compare plant.yaml --fuels dd,dhe3 --opposite-maturity
  fecons explore plant.yaml
  fecons serve --addr :8080`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.logLevel, "log-level", envOr("FECONS_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	pf.StringVar(&opts.logFormat, "log-format", envOr("FECONS_LOG_FORMAT", "text"), "Log format (text, json)")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress diagnostics")
	pf.StringVar(&opts.constants, "constants", "", "YAML file overriding the compiled-in costing constants")
	pf.IntVar(&opts.workers, "workers", 1, "Parallel pipeline runs for sweeps and comparisons")

	root.AddCommand(
		calculateCmd(opts),
		validateCmd(opts),
		sensitivityCmd(opts),
		compareCmd(opts),
		serveCmd(opts),
		exploreCmd(opts),
		sweepsCmd(opts),
		breakEvenCmd(opts),
		versionCmd(),
	)
	return root
}

func calculateCmd(opts *globalOptions) *cobra.Command {
	var format, outputDir string
	cmd := &cobra.Command{
		Use:   "calculate [input-file]",
		Short: "Cost a plant design and report LCOE, NPV and the account breakdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.logger(cmd)
			in, err := loadInputs(args[0], log)
			if err != nil {
				return err
			}
			engine, err := opts.engine(log)
			if err != nil {
				return err
			}
			res, err := engine.Run(cmd.Context(), in)
			if err != nil {
				return err
			}

			if outputDir != "" {
				f := output.GetFormatterByName(format)
				if f == nil {
					return fmt.Errorf("unsupported format: %s (available: %v)", format, output.AvailableFormatterNames())
				}
				path, err := output.WriteFormatted(f, res, outputDir, reportExtension(f.Name()))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
				return nil
			}
			return output.NewReportGenerator(cmd.OutOrStdout()).GenerateReport(res, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "console", "Output format ("+strings.Join(output.AvailableFormatterNames(), ", ")+")")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Write the report to a timestamped file in this directory")
	return cmd
}

func reportExtension(formatter string) string {
	switch formatter {
	case "json":
		return "json"
	case "csv", "detailed-csv":
		return "csv"
	case "html":
		return "html"
	default:
		return "txt"
	}
}

func validateCmd(opts *globalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "validate [input-file]",
		Short: "Validate an input model and list every error and warning",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputFile := args[0]
			data, err := os.ReadFile(inputFile)
			if err != nil {
				return fmt.Errorf("failed to read file %s: %w", inputFile, err)
			}
			in, err := config.NewInputParser().Parse(data)
			if err != nil {
				return fmt.Errorf("%s: %w", inputFile, err)
			}
			report := config.Validate(in)

			out := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			default:
				if report.Valid() {
					fmt.Fprintf(out, "Configuration file %s is valid\n", inputFile)
				} else {
					fmt.Fprintf(out, "Configuration file %s has %d error(s):\n", inputFile, len(report.Errors))
					for _, fe := range report.Errors {
						fmt.Fprintf(out, "  [%s] %s\n", fe.Kind, fe)
					}
				}
				for _, w := range report.Warnings {
					fmt.Fprintf(out, "  warning: %s\n", w)
				}
			}

			if err := report.Err(); err != nil {
				return fmt.Errorf("%s: %w", inputFile, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (text, json)")
	return cmd
}

func compareCmd(opts *globalOptions) *cobra.Command {
	var fuels []string
	var opposite bool
	var format string
	cmd := &cobra.Command{
		Use:   "compare [input-file]",
		Short: "Compare a design against alternative fuels and plant maturity",
		Long: `Cost the same design under alternative fuel types and/or the opposite
plant maturity (FOAK vs NOAK) and report LCOE deltas against the base.

Examples:
  fecons compare plant.yaml --fuels dd,dhe3
  fecons compare plant.yaml --opposite-maturity --format csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(fuels) == 0 && !opposite {
				return errors.New("nothing to compare: pass --fuels and/or --opposite-maturity")
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

			ce := compare.NewCompareEngine(engine)
			if f := cmd.Flag("workers"); f != nil && f.Changed {
				ce.Workers = opts.workers
			}
			compSet, err := ce.Compare(cmd.Context(), in, compare.CompareOptions{
				Fuels:            fuels,
				OppositeMaturity: opposite,
				ConfigPath:       filepath.Base(args[0]),
			})
			if err != nil {
				return err
			}

			var rendered string
			switch strings.ToLower(format) {
			case "table", "console":
				rendered = (&compare.TableFormatter{}).Format(compSet)
			case "csv":
				rendered, err = (&compare.CSVFormatter{}).Format(compSet)
			case "json":
				rendered, err = (&compare.JSONFormatter{Pretty: true}).Format(compSet)
			default:
				return fmt.Errorf("unknown output format: %s (valid: table, csv, json)", format)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), rendered)

			if err := compSet.Err(); err != nil {
				log.Warnf("some alternatives failed: %v", err)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&fuels, "fuels", nil, "Comma-separated alternative fuel types (dt, dd, dhe3, pb11)")
	cmd.Flags().BoolVar(&opposite, "opposite-maturity", false, "Also cost the design at the other maturity (FOAK/NOAK)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, csv, json)")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
