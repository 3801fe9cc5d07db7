package main

import (
	"fmt"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rgehrsitz/fecons/internal/calculation"
	"github.com/rgehrsitz/fecons/internal/domain"
	"github.com/rgehrsitz/fecons/internal/observability"
	"github.com/rgehrsitz/fecons/internal/server"
	"github.com/rgehrsitz/fecons/internal/store"
	"github.com/rgehrsitz/fecons/internal/tui"
	"github.com/spf13/cobra"
)

func serveCmd(opts *globalOptions) *cobra.Command {
	var (
		addr    string
		dbPath  string
		maxBody int64
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the costing pipeline over HTTP",
		Long: `Serve the validator, the costing pipeline and sensitivity sweeps as a JSON
API, with Prometheus metrics on /metrics.

Environment:
  FECONS_ADDR              listen address (default :8080)
  FECONS_DB                SQLite sweep ledger; sweeps are not persisted when empty
  FECONS_LOG_LEVEL         debug, info, warn or error
  FECONS_TRACING_ENABLED   true to export OpenTelemetry spans
  FECONS_TRACING_EXPORTER  stdout (default) or none`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := opts.logger(cmd)

			shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
			if err != nil {
				return err
			}
			defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

			metrics, err := observability.NewMetrics(nil)
			if err != nil {
				return fmt.Errorf("registering metrics: %w", err)
			}

			engine, err := opts.engine(log)
			if err != nil {
				return err
			}
			engine.Observer = metrics

			srv := server.NewServer(engine)
			srv.Metrics = metrics
			srv.Logger = log
			srv.Workers = max(1, opts.workers)
			if maxBody > 0 {
				srv.MaxBodyBytes = maxBody
			}

			if dbPath != "" {
				st, err := store.Open(ctx, dbPath)
				if err != nil {
					return err
				}
				defer func() {
					if cerr := st.Close(); cerr != nil {
						log.Errorf("closing sweep ledger: %v", cerr)
					}
				}()
				st.SetLogger(log)
				srv.Store = st
				log.Infof("recording sweeps in %s", dbPath)
			}

			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", envOr("FECONS_ADDR", ":8080"), "Listen address")
	cmd.Flags().StringVar(&dbPath, "db", os.Getenv("FECONS_DB"), "SQLite sweep ledger")
	cmd.Flags().Int64Var(&maxBody, "max-body", envInt64("FECONS_MAX_BODY_BYTES", 0), "Maximum request body size in bytes (0 for the default)")
	return cmd
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func exploreCmd(opts *globalOptions) *cobra.Command {
	var (
		step float64
		top  int
	)
	cmd := &cobra.Command{
		Use:   "explore [input-file]",
		Short: "Browse cost accounts and sensitivity rankings in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputFile := args[0]
			if _, err := os.Stat(inputFile); err != nil {
				return fmt.Errorf("input file: %w", err)
			}
			// the alternate screen owns the terminal; diagnostics would corrupt it
			engine, err := opts.engine(calculation.NopLogger{})
			if err != nil {
				return err
			}

			model := tui.NewModel(inputFile, engine, domain.SensitivityOptions{
				Step:    step,
				TopN:    top,
				Workers: opts.workers,
			})
			p := tea.NewProgram(
				model,
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running explorer: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&step, "step", domain.DefaultSensitivityStep, "Relative perturbation per parameter")
	cmd.Flags().IntVar(&top, "top", 25, "Number of ranked parameters to show (negative for all)")
	return cmd
}
