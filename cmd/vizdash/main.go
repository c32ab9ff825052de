package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/spektr-org/vizdash"
	"github.com/spektr-org/vizdash/config"
	"github.com/spektr-org/vizdash/dashboard"
	"github.com/spektr-org/vizdash/metrics"
)

// ============================================================================
// VIZDASH CLI — One reactive pass per invocation
// ============================================================================
// The CLI stands in for the widget surface: selections arrive as flags, the
// pass runs once, and charts go to stdout in the requested format.
// ============================================================================

const version = "0.3.0"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by subcommands after flags are parsed.
type app struct {
	stdout, stderr io.Writer

	configPath string
	logLevel   string
	logFormat  string
	metricsOut string

	cfg      config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "vizdash",
		Short: "Memoized dashboards: load once, filter and chart on every selection",
		Long: `vizdash loads a dashboard's dataset, applies the selected filters and
prints declarative chart specifications for a display surface.

Dashboards:
  cancer    Age-specific cancer mortality rates (remote CSV pair)
  survey    Smoking prevalence from survey extract files

Examples:
  vizdash widgets cancer --format pretty
  vizdash describe survey --format text
  vizdash render cancer --select Year=2010 --select Sex=F --select Country=Spain,Turkey
  vizdash render survey --select YEAR=2019 --format arrow --out subset.arrow`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.flushMetrics()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Path to YAML config (defaults built in)")
	pf.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&a.logFormat, "log-format", "", "Log format: text, json")
	pf.StringVar(&a.metricsOut, "metrics-out", "", "Write Prometheus metrics to this file on exit")

	root.AddCommand(a.renderCmd(), a.widgetsCmd(), a.describeCmd(), a.versionCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	opts := &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}
	var handler slog.Handler = slog.NewTextHandler(a.stderr, opts)
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(a.stderr, opts)
	}
	a.logger = slog.New(handler)
	a.registry = prometheus.NewRegistry()

	a.logger.Debug("configured",
		slog.String("command", cmd.Name()),
		slog.String("config", a.configPath))
	return nil
}

func (a *app) flushMetrics() error {
	if a.metricsOut == "" || a.registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.metricsOut, a.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

func (a *app) pipeline(name string) (*dashboard.Pipeline, error) {
	reg := vizdash.Open(a.cfg,
		vizdash.WithLogger(a.logger),
		vizdash.WithMetrics(metrics.New(a.registry)))
	return reg.Get(name)
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "vizdash %s\n", version)
			return err
		},
	}
}
