package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/fixture-sync/internal/calendar"
	"github.com/pfrederiksen/fixture-sync/internal/config"
	"github.com/pfrederiksen/fixture-sync/internal/logger"
	"github.com/pfrederiksen/fixture-sync/internal/metrics"
	"github.com/pfrederiksen/fixture-sync/internal/notifier"
	"github.com/pfrederiksen/fixture-sync/internal/schedule"
	"github.com/pfrederiksen/fixture-sync/internal/storage"
	"github.com/pfrederiksen/fixture-sync/internal/syncer"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

const shutdownTimeout = 5 * time.Second

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	verbose    bool
	format     string

	// newSyncer is replaced in tests
	newSyncer func(cfg *config.Config, opts ...syncer.Option) (*syncer.Syncer, error)
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&rootOptions{newSyncer: syncer.New})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixture-sync",
		Short: "Sync Palmeiras fixtures into Google Calendar",
		Long: `A CLI tool that scrapes upcoming fixtures from the configured pages and mirrors
them into a Google Calendar, creating new events and moving rescheduled ones.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&opts.format, "format", "text", "Output format: text or json")

	cmd.AddCommand(
		newSyncCmd(opts),
		newStatusCmd(opts),
		newScheduleCmd(opts),
		newFixturesCmd(opts),
		newExportCmd(opts),
	)

	return cmd
}

// load reads the configuration and points the logger at stderr.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, OutputFormat, error) {
	format, err := ParseFormat(o.format)
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, "", err
	}

	level := logger.ParseLevel(cfg.LogLevel)
	if o.verbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	return cfg, format, nil
}

// alertOptions prints failure alerts to stderr instead of delivering them when dryRun is set.
func alertOptions(cmd *cobra.Command, dryRun bool) []syncer.Option {
	if !dryRun {
		return nil
	}
	return []syncer.Option{syncer.WithNotifier(notifier.NewDryRunNotifier(cmd.ErrOrStderr()))}
}

func newSyncCmd(opts *rootOptions) *cobra.Command {
	var dryRunAlerts bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync pass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, format, err := opts.load(cmd)
			if err != nil {
				return err
			}

			s, err := opts.newSyncer(cfg, alertOptions(cmd, dryRunAlerts)...)
			if err != nil {
				return err
			}

			run, runErr := s.Run(cmd.Context())
			if err := WriteRun(cmd.OutOrStdout(), run, format); err != nil {
				return errors.Wrap(err, "writing output")
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&dryRunAlerts, "dry-run-alerts", false, "Print failure alerts instead of sending them")

	return cmd
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the last sync run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, format, err := opts.load(cmd)
			if err != nil {
				return err
			}

			s, err := opts.newSyncer(cfg)
			if err != nil {
				return err
			}

			run, err := s.Status(cmd.Context())
			if errors.Is(err, storage.ErrNoRun) {
				fmt.Fprintln(cmd.OutOrStdout(), "No sync run recorded yet.")
				return nil
			}
			if err != nil {
				return err
			}
			return WriteRun(cmd.OutOrStdout(), run, format)
		},
	}
}

func newScheduleCmd(opts *rootOptions) *cobra.Command {
	var (
		spec        string
		metricsAddr  string
		runNow       bool
		dryRunAlerts bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run sync passes on a cron schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if spec != "" {
				cfg.Schedule = spec
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			recorder := metrics.NewRecorder()
			s, err := opts.newSyncer(cfg, append(alertOptions(cmd, dryRunAlerts), syncer.WithMetrics(recorder))...)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			job := func(ctx context.Context) error {
				_, err := s.Run(ctx)
				return err
			}

			scheduler, err := schedule.New(ctx, cfg.Schedule, loc, job)
			if err != nil {
				return errors.Mark(err, config.ErrConfig)
			}

			if metricsAddr != "" {
				stop := serveMetrics(metricsAddr, recorder)
				defer stop()
			}

			if runNow {
				if err := job(ctx); err != nil {
					logger.Warn("Initial run failed", logger.Fields{"error": err.Error()})
				}
			}

			scheduler.Run(ctx)
			return nil
		},
	}

	cmd.Flags().StringVar(&spec, "schedule", "", "Cron expression (overrides SYNC_SCHEDULE)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9108")
	cmd.Flags().BoolVar(&runNow, "run-now", false, "Run once immediately before waiting for the schedule")
	cmd.Flags().BoolVar(&dryRunAlerts, "dry-run-alerts", false, "Print failure alerts instead of sending them")

	return cmd
}

// serveMetrics exposes /metrics in the background and returns a shutdown function.
func serveMetrics(addr string, recorder *metrics.Recorder) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Serving metrics", logger.Fields{"addr": addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", logger.Fields{"addr": addr}, err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Warn("Metrics server shutdown failed", logger.Fields{"error": err.Error()})
		}
	}
}

func newFixturesCmd(opts *rootOptions) *cobra.Command {
	var sortFlag string

	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "List upcoming fixtures without touching the calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, format, err := opts.load(cmd)
			if err != nil {
				return err
			}
			order, err := ParseSortOrder(sortFlag)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			s, err := opts.newSyncer(cfg)
			if err != nil {
				return err
			}
			upcoming, err := s.Fixtures(cmd.Context())
			if err != nil {
				return err
			}
			sortMatches(upcoming, order)

			result := &FixturesResult{
				CheckedAt: time.Now().UTC(),
				Count:     len(upcoming),
				Fixtures:  upcoming,
			}
			return WriteFixtures(cmd.OutOrStdout(), result, format, loc, opts.verbose)
		},
	}

	cmd.Flags().StringVar(&sortFlag, "sort", string(SortByDate), "Sort order: date, opponent or competition")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write upcoming fixtures to an iCalendar (.ics) file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load(cmd)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			s, err := opts.newSyncer(cfg)
			if err != nil {
				return err
			}
			upcoming, err := s.Fixtures(cmd.Context())
			if err != nil {
				return err
			}
			if len(upcoming) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No upcoming fixtures found.")
				return nil
			}

			ics := calendar.GenerateICS(upcoming, loc, cfg.Team, time.Now())
			if output == "-" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), ics)
				return err
			}
			if err := os.WriteFile(output, []byte(ics), 0644); err != nil {
				return errors.Wrapf(err, "writing %s", output)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d fixtures to %s\n", len(upcoming), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "fixtures.ics", "Output file, or - for stdout")
	return cmd
}

// Execute runs the CLI with ctx and returns the process exit code
func Execute(ctx context.Context) int {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}
