package cli

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/engine"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/metrics"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/report"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	Profile     string
	MetricsFile string
	Strict      bool

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze <event-log>",
		Short: "Analyze one fight and print the report",
		Long: `Normalize the fight's events, resolve the modules named by the profile,
dispatch every event to them and print what each module measured.

Listener failures are reported per module and do not stop the run unless
--strict is set.

Example:
  fightlog analyze --profile restoration.cue fight.yaml
  fightlog analyze --format json --metrics-file run.prom fight.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Profile, "profile", "p", "", "CUE analysis profile (default: built-in)")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit 1 if any module listener failed")

	return cmd
}

func runAnalyze(opts *AnalyzeOptions, logPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	metricsFile := opts.MetricsFile
	if metricsFile == "" {
		metricsFile = opts.Env.MetricsFile
	}
	if metricsFile != "" {
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			return formatter.fail(ExitCommandError, &LoadError{Code: ErrCodeMetrics, Message: err.Error(), Err: err})
		}
	}

	prof, lerr := loadProfile(profilePath(opts.Profile, opts.RootOptions))
	if lerr != nil {
		return formatter.fail(exitCodeFor(lerr), lerr)
	}
	file, lerr := loadEventLog(logPath)
	if lerr != nil {
		return formatter.fail(exitCodeFor(lerr), lerr)
	}
	formatter.VerboseLog("Loaded %d events for fight %d, profile %q", len(file.Events), file.Fight.ID, prof.Name)

	catalog, err := prof.Catalog()
	if err != nil {
		return formatter.fail(ExitFailure, moduleGraphError(err))
	}

	analyzerOpts := []engine.AnalyzerOption{
		engine.WithLogger(slog.Default()),
		engine.WithNormalizers(prof.Normalizers()...),
	}
	if opts.RunIDs != nil {
		analyzerOpts = append(analyzerOpts, engine.WithRunIDs(opts.RunIDs))
	}
	res, err := engine.NewAnalyzer(catalog, prof.Roots(), analyzerOpts...).Run(&file.Fight, file.Events)
	if err != nil {
		return formatter.fail(ExitFailure, moduleGraphError(err))
	}

	rep := report.Build(res)
	if err := formatter.Success(rep); err != nil {
		return WrapExitError(ExitCommandError, ErrCodeWriteFailed, err)
	}

	if metricsFile != "" {
		if err := metrics.WriteTextfile(metricsFile, prometheus.DefaultGatherer); err != nil {
			return WrapExitError(ExitCommandError, ErrCodeMetrics,
				fmt.Errorf("write metrics %s: %w", metricsFile, err))
		}
		formatter.VerboseLog("Wrote metrics to %s", metricsFile)
	}

	if opts.Strict && rep.Failures() > 0 {
		return NewExitError(ExitFailure,
			fmt.Sprintf("%s: %d listener failure(s)", ErrCodeStrictFailed, rep.Failures()))
	}
	return nil
}

// exitCodeFor maps input errors to exit codes: missing inputs are command
// errors, malformed ones are failures.
func exitCodeFor(le *LoadError) int {
	if le.Code == ErrCodeNotFound {
		return ExitCommandError
	}
	return ExitFailure
}
