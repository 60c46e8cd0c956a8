package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/eventlog"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/normalize"
)

// NormalizeOptions holds flags for the normalize command.
type NormalizeOptions struct {
	*RootOptions
	Profile string
	Output  string
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NormalizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "normalize <event-log>",
		Short: "Run the normalizer pipeline and print the resulting log",
		Long: `Run the profile's normalizers over a fight log and write the frozen
event list with assigned IDs and relation tags.

The log is written as YAML, or as JSON with --format json.

Example:
  fightlog normalize --profile guardian.cue fight.yaml
  fightlog normalize --format json -o normalized.json fight.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Profile, "profile", "p", "", "CUE analysis profile (default: built-in)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write to this file instead of stdout")

	return cmd
}

func runNormalize(opts *NormalizeOptions, logPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	prof, lerr := loadProfile(profilePath(opts.Profile, opts.RootOptions))
	if lerr != nil {
		return formatter.fail(exitCodeFor(lerr), lerr)
	}
	file, lerr := loadEventLog(logPath)
	if lerr != nil {
		return formatter.fail(exitCodeFor(lerr), lerr)
	}

	pipeline := normalize.NewPipeline(prof.Normalizers(), normalize.WithLogger(slog.Default()))
	log, stats := pipeline.Run(&file.Fight, file.Events)
	for _, s := range stats.Steps {
		formatter.VerboseLog("%s: %d changes", s.Name, s.Changes)
	}
	formatter.VerboseLog("%d events, %d relations, %d anomalies", stats.Output, stats.Relations, stats.Anomalies)

	format := eventlog.FormatYAML
	if opts.Format == "json" {
		format = eventlog.FormatJSON
	}
	out := eventlog.NewNormalized(&file.Fight, log)

	if opts.Output == "" {
		if err := out.Encode(formatter.Writer, format); err != nil {
			return WrapExitError(ExitCommandError, ErrCodeWriteFailed, err)
		}
		return nil
	}

	f, err := os.Create(opts.Output)
	if err != nil {
		return formatter.fail(ExitCommandError, &LoadError{Code: ErrCodeWriteFailed, Message: err.Error(), Err: err})
	}
	if err := out.Encode(f, format); err != nil {
		f.Close()
		return WrapExitError(ExitCommandError, ErrCodeWriteFailed, err)
	}
	if err := f.Close(); err != nil {
		return WrapExitError(ExitCommandError, ErrCodeWriteFailed, err)
	}
	formatter.VerboseLog("Wrote %d events to %s", stats.Output, opts.Output)
	return nil
}
