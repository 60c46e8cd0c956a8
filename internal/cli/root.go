package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/config"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	LogFile  string
	LogLevel string

	// Env is the configuration loaded from FIGHTLOG_* variables. Flags
	// set on the command line take precedence over it.
	Env config.Config

	logCloser io.Closer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the fightlog CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "fightlog",
		Short: "fightlog - combat log analysis",
		Long: `Analyze the combat log of one fight: normalize the event stream,
resolve the configured analysis modules, and report what they measured.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logCloser != nil {
				return opts.logCloser.Close()
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log-file", "", "also write logs to this file (rotated)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")

	// Add subcommands
	cmd.AddCommand(NewAnalyzeCommand(opts))
	cmd.AddCommand(NewNormalizeCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// setup merges environment configuration under the flags and installs the
// process logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	env, err := config.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid environment", err)
	}
	o.Env = env

	flags := cmd.Flags()
	if !flags.Changed("format") && env.Format != "" {
		o.Format = env.Format
	}
	if !flags.Changed("log-file") {
		o.LogFile = env.LogFile
	}
	if !flags.Changed("log-level") {
		o.LogLevel = env.LogLevel
	}
	if o.Verbose {
		o.LogLevel = "debug"
	}

	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	l, closer, err := logger.New(logger.Config{
		Level:  o.LogLevel,
		Format: env.LogFormat,
		File:   o.LogFile,
	}, cmd.ErrOrStderr())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid logging configuration", err)
	}
	o.logCloser = closer
	slog.SetDefault(l)
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
