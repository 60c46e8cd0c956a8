package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/engine"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/fight"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/normalize"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool              `json:"valid"`
	Profile     string            `json:"profile,omitempty"`
	Modules     []string          `json:"modules,omitempty"`
	Normalizers []string          `json:"normalizers,omitempty"`
	Errors      []ValidationError `json:"errors,omitempty"`
}

// ValidationError is one problem found in a profile.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Profile string
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [event-log]",
		Short: "Validate a profile without analyzing a fight",
		Long: `Compile a CUE profile and resolve its module graph.

Catches schema errors, duplicate module names, dependency cycles and
failing module constructors before any log is analyzed. Modules are
constructed against the given fight, or an empty one.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			logPath := ""
			if len(args) == 1 {
				logPath = args[0]
			}
			return runValidate(opts, logPath, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Profile, "profile", "p", "", "CUE analysis profile (default: built-in)")

	return cmd
}

func runValidate(opts *ValidateOptions, logPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	path := profilePath(opts.Profile, opts.RootOptions)
	prof, lerr := loadProfile(path)
	if lerr != nil {
		if lerr.Code == ErrCodeNotFound {
			return formatter.fail(ExitCommandError, lerr)
		}
		return outputValidationErrors(formatter, []ValidationError{validationError(lerr)})
	}
	formatter.VerboseLog("Compiled profile %q from %s", prof.Name, orBuiltin(path))

	f := &fight.Fight{Player: fight.Combatant{ID: 1}}
	if logPath != "" {
		file, lerr := loadEventLog(logPath)
		if lerr != nil {
			return formatter.fail(exitCodeFor(lerr), lerr)
		}
		f = &file.Fight
	}

	catalog, err := prof.Catalog()
	if err != nil {
		return outputValidationErrors(formatter, []ValidationError{validationError(moduleGraphError(err))})
	}
	log, _ := normalize.NewPipeline(nil).Run(f, nil)
	reg, err := engine.Resolve(catalog, prof.Roots(), engine.Env{
		Fight:  f,
		Log:    log,
		Logger: slog.Default(),
	})
	if err != nil {
		return outputValidationErrors(formatter, []ValidationError{validationError(moduleGraphError(err))})
	}

	result := ValidationResult{Valid: true, Profile: prof.Name}
	for _, inst := range reg.Instances() {
		result.Modules = append(result.Modules, inst.Name)
	}
	for _, n := range prof.Normalizers() {
		result.Normalizers = append(result.Normalizers, n.Name())
	}
	return outputValidateSuccess(formatter, result)
}

func validationError(le *LoadError) ValidationError {
	ve := ValidationError{Code: le.Code, Message: le.Message}
	if d, ok := le.Details.(CompileDetails); ok {
		ve.Field = d.Field
		ve.Line = d.Line
	}
	return ve
}

func orBuiltin(path string) string {
	if path == "" {
		return "<built-in>"
	}
	return path
}

// outputValidateSuccess reports a profile that compiled and resolved.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Profile %q valid\n", result.Profile)
	fmt.Fprintf(w, "  modules:     %s\n", strings.Join(result.Modules, ", "))
	fmt.Fprintf(w, "  normalizers: %s\n", strings.Join(result.Normalizers, ", "))
	return nil
}

// outputValidationErrors reports problems found in the profile. It always
// returns an ExitFailure error.
func outputValidationErrors(formatter *OutputFormatter, errs []ValidationError) error {
	failed := NewExitError(ExitFailure, fmt.Sprintf("profile invalid: %d problem(s)", len(errs)))

	if formatter.Format == "json" {
		enc := json.NewEncoder(formatter.Writer)
		enc.SetIndent("", "  ")
		err := enc.Encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Errors: errs},
			Error:  &CLIError{Code: errs[0].Code, Message: errs[0].Message},
		})
		if err != nil {
			return err
		}
		return failed
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✗ Validation failed\n\n")
	for _, e := range errs {
		loc := ""
		if e.Field != "" {
			loc = " (" + e.Field
			if e.Line > 0 {
				loc += fmt.Sprintf(", line %d", e.Line)
			}
			loc += ")"
		}
		fmt.Fprintf(w, "  %s%s: %s\n", e.Code, loc, e.Message)
	}
	return failed
}
