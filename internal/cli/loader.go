package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/engine"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/eventlog"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/profile"
)

// Error codes for CLI output.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeProfile      = "E002" // Profile does not compile
	ErrCodeEventLog     = "E003" // Event log does not parse or validate
	ErrCodeModuleGraph  = "E004" // Module graph cannot be resolved
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeMetrics      = "E006" // Metrics could not be written
	ErrCodeWriteFailed  = "E007" // Output write error
	ErrCodeStrictFailed = "E008" // Listener failures with --strict
)

// LoadError is a failure to load one of the command's inputs.
type LoadError struct {
	Code    string
	Message string
	Details any
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// CompileDetails locates a profile error in its source.
type CompileDetails struct {
	Field  string `json:"field"`
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

func (d CompileDetails) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s at %s:%d:%d", d.Field, d.File, d.Line, d.Column)
	}
	return d.Field
}

// loadProfile compiles the profile at path, or the default profile when
// path is empty.
func loadProfile(path string) (*profile.Profile, *LoadError) {
	if path == "" {
		return profile.Default(), nil
	}
	p, err := profile.Load(path)
	if err == nil {
		return p, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("profile not found: %s", path), Err: err}
	}
	le := &LoadError{Code: ErrCodeProfile, Message: err.Error(), Err: err}
	var ce *profile.CompileError
	if errors.As(err, &ce) {
		d := CompileDetails{Field: ce.Field}
		if ce.Pos.IsValid() {
			d.File = ce.Pos.Filename()
			d.Line = ce.Pos.Line()
			d.Column = ce.Pos.Column()
		}
		le.Details = d
	}
	return nil, le
}

// loadEventLog reads and validates the fight log at path.
func loadEventLog(path string) (*eventlog.File, *LoadError) {
	f, err := eventlog.Load(path)
	if err == nil {
		return f, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("event log not found: %s", path), Err: err}
	}
	return nil, &LoadError{Code: ErrCodeEventLog, Message: err.Error(), Err: err}
}

// moduleGraphError describes a resolution failure.
func moduleGraphError(err error) *LoadError {
	le := &LoadError{Code: ErrCodeModuleGraph, Message: err.Error(), Err: err}
	var ce *engine.ConfigurationError
	if errors.As(err, &ce) {
		le.Details = map[string]any{
			"kind":      string(ce.Code),
			"module":    ce.Module,
			"requester": ce.Requester,
			"path":      ce.Path,
		}
	}
	return le
}

// profilePath picks the --profile flag, falling back to FIGHTLOG_PROFILE.
func profilePath(flag string, opts *RootOptions) string {
	if flag != "" {
		return flag
	}
	return opts.Env.Profile
}
