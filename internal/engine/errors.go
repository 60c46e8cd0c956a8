package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
)

// Catalog misuse.
var (
	ErrModuleNameRequired = errors.New("module name is required")
	ErrFactoryRequired    = errors.New("module factory is required")
	ErrDuplicateModule    = errors.New("module already registered")
	ErrDuplicateKey       = errors.New("duplicate dependency key")
)

// ConfigurationError is a fatal module graph problem detected before any
// event is dispatched.
type ConfigurationError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Message is a human-readable description.
	Message string

	// Module is the module the error is about.
	Module string

	// Requester is the module (or "root") that asked for Module.
	Requester string

	// Path is the dependency cycle, first node repeated at the end.
	Path []string

	// Err is the underlying cause for construction failures.
	Err error
}

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeCycle indicates the dependency graph contains a cycle.
	ErrCodeCycle ConfigErrorCode = "CYCLE"

	// ErrCodeUnresolved indicates a requested module is not in the catalog.
	ErrCodeUnresolved ConfigErrorCode = "UNRESOLVED"

	// ErrCodeConfigConflict indicates one module was requested with two
	// different static configs.
	ErrCodeConfigConflict ConfigErrorCode = "CONFIG_CONFLICT"

	// ErrCodeConstruction indicates a module factory failed.
	ErrCodeConstruction ConfigErrorCode = "CONSTRUCTION"
)

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsConfigurationError returns true if err is or wraps a ConfigurationError.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsCycleError returns true if the error is a dependency cycle error.
// Uses errors.As to handle wrapped errors.
func IsCycleError(err error) bool {
	var ce *ConfigurationError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeCycle
	}
	return false
}

func newCycleError(path []string) *ConfigurationError {
	return &ConfigurationError{
		Code:    ErrCodeCycle,
		Message: "dependency cycle: " + strings.Join(path, " → "),
		Module:  path[0],
		Path:    path,
	}
}

func newUnresolvedError(module, requester string) *ConfigurationError {
	return &ConfigurationError{
		Code:      ErrCodeUnresolved,
		Message:   fmt.Sprintf("module %q requested by %s is not registered", module, requester),
		Module:    module,
		Requester: requester,
	}
}

func newConflictError(module, first, second string) *ConfigurationError {
	return &ConfigurationError{
		Code:      ErrCodeConfigConflict,
		Message:   fmt.Sprintf("module %q configured differently by %s and %s", module, first, second),
		Module:    module,
		Requester: second,
	}
}

func newConstructionError(module string, err error) *ConfigurationError {
	return &ConfigurationError{
		Code:    ErrCodeConstruction,
		Message: fmt.Sprintf("construct module %q", module),
		Module:  module,
		Err:     err,
	}
}

// ListenerError is one failed listener invocation. It is recorded on the
// module's Instance; dispatch carries on.
type ListenerError struct {
	Module    string     `json:"module"`
	EventID   event.ID   `json:"eventID"`
	Timestamp int64      `json:"timestamp"`
	Type      event.Type `json:"type"`
	Panic     bool       `json:"panic,omitempty"`
	Err       error      `json:"-"`
}

func (e *ListenerError) Error() string {
	kind := "error"
	if e.Panic {
		kind = "panic"
	}
	return fmt.Sprintf("listener %s in module %q at event %d (%s @%dms): %v",
		kind, e.Module, e.EventID, e.Type, e.Timestamp, e.Err)
}

func (e *ListenerError) Unwrap() error {
	return e.Err
}
