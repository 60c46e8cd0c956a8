package engine

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/fight"
)

// MaxRecordedErrors caps the listener errors kept per instance. Failures
// beyond the cap are still counted.
const MaxRecordedErrors = 20

// Instance is one constructed module.
//
// INVARIANT: active is written at most once, during construction, and is
// read-only once the factory returns.
type Instance struct {
	Name   string
	Module any
	Config any

	active    bool
	listeners []subscription
	errs      []*ListenerError
	failures  int
}

// Active reports whether the module participates in dispatch.
func (i *Instance) Active() bool {
	return i.active
}

// Listeners returns the number of registered listeners.
func (i *Instance) Listeners() int {
	return len(i.listeners)
}

// Errors returns the recorded listener errors, oldest first.
func (i *Instance) Errors() []*ListenerError {
	return append([]*ListenerError(nil), i.errs...)
}

// Failures returns the total number of listener failures, including those
// past MaxRecordedErrors.
func (i *Instance) Failures() int {
	return i.failures
}

func (i *Instance) record(err *ListenerError) {
	i.failures++
	if len(i.errs) < MaxRecordedErrors {
		i.errs = append(i.errs, err)
	}
}

// Context is the capability set handed to a module factory.
//
// Listeners can only be registered, and the module can only deactivate
// itself, while the factory is running. Calling On or Deactivate after
// construction panics.
type Context struct {
	Name   string
	Fight  *fight.Fight
	Log    *event.Log
	Config any
	Logger *slog.Logger

	inst   *Instance
	deps   map[string]*Instance
	sealed bool
}

// On registers a listener for events matching f.
func (c *Context) On(f Filter, l Listener) {
	if c.sealed {
		panic(fmt.Sprintf("engine: On called on %q after construction", c.Name))
	}
	c.inst.listeners = append(c.inst.listeners, subscription{filter: f, listener: l})
}

// Deactivate excludes the module from dispatch for this run, e.g. when
// the selected combatant lacks a required talent.
func (c *Context) Deactivate() {
	if c.sealed {
		panic(fmt.Sprintf("engine: Deactivate called on %q after construction", c.Name))
	}
	c.inst.active = false
}

// Dep returns the dependency registered under key.
func (c *Context) Dep(key string) (any, bool) {
	inst, ok := c.deps[key]
	if !ok {
		return nil, false
	}
	return inst.Module, true
}

// Active reports whether the dependency under key is active. Getters on an
// inactive dependency still work, but its listeners never ran.
func (c *Context) Active(key string) bool {
	inst, ok := c.deps[key]
	return ok && inst.active
}

// Need returns the dependency under key as a T.
func Need[T any](c *Context, key string) (T, error) {
	var zero T
	inst, ok := c.deps[key]
	if !ok {
		return zero, fmt.Errorf("module %q has no dependency %q", c.Name, key)
	}
	m, ok := inst.Module.(T)
	if !ok {
		return zero, fmt.Errorf("module %q: dependency %q is %T, want %s", c.Name, key, inst.Module, reflect.TypeFor[T]())
	}
	return m, nil
}
