package engine

import (
	"log/slog"
	"reflect"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/fight"
)

// Env is the read-only input every module constructor sees.
type Env struct {
	Fight  *fight.Fight
	Log    *event.Log
	Logger *slog.Logger
}

// Renderer is implemented by modules that contribute to the report.
type Renderer interface {
	Render() any
}

// Output is one module's contribution to the report.
type Output struct {
	Module string `json:"module"`
	Data   any    `json:"data"`
}

// Registry holds the constructed instances of one run.
type Registry struct {
	instances []*Instance
	byName    map[string]*Instance
}

// Get returns the instance of a module.
func (r *Registry) Get(name string) (*Instance, bool) {
	inst, ok := r.byName[name]
	return inst, ok
}

// Instances returns all instances in construction order.
func (r *Registry) Instances() []*Instance {
	return append([]*Instance(nil), r.instances...)
}

// Outputs renders every active module implementing Renderer, in
// construction order.
func (r *Registry) Outputs() []Output {
	var out []Output
	for _, inst := range r.instances {
		if !inst.active {
			continue
		}
		if rd, ok := inst.Module.(Renderer); ok {
			out = append(out, Output{Module: inst.Name, Data: rd.Render()})
		}
	}
	return out
}

// Lookup returns a module of the registry as a T.
func Lookup[T any](r *Registry, name string) (T, bool) {
	var zero T
	inst, ok := r.byName[name]
	if !ok {
		return zero, false
	}
	m, ok := inst.Module.(T)
	return m, ok
}

// color marks DFS progress per module name.
type color uint8

const (
	white color = iota // unvisited
	gray               // on the current path
	black              // planned, with all dependencies
)

type frame struct {
	name string
	next int
}

type configEntry struct {
	value any
	from  string
}

// Resolve plans and constructs roots and their transitive dependencies.
//
// Planning is an iterative depth-first walk with three-color marking; the
// post-order yields a construction order with dependencies first. All
// graph errors (cycle, unknown module, config conflict) are reported
// before any factory runs. A factory error aborts the run with a
// CONSTRUCTION error.
//
// A nil Config on a request means "no preference"; two non-nil configs for
// the same module must be deeply equal.
func Resolve(catalog *Catalog, roots []Dependency, env Env) (*Registry, error) {
	logger := env.Logger
	if logger == nil {
		logger = slog.Default()
	}

	order, configs, err := plan(catalog, roots)
	if err != nil {
		return nil, err
	}

	reg := &Registry{byName: make(map[string]*Instance, len(order))}
	for _, name := range order {
		def, _ := catalog.Get(name)
		inst := &Instance{Name: name, Config: configs[name].value, active: true}

		deps := make(map[string]*Instance, len(def.Deps))
		for _, dep := range def.Deps {
			deps[dep.key()] = reg.byName[dep.Module]
		}
		ctx := &Context{
			Name:   name,
			Fight:  env.Fight,
			Log:    env.Log,
			Config: inst.Config,
			Logger: logger.With("module", name),
			inst:   inst,
			deps:   deps,
		}

		module, err := def.New(ctx)
		ctx.sealed = true
		if err != nil {
			return nil, newConstructionError(name, err)
		}
		inst.Module = module

		reg.instances = append(reg.instances, inst)
		reg.byName[name] = inst
		logger.Debug("module constructed",
			"module", name,
			"active", inst.active,
			"listeners", len(inst.listeners),
		)
	}
	return reg, nil
}

func plan(catalog *Catalog, roots []Dependency) ([]string, map[string]configEntry, error) {
	colors := make(map[string]color)
	configs := make(map[string]configEntry)
	var order []string

	request := func(dep Dependency, requester string) error {
		if _, ok := catalog.Get(dep.Module); !ok {
			return newUnresolvedError(dep.Module, requester)
		}
		if dep.Config == nil {
			if _, ok := configs[dep.Module]; !ok {
				configs[dep.Module] = configEntry{from: requester}
			}
			return nil
		}
		existing, ok := configs[dep.Module]
		if !ok || existing.value == nil {
			configs[dep.Module] = configEntry{value: dep.Config, from: requester}
			return nil
		}
		if !reflect.DeepEqual(existing.value, dep.Config) {
			return newConflictError(dep.Module, existing.from, requester)
		}
		return nil
	}

	for _, root := range roots {
		if err := request(root, "root"); err != nil {
			return nil, nil, err
		}
		if colors[root.Module] != white {
			continue
		}

		colors[root.Module] = gray
		stack := []frame{{name: root.Module}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			def, _ := catalog.Get(top.name)

			if top.next == len(def.Deps) {
				colors[top.name] = black
				order = append(order, top.name)
				stack = stack[:len(stack)-1]
				continue
			}

			dep := def.Deps[top.next]
			top.next++
			if err := request(dep, top.name); err != nil {
				return nil, nil, err
			}
			switch colors[dep.Module] {
			case gray:
				return nil, nil, newCycleError(cyclePath(stack, dep.Module))
			case white:
				colors[dep.Module] = gray
				stack = append(stack, frame{name: dep.Module})
			}
		}
	}
	return order, configs, nil
}

// cyclePath extracts the cycle closed by an edge back to name, e.g.
// [A, B, A].
func cyclePath(stack []frame, name string) []string {
	var path []string
	for i, f := range stack {
		if f.name == name {
			for _, g := range stack[i:] {
				path = append(path, g.name)
			}
			break
		}
	}
	return append(path, name)
}
