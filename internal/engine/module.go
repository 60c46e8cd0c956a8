package engine

import "fmt"

// Factory constructs a module. It receives the module's Context, through
// which it reads fight data and config, fetches dependencies and registers
// listeners. The returned value is the module itself.
type Factory func(c *Context) (any, error)

// Definition describes a module type: its name, what it depends on and
// how to build it. The name is the module's identity within a run: two
// requests for the same name yield one shared instance.
type Definition struct {
	Name string
	Deps []Dependency
	New  Factory
}

// Dependency is a request for a module under a local key. Config, when
// non-nil, is handed to the module's factory as Context.Config.
type Dependency struct {
	Key    string
	Module string
	Config any
}

// Dep requests a module under its own name with no static config.
func Dep(module string) Dependency {
	return Dependency{Key: module, Module: module}
}

// DepWith requests a module under key with a static config.
func DepWith(key, module string, config any) Dependency {
	return Dependency{Key: key, Module: module, Config: config}
}

// Roots turns module names into root dependencies for Resolve.
func Roots(names ...string) []Dependency {
	deps := make([]Dependency, len(names))
	for i, name := range names {
		deps[i] = Dep(name)
	}
	return deps
}

func (d Dependency) key() string {
	if d.Key == "" {
		return d.Module
	}
	return d.Key
}

// Catalog holds the module definitions available to a run.
type Catalog struct {
	defs  map[string]Definition
	order []string
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{defs: make(map[string]Definition)}
}

// Register adds definitions in order. It stops at the first invalid one.
func (c *Catalog) Register(defs ...Definition) error {
	for _, def := range defs {
		if err := c.register(def); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) register(def Definition) error {
	if def.Name == "" {
		return ErrModuleNameRequired
	}
	if def.New == nil {
		return fmt.Errorf("%w: %s", ErrFactoryRequired, def.Name)
	}
	if _, exists := c.defs[def.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateModule, def.Name)
	}
	keys := make(map[string]bool, len(def.Deps))
	for _, dep := range def.Deps {
		if dep.Module == "" {
			return fmt.Errorf("%s: %w", def.Name, ErrModuleNameRequired)
		}
		if keys[dep.key()] {
			return fmt.Errorf("%s: %w: %s", def.Name, ErrDuplicateKey, dep.key())
		}
		keys[dep.key()] = true
	}
	c.defs[def.Name] = def
	c.order = append(c.order, def.Name)
	return nil
}

// Get returns the definition registered under name.
func (c *Catalog) Get(name string) (Definition, bool) {
	def, ok := c.defs[name]
	return def, ok
}

// Names returns registered module names in registration order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}
