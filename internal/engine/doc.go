// Package engine wires analysis modules together and replays a normalized
// fight log through them.
//
// A run has three phases, strictly in order:
//
//  1. Resolve: the requested root modules and their transitive
//     dependencies are planned with an iterative depth-first walk. Cycles,
//     unknown modules and conflicting static configs are reported as a
//     *ConfigurationError before anything is constructed.
//  2. Construct: modules are built in post-order, dependencies before
//     dependents, each exactly once. Constructors receive a *Context through
//     which they read fight data, fetch dependencies, register listeners
//     and optionally deactivate themselves.
//  3. Dispatch: one pass over the log in timestamp order. Each event is
//     offered to active modules in construction order, and to each
//     module's listeners in registration order.
//
// CRITICAL: the whole run is single-threaded and deterministic. Identical
// input, catalog and fight data produce identical module state.
//
// ERROR HANDLING: configuration errors are fatal and surface before the
// first event. A listener that returns an error or panics is recorded on
// its module and dispatch continues with the next listener.
package engine
