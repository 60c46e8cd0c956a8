// Package event defines the combat log event model shared by every other
// package.
//
// This package contains type definitions, matchers and the read-only Log.
// It imports nothing internal, which keeps it the foundational layer with
// no circular dependencies.
//
// Key design constraints:
//   - Events are identified by a stable monotonic ID assigned during
//     normalization, never by pointer identity
//   - Relation tags are stored in an adjacency map keyed by (ID, relation)
//   - Once frozen into a Log, events are read-only
package event
