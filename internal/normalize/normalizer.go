// Package normalize implements the pre-dispatch event normalization
// pipeline.
//
// Combat logs are not always in causal order: auto-triggered events can be
// logged a few milliseconds before the cast that caused them, buffs that
// were applied before the pull show up only as removals, and analyzers need
// to know which heal came from which cast. Normalizers repair all of this
// over the full event array before any module sees it.
//
// Normalizers run in ascending Priority order, each one's output feeding
// the next. They must be pure functions of (event array, fight): no wall
// clock, no randomness, so identical input always yields identical output.
// A rule that finds no match is a no-op, never an error.
package normalize

import (
	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/fight"
)

// Default priorities of the built-in normalizer shapes. Lower runs first.
const (
	PriorityPrepull  = -100
	PriorityReorder  = 0
	PriorityFixup    = 50
	PriorityLink     = 100
	PriorityFightEnd = 1 << 20
)

// Normalizer is one transform over the full event array.
//
// Normalize may reorder, insert or modify events in the slice it receives
// and returns the resulting slice. Inserted events must take their ID from
// Env.NewID. The returned array must be non-decreasing in timestamp.
type Normalizer interface {
	Name() string
	Priority() int
	Normalize(events []event.Event, env *Env) []event.Event
}

// Env carries the read-only fight data and the relation sink of one
// pipeline run.
type Env struct {
	Fight     *fight.Fight
	Relations *event.Relations

	ids     *event.Sequence
	changes int
}

// NewEnv creates an Env whose synthetic IDs continue after lastID.
func NewEnv(f *fight.Fight, lastID event.ID) *Env {
	return &Env{
		Fight:     f,
		Relations: event.NewRelations(),
		ids:       event.NewSequenceAt(lastID),
	}
}

// NewID allocates an ID for a synthetic event.
func (e *Env) NewID() event.ID {
	return e.ids.Next()
}

// Touch records that a normalizer changed n events.
func (e *Env) Touch(n int) {
	e.changes += n
}

// Link records a relation tag and counts it as a change.
func (e *Env) Link(from event.ID, relation string, to event.ID) bool {
	if !e.Relations.Link(from, relation, to) {
		return false
	}
	e.changes++
	return true
}

// Func adapts a plain function into a Normalizer. Used for one-off
// structural fixups that need nothing but a priority and a transform.
type Func struct {
	Label string
	Prio  int
	Fn    func(events []event.Event, env *Env) []event.Event
}

func (f Func) Name() string  { return f.Label }
func (f Func) Priority() int { return f.Prio }

func (f Func) Normalize(events []event.Event, env *Env) []event.Event {
	return f.Fn(events, env)
}

// sameActors applies the AnySource/AnyTarget options shared by rule shapes.
func sameActors(a, b *event.Event, anySource, anyTarget bool) bool {
	if !anySource && a.SourceID != b.SourceID {
		return false
	}
	if !anyTarget && a.TargetID != b.TargetID {
		return false
	}
	return true
}

func containsInt(ids []int, id int) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
