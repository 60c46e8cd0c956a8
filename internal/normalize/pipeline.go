package normalize

import (
	"log/slog"
	"sort"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/fight"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/metrics"
)

// StepStats reports what one normalizer did.
type StepStats struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	Changes  int    `json:"changes"`
	// Reordered is set when the normalizer broke timestamp order and the
	// pipeline had to re-sort its output.
	Reordered bool `json:"reordered,omitempty"`
}

// Stats summarizes one pipeline run.
type Stats struct {
	Input     int         `json:"input"`
	Output    int         `json:"output"`
	Relations int         `json:"relations"`
	Anomalies int         `json:"anomalies"`
	Steps     []StepStats `json:"steps"`
}

// Pipeline composes normalizers by ascending priority.
//
// INVARIANT: the array is non-decreasing in timestamp after every step. A
// normalizer that violates this has its output stably re-sorted and the
// step is counted as an anomaly rather than failing the run.
type Pipeline struct {
	normalizers []Normalizer
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger used for step diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// NewPipeline creates a pipeline from normalizers. Normalizers with equal
// priority run in the order given.
func NewPipeline(normalizers []Normalizer, opts ...Option) *Pipeline {
	p := &Pipeline{logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	p.normalizers = append(p.normalizers, normalizers...)
	sort.SliceStable(p.normalizers, func(i, j int) bool {
		return p.normalizers[i].Priority() < p.normalizers[j].Priority()
	})
	return p
}

// Normalizers returns the normalizers in execution order.
func (p *Pipeline) Normalizers() []Normalizer {
	return append([]Normalizer(nil), p.normalizers...)
}

// Run normalizes a copy of events and freezes the result into a Log.
//
// Input events are assigned IDs 1..n by array position, overwriting any
// IDs they carried; synthetic events continue the sequence.
func (p *Pipeline) Run(f *fight.Fight, input []event.Event) (*event.Log, Stats) {
	events := make([]event.Event, len(input))
	copy(events, input)
	for i := range events {
		events[i].ID = event.ID(i + 1)
	}

	stats := Stats{Input: len(input)}
	env := NewEnv(f, event.ID(len(events)))

	if repairOrder(events) {
		stats.Anomalies++
		metrics.IncNormalizerAnomaly("input")
		p.logger.Warn("input events out of order, re-sorted by timestamp",
			"fight", f.ID,
		)
	}

	for _, n := range p.normalizers {
		env.changes = 0
		events = n.Normalize(events, env)

		step := StepStats{Name: n.Name(), Priority: n.Priority(), Changes: env.changes}
		if repairOrder(events) {
			step.Reordered = true
			stats.Anomalies++
			metrics.IncNormalizerAnomaly(n.Name())
			p.logger.Warn("normalizer broke timestamp order, re-sorted output",
				"normalizer", n.Name(),
				"priority", n.Priority(),
			)
		}
		metrics.AddNormalizerChanges(n.Name(), step.Changes)
		stats.Steps = append(stats.Steps, step)

		p.logger.Debug("normalizer applied",
			"normalizer", n.Name(),
			"priority", n.Priority(),
			"changes", step.Changes,
			"events", len(events),
		)
	}

	stats.Output = len(events)
	stats.Relations = env.Relations.Len()
	return event.NewLog(events, env.Relations), stats
}

// repairOrder stably sorts events by timestamp if they are out of order.
// Returns true if a sort was needed.
func repairOrder(events []event.Event) bool {
	if isOrdered(events) {
		return false
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	})
	return true
}

func isOrdered(events []event.Event) bool {
	for i := 1; i < len(events); i++ {
		if events[i].Timestamp < events[i-1].Timestamp {
			return false
		}
	}
	return true
}
