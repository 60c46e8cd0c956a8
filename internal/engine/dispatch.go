package engine

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/fight"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/metrics"
)

// DispatchStats summarizes one dispatch pass.
type DispatchStats struct {
	Events     int `json:"events"`
	Deliveries int `json:"deliveries"`
	Failures   int `json:"failures"`
}

// Dispatch replays log through the active instances of reg.
//
// Events are delivered in timestamp order, ties broken by array position.
// For each event, active instances are visited in construction order and
// their matching listeners called in registration order. Listener errors
// and panics are recorded on the instance and delivery continues.
func Dispatch(reg *Registry, log *event.Log, f *fight.Fight, logger *slog.Logger) DispatchStats {
	if logger == nil {
		logger = slog.Default()
	}

	var active []*Instance
	for _, inst := range reg.instances {
		if inst.active && len(inst.listeners) > 0 {
			active = append(active, inst)
		}
	}

	calls := make([]int, len(active))
	var stats DispatchStats
	for _, i := range dispatchOrder(log) {
		ev := log.At(i)
		source := f.Classify(ev.SourceID)
		target := f.Classify(ev.TargetID)
		stats.Events++

		for n, inst := range active {
			for _, sub := range inst.listeners {
				if !sub.filter.Matches(ev, source, target) {
					continue
				}
				stats.Deliveries++
				calls[n]++
				if err := deliver(inst, sub.listener, ev); err != nil {
					stats.Failures++
					inst.record(err)
					metrics.IncListenerError(inst.Name)
					logger.Warn("listener failed",
						"module", inst.Name,
						"event_id", ev.ID,
						"event_type", ev.Type,
						"timestamp", ev.Timestamp,
						"error", err.Err,
						"panic", err.Panic,
					)
				}
			}
		}
	}

	metrics.AddEventsDispatched(stats.Events)
	for n, inst := range active {
		metrics.AddListenerCalls(inst.Name, calls[n])
	}
	logger.Debug("dispatch complete",
		"events", stats.Events,
		"deliveries", stats.Deliveries,
		"failures", stats.Failures,
	)
	return stats
}

// deliver calls one listener, converting errors and panics.
func deliver(inst *Instance, l Listener, ev *event.Event) (lerr *ListenerError) {
	defer func() {
		if r := recover(); r != nil {
			lerr = newListenerError(inst.Name, ev, fmt.Errorf("%v", r))
			lerr.Panic = true
		}
	}()
	if err := l(ev); err != nil {
		return newListenerError(inst.Name, ev, err)
	}
	return nil
}

func newListenerError(module string, ev *event.Event, err error) *ListenerError {
	return &ListenerError{
		Module:    module,
		EventID:   ev.ID,
		Timestamp: ev.Timestamp,
		Type:      ev.Type,
		Err:       err,
	}
}

// dispatchOrder returns log positions in timestamp order. Logs from the
// normalizer pipeline are already ordered; the stable sort only matters
// for hand-built logs.
func dispatchOrder(log *event.Log) []int {
	order := make([]int, log.Len())
	sorted := true
	for i := range order {
		order[i] = i
		if i > 0 && log.At(i).Timestamp < log.At(i-1).Timestamp {
			sorted = false
		}
	}
	if !sorted {
		sort.SliceStable(order, func(a, b int) bool {
			return log.At(order[a]).Timestamp < log.At(order[b]).Timestamp
		})
	}
	return order
}
