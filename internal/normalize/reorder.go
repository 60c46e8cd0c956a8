package normalize

import "github.com/adilasif/WoWAnalyzer-sub001/internal/event"

// Reorder moves events matching After that were logged up to BufferMs
// before an event matching Before to immediately after it.
//
// This repairs logs where a triggered effect appears before the cast that
// caused it. Each event is moved at most once. Moved events take the
// anchor's timestamp, or anchor+1 when UpdateTimestamp is set, capped by
// the timestamp of the event that follows the anchor so the array stays
// non-decreasing.
type Reorder struct {
	Label           string
	Prio            int
	Before          event.Matcher
	After           event.Matcher
	BufferMs        int64
	MaxMatches      int // per anchor; 0 means 1
	UpdateTimestamp bool
	AnySource       bool
	AnyTarget       bool
}

func (r *Reorder) Name() string  { return r.Label }
func (r *Reorder) Priority() int { return r.Prio }

func (r *Reorder) Normalize(events []event.Event, env *Env) []event.Event {
	limit := r.MaxMatches
	if limit <= 0 {
		limit = 1
	}
	moved := make(map[event.ID]bool)

	for i := 0; i < len(events); i++ {
		anchor := events[i]
		if !r.Before.Matches(&anchor) {
			continue
		}

		// Scan backward; picks holds descending indices.
		var picks []int
		for j := i - 1; j >= 0 && len(picks) < limit; j-- {
			candidate := &events[j]
			if anchor.Timestamp-candidate.Timestamp > r.BufferMs {
				break
			}
			if moved[candidate.ID] || !r.After.Matches(candidate) {
				continue
			}
			if !sameActors(&anchor, candidate, r.AnySource, r.AnyTarget) {
				continue
			}
			picks = append(picks, j)
		}
		if len(picks) == 0 {
			continue
		}

		picked := make(map[int]bool, len(picks))
		pulled := make([]event.Event, 0, len(picks))
		for k := len(picks) - 1; k >= 0; k-- {
			picked[picks[k]] = true
			pulled = append(pulled, events[picks[k]])
		}

		ts := anchor.Timestamp
		if r.UpdateTimestamp {
			ts++
			if i+1 < len(events) && events[i+1].Timestamp < ts {
				ts = events[i+1].Timestamp
			}
		}
		for k := range pulled {
			if r.UpdateTimestamp || pulled[k].Timestamp < ts {
				pulled[k].Timestamp = ts
			}
			moved[pulled[k].ID] = true
		}

		out := make([]event.Event, 0, len(events))
		for idx := 0; idx <= i; idx++ {
			if !picked[idx] {
				out = append(out, events[idx])
			}
		}
		anchorAt := len(out) - 1
		out = append(out, pulled...)
		out = append(out, events[i+1:]...)
		events = out

		env.Touch(len(pulled))
		i = anchorAt + len(pulled)
	}
	return events
}
