package normalize

import (
	"sort"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/fight"
)

// Condition is an extra predicate a Link applies to each anchor/target pair.
type Condition func(anchor, target *event.Event, f *fight.Fight) bool

// Link attaches a named relation from each Anchor event to nearby Target
// events, without moving anything.
//
// Candidates lie within ForwardBufferMs after or BackwardBufferMs before
// the anchor and are tried nearest first: by timestamp distance, then by
// array distance. MaxLinks caps links per anchor (0 is unlimited). With
// Exclusive set, a target already claimed by an earlier anchor of this rule
// is skipped. ReverseRelation, when set, is recorded from target to anchor.
type Link struct {
	Label            string
	Prio             int
	Relation         string
	ReverseRelation  string
	Anchor           event.Matcher
	Target           event.Matcher
	ForwardBufferMs  int64
	BackwardBufferMs int64
	MaxLinks         int
	AnySource        bool
	AnyTarget        bool
	Exclusive        bool
	Condition        Condition
}

func (l *Link) Name() string  { return l.Label }
func (l *Link) Priority() int { return l.Prio }

type linkCandidate struct {
	index    int
	delta    int64
	distance int
}

func (l *Link) Normalize(events []event.Event, env *Env) []event.Event {
	claimed := make(map[event.ID]bool)

	for i := range events {
		anchor := &events[i]
		if !l.Anchor.Matches(anchor) {
			continue
		}

		var candidates []linkCandidate
		for j := i + 1; j < len(events); j++ {
			delta := events[j].Timestamp - anchor.Timestamp
			if delta > l.ForwardBufferMs {
				break
			}
			if l.accepts(anchor, &events[j], env.Fight) {
				candidates = append(candidates, linkCandidate{index: j, delta: delta, distance: j - i})
			}
		}
		for j := i - 1; j >= 0; j-- {
			delta := anchor.Timestamp - events[j].Timestamp
			if delta > l.BackwardBufferMs {
				break
			}
			if l.accepts(anchor, &events[j], env.Fight) {
				candidates = append(candidates, linkCandidate{index: j, delta: delta, distance: i - j})
			}
		}
		sort.SliceStable(candidates, func(a, b int) bool {
			if candidates[a].delta != candidates[b].delta {
				return candidates[a].delta < candidates[b].delta
			}
			if candidates[a].distance != candidates[b].distance {
				return candidates[a].distance < candidates[b].distance
			}
			return candidates[a].index < candidates[b].index
		})

		linked := 0
		for _, c := range candidates {
			if l.MaxLinks > 0 && linked >= l.MaxLinks {
				break
			}
			target := &events[c.index]
			if l.Exclusive && claimed[target.ID] {
				continue
			}
			if !env.Link(anchor.ID, l.Relation, target.ID) {
				continue
			}
			if l.ReverseRelation != "" {
				env.Relations.Link(target.ID, l.ReverseRelation, anchor.ID)
			}
			claimed[target.ID] = true
			linked++
		}
	}
	return events
}

func (l *Link) accepts(anchor, target *event.Event, f *fight.Fight) bool {
	if target.ID == anchor.ID || !l.Target.Matches(target) {
		return false
	}
	if !sameActors(anchor, target, l.AnySource, l.AnyTarget) {
		return false
	}
	return l.Condition == nil || l.Condition(anchor, target, f)
}
