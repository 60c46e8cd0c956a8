package engine

import (
	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/fight"
)

// Listener handles one dispatched event. The event points into the frozen
// log and must not be modified.
type Listener func(ev *event.Event) error

// Filter selects the events a listener receives.
//
// An empty Type matches every type. A zero Source or Target matches any
// actor. An empty Abilities list matches any ability.
type Filter struct {
	Type      event.Type
	Source    fight.Actor
	Target    fight.Actor
	Abilities []int
}

// On starts a filter for one event type, from and to any actor.
//
//	engine.On(event.TypeCast).By(fight.ActorPlayer).Spell(774, 8936)
func On(t event.Type) Filter {
	return Filter{Type: t, Source: fight.ActorAny, Target: fight.ActorAny}
}

// By restricts the event source.
func (f Filter) By(a fight.Actor) Filter {
	f.Source = a
	return f
}

// To restricts the event target.
func (f Filter) To(a fight.Actor) Filter {
	f.Target = a
	return f
}

// Spell restricts the event ability.
func (f Filter) Spell(ids ...int) Filter {
	f.Abilities = append(append([]int(nil), f.Abilities...), ids...)
	return f
}

// Matches reports whether ev, whose actors classify as source and target,
// passes the filter.
func (f Filter) Matches(ev *event.Event, source, target fight.Actor) bool {
	if f.Type != "" && f.Type != ev.Type {
		return false
	}
	if f.Source != 0 && !f.Source.Has(source) {
		return false
	}
	if f.Target != 0 && !f.Target.Has(target) {
		return false
	}
	if len(f.Abilities) > 0 {
		for _, id := range f.Abilities {
			if id == ev.Ability.GUID {
				return true
			}
		}
		return false
	}
	return true
}

type subscription struct {
	filter   Filter
	listener Listener
}
