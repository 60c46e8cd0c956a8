// Package buffs tracks which auras are up on the selected player.
//
// Other trackers depend on it to answer "was buff X up at this event",
// e.g. resource cost modifiers.
package buffs

import (
	"sort"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/engine"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/fight"
)

// Name is the module name the tracker registers under.
const Name = "buffs"

type aura struct {
	name    string
	since   int64
	up      bool
	stacks  int
	uptime  int64
	applies int
}

// Tracker follows aura state on the selected player.
type Tracker struct {
	fight *fight.Fight
	auras map[int]*aura
	ended bool
}

// Definition returns the catalog entry for the tracker.
func Definition() engine.Definition {
	return engine.Definition{
		Name: Name,
		New: func(c *engine.Context) (any, error) {
			return New(c), nil
		},
	}
}

// New creates a tracker and registers its listeners on c.
func New(c *engine.Context) *Tracker {
	t := &Tracker{fight: c.Fight, auras: make(map[int]*aura)}
	c.On(engine.Filter{Target: fight.ActorPlayer}, t.onAura)
	c.On(engine.On(event.TypeFightEnd), t.onFightEnd)
	return t
}

func (t *Tracker) get(ev *event.Event) *aura {
	a, ok := t.auras[ev.Ability.GUID]
	if !ok {
		a = &aura{}
		t.auras[ev.Ability.GUID] = a
	}
	if a.name == "" {
		a.name = ev.Ability.Name
	}
	return a
}

func (t *Tracker) onAura(ev *event.Event) error {
	switch ev.Type {
	case event.TypeApplyBuff, event.TypeApplyDebuff:
		a := t.get(ev)
		if !a.up {
			a.up = true
			a.since = ev.Timestamp
			a.applies++
		}
		a.stacks = 1
	case event.TypeApplyBuffStack, event.TypeRemoveBuffStack:
		a := t.get(ev)
		if !a.up {
			a.up = true
			a.since = ev.Timestamp
			a.applies++
		}
		a.stacks = ev.Stack
	case event.TypeRefreshBuff, event.TypeRefreshDebuff:
		a := t.get(ev)
		if !a.up {
			a.up = true
			a.since = ev.Timestamp
			a.applies++
			a.stacks = 1
		}
	case event.TypeRemoveBuff, event.TypeRemoveDebuff:
		a := t.get(ev)
		if a.up {
			a.uptime += ev.Timestamp - a.since
		}
		a.up = false
		a.stacks = 0
	}
	return nil
}

func (t *Tracker) onFightEnd(ev *event.Event) error {
	for _, a := range t.auras {
		if a.up {
			a.uptime += ev.Timestamp - a.since
			a.since = ev.Timestamp
		}
	}
	t.ended = true
	return nil
}

// Has reports whether the aura is currently up.
func (t *Tracker) Has(ability int) bool {
	a, ok := t.auras[ability]
	return ok && a.up && !t.ended
}

// Stacks returns the current stack count, 0 if the aura is down.
func (t *Tracker) Stacks(ability int) int {
	if !t.Has(ability) {
		return 0
	}
	return t.auras[ability].stacks
}

// Uptime returns the milliseconds the aura was up. Auras still up are
// counted to the fight end.
func (t *Tracker) Uptime(ability int) int64 {
	a, ok := t.auras[ability]
	if !ok {
		return 0
	}
	total := a.uptime
	if a.up && !t.ended && t.fight.End > a.since {
		total += t.fight.End - a.since
	}
	return total
}

// Uptime is one aura's row in the rendered output.
type Uptime struct {
	Ability  int     `json:"ability"`
	Name     string  `json:"name,omitempty"`
	Applies  int     `json:"applies"`
	UptimeMs int64   `json:"uptimeMs"`
	Percent  float64 `json:"percent"`
}

// Render lists aura uptimes ordered by ability ID.
func (t *Tracker) Render() any {
	ids := make([]int, 0, len(t.auras))
	for id := range t.auras {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	rows := make([]Uptime, 0, len(ids))
	for _, id := range ids {
		up := t.Uptime(id)
		row := Uptime{Ability: id, Name: t.auras[id].name, Applies: t.auras[id].applies, UptimeMs: up}
		if d := t.fight.Duration(); d > 0 {
			row.Percent = float64(up) / float64(d)
		}
		rows = append(rows, row)
	}
	return rows
}
