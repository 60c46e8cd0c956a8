package normalize

import "github.com/adilasif/WoWAnalyzer-sub001/internal/event"

// FreeCast marks casts of Abilities as Free while the Proc buff is up on the
// caster. With ConsumeOnCast the first free cast ends the proc even if its
// removebuff is logged later.
type FreeCast struct {
	Label         string
	Prio          int
	Abilities     []int
	Proc          int
	ConsumeOnCast bool
}

func (f *FreeCast) Name() string  { return f.Label }
func (f *FreeCast) Priority() int { return f.Prio }

func (f *FreeCast) Normalize(events []event.Event, env *Env) []event.Event {
	up := make(map[int]bool)
	for i := range events {
		ev := &events[i]
		switch {
		case ev.Ability.GUID == f.Proc && (ev.Type == event.TypeApplyBuff ||
			ev.Type == event.TypeRefreshBuff || ev.Type == event.TypeApplyBuffStack):
			up[ev.TargetID] = true
		case ev.Ability.GUID == f.Proc && ev.Type == event.TypeRemoveBuff:
			up[ev.TargetID] = false
		case ev.Type == event.TypeCast && up[ev.SourceID] && containsInt(f.Abilities, ev.Ability.GUID):
			if !ev.Free {
				ev.Free = true
				env.Touch(1)
			}
			if f.ConsumeOnCast {
				up[ev.SourceID] = false
			}
		}
	}
	return events
}

// PrepullBuffs injects a synthetic apply at fight start for every aura
// whose first appearance is a refresh, removal or stack change, meaning it
// was applied before the log began. With IncludeTicks, a periodic tick of
// a listed ability also counts as a first appearance.
//
// Injected events are prepended with Prepull and Synthetic set, at the
// fight start or the first event's timestamp, whichever is earlier.
type PrepullBuffs struct {
	// Abilities restricts injection to these auras; empty means all.
	Abilities    []int
	IncludeTicks bool
}

func (p *PrepullBuffs) Name() string  { return "prepull-buffs" }
func (p *PrepullBuffs) Priority() int { return PriorityPrepull }

type auraKey struct {
	target  int
	ability int
}

func (p *PrepullBuffs) Normalize(events []event.Event, env *Env) []event.Event {
	if len(events) == 0 {
		return events
	}
	at := env.Fight.Start
	if events[0].Timestamp < at {
		at = events[0].Timestamp
	}

	seen := make(map[auraKey]bool)
	var injected []event.Event
	for i := range events {
		ev := &events[i]
		if len(p.Abilities) > 0 && !containsInt(p.Abilities, ev.Ability.GUID) {
			continue
		}
		key := auraKey{target: ev.TargetID, ability: ev.Ability.GUID}
		apply, orphan := prepullApply(ev, p.IncludeTicks)
		if apply == "" || seen[key] {
			continue
		}
		seen[key] = true
		if !orphan {
			continue
		}
		injected = append(injected, event.Event{
			ID:        env.NewID(),
			Timestamp: at,
			Type:      apply,
			SourceID:  ev.SourceID,
			TargetID:  ev.TargetID,
			Ability:   ev.Ability,
			Prepull:   true,
			Synthetic: true,
		})
	}
	if len(injected) == 0 {
		return events
	}
	env.Touch(len(injected))
	return append(injected, events...)
}

// prepullApply returns the apply type matching an aura event and whether
// seeing this event first means the aura predates the log.
func prepullApply(ev *event.Event, ticks bool) (event.Type, bool) {
	switch ev.Type {
	case event.TypeApplyBuff:
		return event.TypeApplyBuff, false
	case event.TypeApplyDebuff:
		return event.TypeApplyDebuff, false
	case event.TypeRefreshBuff, event.TypeRemoveBuff,
		event.TypeApplyBuffStack, event.TypeRemoveBuffStack:
		return event.TypeApplyBuff, true
	case event.TypeRefreshDebuff, event.TypeRemoveDebuff:
		return event.TypeApplyDebuff, true
	case event.TypeHeal:
		if ticks && ev.Tick {
			return event.TypeApplyBuff, true
		}
	case event.TypeDamage:
		if ticks && ev.Tick {
			return event.TypeApplyDebuff, true
		}
	}
	return "", false
}

// FightEnd appends a synthetic fightend event unless the log already has
// one. It runs last so every listener sees the end of the fight exactly
// once.
type FightEnd struct{}

func (FightEnd) Name() string  { return "fight-end" }
func (FightEnd) Priority() int { return PriorityFightEnd }

func (FightEnd) Normalize(events []event.Event, env *Env) []event.Event {
	for i := range events {
		if events[i].Type == event.TypeFightEnd {
			return events
		}
	}
	at := env.Fight.End
	if n := len(events); n > 0 && events[n-1].Timestamp > at {
		at = events[n-1].Timestamp
	}
	env.Touch(1)
	return append(events, event.Event{
		ID:        env.NewID(),
		Timestamp: at,
		Type:      event.TypeFightEnd,
		SourceID:  env.Fight.Player.ID,
		TargetID:  env.Fight.Player.ID,
		Synthetic: true,
	})
}
