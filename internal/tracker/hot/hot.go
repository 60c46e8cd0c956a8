// Package hot implements generic accounting for periodic effects (heals
// or damage over time) applied independently to many targets.
//
// Each (target, spell) pair goes Inactive → Active on apply, stays Active
// across pandemic refreshes and extensions, and is Closed by a remove or
// the end of the fight. Closed trackers are kept for reporting. Periodic
// ticks are credited to whichever attribution is scheduled at the tick's
// timestamp, which lets an extension hand the tail of an effect to the
// talent that extended it.
package hot

import (
	"math"
	"sort"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/engine"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/fight"
)

// Attribution is one credit-holder of a tracked effect.
type Attribution struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
	Ticks  int    `json:"ticks"`
}

// StackChange records the stack count from Timestamp on.
type StackChange struct {
	Timestamp int64 `json:"timestamp"`
	Stacks    int   `json:"stacks"`
}

type handoff struct {
	from int64
	to   *Attribution
}

// Tracker is the record of one application of an effect on one target.
type Tracker struct {
	Target int
	Spell  int
	Start  int64
	// End is the scheduled expiry while the tracker is open.
	End int64
	// Closed is set once the effect was removed or the fight ended, at
	// ClosedAt.
	Closed   bool
	ClosedAt int64

	Attributions []*Attribution
	StackHistory []StackChange

	schedule []handoff
}

func (t *Tracker) attribution(name string) *Attribution {
	for _, a := range t.Attributions {
		if a.Name == name {
			return a
		}
	}
	a := &Attribution{Name: name}
	t.Attributions = append(t.Attributions, a)
	return a
}

// Attribute credits ticks from at onward to name, superseding any
// hand-off scheduled later than at.
func (t *Tracker) Attribute(name string, at int64) {
	kept := t.schedule[:0]
	for _, h := range t.schedule {
		if h.from <= at {
			kept = append(kept, h)
		}
	}
	t.schedule = append(kept, handoff{from: at, to: t.attribution(name)})
}

// Extend pushes End back by amount and credits ticks after the old End to
// name.
func (t *Tracker) Extend(amount int64, name string) {
	old := t.End
	t.End += amount
	t.schedule = append(t.schedule, handoff{from: old, to: t.attribution(name)})
}

// AttributionAt returns the attribution credited at ts: the latest
// hand-off starting at or before ts.
func (t *Tracker) AttributionAt(ts int64) *Attribution {
	var best *handoff
	for i := range t.schedule {
		h := &t.schedule[i]
		if h.from <= ts && (best == nil || h.from >= best.from) {
			best = h
		}
	}
	if best == nil {
		return t.schedule[0].to
	}
	return best.to
}

// Duration returns how long the tracker was open, up to until if still
// open.
func (t *Tracker) Duration(until int64) int64 {
	end := until
	if t.Closed {
		end = t.ClosedAt
	}
	if end < t.Start {
		return 0
	}
	return end - t.Start
}

func (t *Tracker) setStacks(ts int64, stacks int) {
	if n := len(t.StackHistory); n > 0 && t.StackHistory[n-1].Stacks == stacks {
		return
	}
	t.StackHistory = append(t.StackHistory, StackChange{Timestamp: ts, Stacks: stacks})
}

// stackTime integrates stacks over the tracker's lifetime.
func (t *Tracker) stackTime(until int64) float64 {
	end := until
	if t.Closed {
		end = t.ClosedAt
	}
	var total float64
	for i, sc := range t.StackHistory {
		next := end
		if i+1 < len(t.StackHistory) {
			next = t.StackHistory[i+1].Timestamp
		}
		if next > sc.Timestamp {
			total += float64(sc.Stacks) * float64(next-sc.Timestamp)
		}
	}
	return total
}

type key struct {
	target int
	spell  int
}

// Module tracks all effects of one Config.
type Module struct {
	cfg   Config
	hooks Hooks
	fight *fight.Fight
	log   *event.Log

	effects  map[int]Effect
	tickOf   map[int]int
	open     map[key]*Tracker
	closed   map[key]*Tracker // most recently closed, per key
	trackers []*Tracker
}

// Definition returns the catalog entry for cfg.
func Definition(cfg Config) engine.Definition {
	return engine.Definition{
		Name: cfg.Name,
		New: func(c *engine.Context) (any, error) {
			return New(c, cfg, DefaultHooks{})
		},
	}
}

// New creates the module and registers its listeners on c.
func New(c *engine.Context, cfg Config, hooks Hooks) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if hooks == nil {
		hooks = DefaultHooks{}
	}
	m := &Module{
		cfg:     cfg,
		hooks:   hooks,
		fight:   c.Fight,
		log:     c.Log,
		effects: make(map[int]Effect, len(cfg.Effects)),
		tickOf:  make(map[int]int),
		open:    make(map[key]*Tracker),
		closed:  make(map[key]*Tracker),
	}
	var spells, ticks []int
	for _, e := range cfg.Effects {
		m.effects[e.Spell] = e
		spells = append(spells, e.Spell)
		for _, tick := range e.tickAbilities() {
			m.tickOf[tick] = e.Spell
			ticks = append(ticks, tick)
		}
	}

	mine := fight.ActorPlayer | fight.ActorPet
	for _, t := range []event.Type{event.TypeApplyBuff, event.TypeApplyDebuff} {
		c.On(engine.On(t).By(mine).Spell(spells...), m.onApply)
	}
	for _, t := range []event.Type{event.TypeRefreshBuff, event.TypeRefreshDebuff} {
		c.On(engine.On(t).By(mine).Spell(spells...), m.onRefresh)
	}
	for _, t := range []event.Type{event.TypeRemoveBuff, event.TypeRemoveDebuff} {
		c.On(engine.On(t).By(mine).Spell(spells...), m.onRemove)
	}
	for _, t := range []event.Type{event.TypeApplyBuffStack, event.TypeRemoveBuffStack} {
		c.On(engine.On(t).By(mine).Spell(spells...), m.onStack)
	}
	for _, t := range []event.Type{event.TypeHeal, event.TypeDamage} {
		c.On(engine.On(t).By(mine).Spell(ticks...), m.onTick)
	}
	for i := range cfg.Extensions {
		x := cfg.Extensions[i]
		c.On(engine.Filter{Source: fight.ActorPlayer}, func(ev *event.Event) error {
			if x.Trigger.Matches(ev) {
				m.extend(x, ev)
			}
			return nil
		})
	}
	c.On(engine.On(event.TypeFightEnd), m.onFightEnd)
	return m, nil
}

// startAttribution picks the credit-holder of an apply or refresh.
func (m *Module) startAttribution(e Effect, ev *event.Event) string {
	if m.log != nil {
		for _, s := range e.Sources {
			if m.log.HasLink(ev.ID, s.Relation) {
				return s.Attribution
			}
		}
	}
	return e.defaultAttribution()
}

func (m *Module) begin(k key, start int64, attribution string) *Tracker {
	e := m.effects[k.spell]
	t := &Tracker{
		Target: k.target,
		Spell:  k.spell,
		Start:  start,
		End:    start + m.hooks.BaseDuration(e, m.fight),
	}
	t.Attribute(attribution, start)
	t.setStacks(start, 1)
	m.open[k] = t
	m.trackers = append(m.trackers, t)
	return t
}

// orphan opens a tracker for an effect whose application was not seen.
// It is anchored where the same effect on the same target last closed, or
// at the fight start if it never ran.
func (m *Module) orphan(k key) *Tracker {
	start := m.fight.Start
	if prev, ok := m.closed[k]; ok {
		start = prev.ClosedAt
	}
	return m.begin(k, start, UnknownAttribution)
}

// justClosed returns the tracker for k if it closed no more than
// LateEventMs before ts.
func (m *Module) justClosed(k key, ts int64) (*Tracker, bool) {
	prev, ok := m.closed[k]
	if !ok || ts-prev.ClosedAt > LateEventMs {
		return nil, false
	}
	return prev, true
}

func (m *Module) onApply(ev *event.Event) error {
	k := key{target: ev.TargetID, spell: ev.Ability.GUID}
	if _, ok := m.open[k]; ok {
		return m.onRefresh(ev)
	}
	m.begin(k, ev.Timestamp, m.startAttribution(m.effects[k.spell], ev))
	return nil
}

func (m *Module) onRefresh(ev *event.Event) error {
	k := key{target: ev.TargetID, spell: ev.Ability.GUID}
	t, ok := m.open[k]
	if !ok {
		t = m.orphan(k)
	}
	e := m.effects[k.spell]
	t.End = RefreshEnd(ev.Timestamp, t.End, m.hooks.BaseDuration(e, m.fight), m.hooks.PandemicCap(e))
	t.Attribute(m.startAttribution(e, ev), ev.Timestamp)
	return nil
}

func (m *Module) onRemove(ev *event.Event) error {
	k := key{target: ev.TargetID, spell: ev.Ability.GUID}
	t, ok := m.open[k]
	if !ok {
		if _, dup := m.justClosed(k, ev.Timestamp); dup {
			return nil
		}
		t = m.orphan(k)
	}
	m.close(k, t, ev.Timestamp)
	return nil
}

func (m *Module) onStack(ev *event.Event) error {
	k := key{target: ev.TargetID, spell: ev.Ability.GUID}
	t, ok := m.open[k]
	if !ok {
		t = m.orphan(k)
	}
	t.setStacks(ev.Timestamp, ev.Stack)
	return nil
}

func (m *Module) onTick(ev *event.Event) error {
	if !ev.Tick {
		return nil
	}
	k := key{target: ev.TargetID, spell: m.tickOf[ev.Ability.GUID]}
	t, ok := m.open[k]
	if !ok {
		t, ok = m.justClosed(k, ev.Timestamp)
	}
	if !ok {
		t = m.orphan(k)
	}
	a := t.AttributionAt(ev.Timestamp)
	a.Amount += ev.Effective()
	a.Ticks++
	return nil
}

func (m *Module) extend(x Extension, ev *event.Event) {
	for _, spell := range x.Effects {
		for k, t := range m.open {
			if k.spell != spell || (!x.AllTargets && k.target != ev.TargetID) {
				continue
			}
			if x.Amount > 0 {
				t.Extend(x.Amount, x.Attribution)
			} else {
				t.Attribute(x.Attribution, ev.Timestamp)
			}
		}
	}
}

func (m *Module) onFightEnd(ev *event.Event) error {
	// Close in creation order so the record is deterministic.
	for _, t := range m.trackers {
		if !t.Closed {
			m.close(key{target: t.Target, spell: t.Spell}, t, ev.Timestamp)
		}
	}
	return nil
}

func (m *Module) close(k key, t *Tracker, at int64) {
	t.Closed = true
	t.ClosedAt = at
	t.setStacks(at, 0)
	delete(m.open, k)
	m.closed[k] = t
}

// RefreshEnd computes the new expiry of an effect refreshed at ts: the
// remaining duration, capped at base*cap, carries over on top of a fresh
// base duration.
func RefreshEnd(ts, end, base int64, cap float64) int64 {
	remaining := end - ts
	if remaining < 0 {
		remaining = 0
	}
	carry := int64(math.Round(float64(base) * cap))
	if remaining < carry {
		carry = remaining
	}
	return ts + carry + base
}

// Trackers returns every tracker, open and closed, in creation order.
func (m *Module) Trackers() []*Tracker {
	return append([]*Tracker(nil), m.trackers...)
}

// Open returns the open tracker for (target, spell).
func (m *Module) Open(target, spell int) (*Tracker, bool) {
	t, ok := m.open[key{target: target, spell: spell}]
	return t, ok
}

// UptimeMs returns the time at least one target had spell up.
func (m *Module) UptimeMs(spell int) int64 {
	type span struct{ from, to int64 }
	var spans []span
	for _, t := range m.trackers {
		if t.Spell != spell {
			continue
		}
		end := t.Start + t.Duration(m.fight.End)
		spans = append(spans, span{from: t.Start, to: end})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].from < spans[j].from })

	var total, curFrom, curTo int64
	for i, s := range spans {
		if i == 0 || s.from > curTo {
			total += curTo - curFrom
			curFrom, curTo = s.from, s.to
			continue
		}
		if s.to > curTo {
			curTo = s.to
		}
	}
	return total + curTo - curFrom
}

// UptimePercent returns UptimeMs as a fraction of the fight duration.
func (m *Module) UptimePercent(spell int) float64 {
	d := m.fight.Duration()
	if d == 0 {
		return 0
	}
	return float64(m.UptimeMs(spell)) / float64(d)
}

// AverageStacks returns the time-weighted stack count of spell while up.
func (m *Module) AverageStacks(spell int) float64 {
	var stackMs float64
	var upMs int64
	for _, t := range m.trackers {
		if t.Spell != spell {
			continue
		}
		stackMs += t.stackTime(m.fight.End)
		upMs += t.Duration(m.fight.End)
	}
	if upMs == 0 {
		return 0
	}
	return stackMs / float64(upMs)
}

// AttributionTotal is the credit of one attribution across all trackers of
// a spell.
type AttributionTotal struct {
	Spell  int    `json:"spell"`
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
	Ticks  int    `json:"ticks"`
}

// Totals sums attributions per (spell, name), ordered by spell then name.
func (m *Module) Totals() []AttributionTotal {
	type tkey struct {
		spell int
		name  string
	}
	sums := make(map[tkey]*AttributionTotal)
	for _, t := range m.trackers {
		for _, a := range t.Attributions {
			k := tkey{spell: t.Spell, name: a.Name}
			s, ok := sums[k]
			if !ok {
				s = &AttributionTotal{Spell: t.Spell, Name: a.Name}
				sums[k] = s
			}
			s.Amount += a.Amount
			s.Ticks += a.Ticks
		}
	}
	out := make([]AttributionTotal, 0, len(sums))
	for _, s := range sums {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Spell != out[j].Spell {
			return out[i].Spell < out[j].Spell
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// EffectSummary is one effect's row in the rendered output.
type EffectSummary struct {
	Spell         int                `json:"spell"`
	Name          string             `json:"name,omitempty"`
	Applications  int                `json:"applications"`
	UptimeMs      int64              `json:"uptimeMs"`
	UptimePercent float64            `json:"uptimePercent"`
	AverageStacks float64            `json:"averageStacks"`
	Attributions  []AttributionTotal `json:"attributions"`
}

// Render summarizes every configured effect in declaration order.
func (m *Module) Render() any {
	totals := m.Totals()
	out := make([]EffectSummary, 0, len(m.cfg.Effects))
	for _, e := range m.cfg.Effects {
		s := EffectSummary{
			Spell:         e.Spell,
			Name:          e.Name,
			UptimeMs:      m.UptimeMs(e.Spell),
			UptimePercent: m.UptimePercent(e.Spell),
			AverageStacks: m.AverageStacks(e.Spell),
			Attributions:  []AttributionTotal{},
		}
		for _, t := range m.trackers {
			if t.Spell == e.Spell {
				s.Applications++
			}
		}
		for _, a := range totals {
			if a.Spell == e.Spell {
				s.Attributions = append(s.Attributions, a)
			}
		}
		out = append(out, s)
	}
	return out
}
