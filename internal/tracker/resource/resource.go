// Package resource implements generic accounting for one consumable
// resource pool (rage, energy, combo points, ...) across a fight.
//
// The accounting algorithm lives in Tracker; everything that differs
// between concrete resources goes through Hooks.
package resource

import (
	"fmt"
	"math"
	"sort"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/engine"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/fight"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/metrics"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/tracker/buffs"
)

// UnknownAbility is the builder bucket for gains without a known source
// ability and for waste that happens before the player's first cast.
const UnknownAbility = 0

// snapshotTolerance is the drift from the logged snapshot ignored when
// syncing.
const snapshotTolerance = 0.5

// Config describes one tracked resource.
type Config struct {
	Name     string  `json:"name"`
	Resource int     `json:"resource"`
	Initial  float64 `json:"initial"`
	Max      float64 `json:"max"`
	// Scale multiplies every logged amount; 0 means 1.
	Scale          float64        `json:"scale,omitempty"`
	MaxModifiers   []MaxModifier  `json:"maxModifiers,omitempty"`
	CostModifiers  []CostModifier `json:"costModifiers,omitempty"`
	SyncToSnapshot bool           `json:"syncToSnapshot,omitempty"`
}

// MaxModifier raises the pool size by Amount per rank of Talent.
type MaxModifier struct {
	Talent int     `json:"talent"`
	Amount float64 `json:"amount"`
}

// CostModifier multiplies cast costs while Buff is up on the player.
type CostModifier struct {
	Buff       int     `json:"buff"`
	Multiplier float64 `json:"multiplier"`
}

// Builder is the per-ability gain record.
type Builder struct {
	Name      string  `json:"name,omitempty"`
	Generated float64 `json:"generated"`
	Wasted    float64 `json:"wasted"`
}

// Spender is the per-ability spend record.
type Spender struct {
	Name  string  `json:"name,omitempty"`
	Spent float64 `json:"spent"`
	Casts int     `json:"casts"`
	Free  int     `json:"free,omitempty"`
}

// Totals aggregates all builders and spenders.
type Totals struct {
	Generated float64 `json:"generated"`
	Wasted    float64 `json:"wasted"`
	Spent     float64 `json:"spent"`
	Drained   float64 `json:"drained"`
}

// Anomalies counts clamped inconsistencies between the log and the model.
type Anomalies struct {
	// Underflow counts drains that would have taken the pool below zero.
	Underflow int `json:"underflow"`
	// Overspend counts casts costing more than the pool held.
	Overspend int `json:"overspend"`
	// Desync counts corrections from the logged snapshot.
	Desync int `json:"desync"`
}

// Total returns the sum of all anomaly counts.
func (a Anomalies) Total() int {
	return a.Underflow + a.Overspend + a.Desync
}

// Tracker accounts for one resource pool on the selected player.
type Tracker struct {
	cfg   Config
	hooks Hooks
	scale float64

	current  float64
	max      float64
	casted   bool
	drained  float64
	builders map[int]*Builder
	spenders map[int]*Spender
	anomaly  Anomalies
}

// Definition returns the catalog entry for cfg. A config with cost
// modifiers depends on the buffs tracker.
func Definition(cfg Config) engine.Definition {
	def := engine.Definition{Name: cfg.Name}
	if len(cfg.CostModifiers) > 0 {
		def.Deps = []engine.Dependency{engine.Dep(buffs.Name)}
	}
	def.New = func(c *engine.Context) (any, error) {
		var state BuffState
		if len(cfg.CostModifiers) > 0 {
			b, err := engine.Need[*buffs.Tracker](c, buffs.Name)
			if err != nil {
				return nil, err
			}
			state = b
		}
		return New(c, cfg, NewHooks(cfg, state))
	}
	return def
}

// New creates a tracker and registers its listeners on c.
func New(c *engine.Context, cfg Config, hooks Hooks) (*Tracker, error) {
	if cfg.Max <= 0 {
		return nil, fmt.Errorf("resource %q: max must be positive, got %v", cfg.Name, cfg.Max)
	}
	if hooks == nil {
		hooks = DefaultHooks{}
	}
	t := &Tracker{
		cfg:      cfg,
		hooks:    hooks,
		scale:    hooks.ScaleFactor(),
		max:      hooks.MaxResource(c.Fight, cfg.Max),
		builders: make(map[int]*Builder),
		spenders: make(map[int]*Spender),
	}
	t.current = clamp(cfg.Initial, 0, t.max)

	c.On(engine.On(event.TypeResourceChange).To(fight.ActorPlayer), t.onChange)
	c.On(engine.On(event.TypeCast).By(fight.ActorPlayer), t.onCast)
	return t, nil
}

func (t *Tracker) builder(ability event.Ability) *Builder {
	b, ok := t.builders[ability.GUID]
	if !ok {
		b = &Builder{}
		if ability.GUID == UnknownAbility {
			b.Name = "Unknown"
		}
		t.builders[ability.GUID] = b
	}
	if b.Name == "" {
		b.Name = ability.Name
	}
	return b
}

func (t *Tracker) onChange(ev *event.Event) error {
	if ev.ResourceType != t.cfg.Resource {
		return nil
	}
	adjusted := ev.ResourceChange * t.scale

	if adjusted < 0 {
		t.drained -= adjusted
		next := t.current + adjusted
		if next < 0 {
			t.anomaly.Underflow++
			metrics.IncAccountingAnomaly(t.cfg.Name, "underflow")
			next = 0
		}
		t.current = next
	} else {
		wasted := math.Max(0, t.current+adjusted-t.max)
		gained := adjusted - wasted
		t.current = clamp(t.current+adjusted, 0, t.max)

		t.builder(ev.Ability).Generated += gained
		if t.casted {
			t.builder(ev.Ability).Wasted += wasted
		} else if wasted > 0 {
			t.builder(event.Ability{GUID: UnknownAbility}).Wasted += wasted
		}
	}

	if t.cfg.SyncToSnapshot {
		t.sync(ev)
	}
	return nil
}

func (t *Tracker) sync(ev *event.Event) {
	snap, ok := ev.Resource(t.cfg.Resource)
	if !ok {
		return
	}
	logged := clamp(snap.Amount*t.scale, 0, t.max)
	if math.Abs(logged-t.current) > snapshotTolerance {
		t.anomaly.Desync++
		metrics.IncAccountingAnomaly(t.cfg.Name, "desync")
		t.current = logged
	}
}

func (t *Tracker) onCast(ev *event.Event) error {
	t.casted = true
	entry, ok := ev.Resource(t.cfg.Resource)
	if !ok || entry.Cost <= 0 {
		return nil
	}
	cost := t.hooks.Cost(ev, entry.Cost*t.scale)
	if cost < 0 {
		cost = 0
	}

	if cost > t.current {
		t.anomaly.Overspend++
		metrics.IncAccountingAnomaly(t.cfg.Name, "overspend")
		t.current = 0
	} else {
		t.current -= cost
	}

	s, ok := t.spenders[ev.Ability.GUID]
	if !ok {
		s = &Spender{Name: ev.Ability.Name}
		t.spenders[ev.Ability.GUID] = s
	}
	s.Spent += cost
	s.Casts++
	if ev.Free {
		s.Free++
	}
	return nil
}

// Name returns the module name.
func (t *Tracker) Name() string { return t.cfg.Name }

// Current returns the running amount.
func (t *Tracker) Current() float64 { return t.current }

// Max returns the pool size after modifiers.
func (t *Tracker) Max() float64 { return t.max }

// Generated returns the amount gained from ability, excluding waste.
func (t *Tracker) Generated(ability int) float64 {
	if b, ok := t.builders[ability]; ok {
		return b.Generated
	}
	return 0
}

// Wasted returns the overflow attributed to ability.
func (t *Tracker) Wasted(ability int) float64 {
	if b, ok := t.builders[ability]; ok {
		return b.Wasted
	}
	return 0
}

// Spent returns the amount spent on ability.
func (t *Tracker) Spent(ability int) float64 {
	if s, ok := t.spenders[ability]; ok {
		return s.Spent
	}
	return 0
}

// Builders returns a copy of the builder records keyed by ability.
func (t *Tracker) Builders() map[int]Builder {
	out := make(map[int]Builder, len(t.builders))
	for id, b := range t.builders {
		out[id] = *b
	}
	return out
}

// Spenders returns a copy of the spender records keyed by ability.
func (t *Tracker) Spenders() map[int]Spender {
	out := make(map[int]Spender, len(t.spenders))
	for id, s := range t.spenders {
		out[id] = *s
	}
	return out
}

// Totals sums all records.
func (t *Tracker) Totals() Totals {
	tot := Totals{Drained: t.drained}
	for _, b := range t.builders {
		tot.Generated += b.Generated
		tot.Wasted += b.Wasted
	}
	for _, s := range t.spenders {
		tot.Spent += s.Spent
	}
	return tot
}

// Anomalies returns the clamped anomaly counts.
func (t *Tracker) Anomalies() Anomalies { return t.anomaly }

// BuilderRow is one builder in the rendered output.
type BuilderRow struct {
	Ability int `json:"ability"`
	Builder
}

// SpenderRow is one spender in the rendered output.
type SpenderRow struct {
	Ability int `json:"ability"`
	Spender
}

// Summary is the rendered output of a Tracker.
type Summary struct {
	Resource  int          `json:"resource"`
	Max       float64      `json:"max"`
	Final     float64      `json:"final"`
	Totals    Totals       `json:"totals"`
	Builders  []BuilderRow `json:"builders"`
	Spenders  []SpenderRow `json:"spenders"`
	Anomalies Anomalies    `json:"anomalies"`
}

// Render returns a Summary with rows ordered by ability ID.
func (t *Tracker) Render() any {
	s := Summary{
		Resource:  t.cfg.Resource,
		Max:       t.max,
		Final:     t.current,
		Totals:    t.Totals(),
		Builders:  []BuilderRow{},
		Spenders:  []SpenderRow{},
		Anomalies: t.anomaly,
	}
	for _, id := range sortedKeys(t.builders) {
		s.Builders = append(s.Builders, BuilderRow{Ability: id, Builder: *t.builders[id]})
	}
	for _, id := range sortedKeys(t.spenders) {
		s.Spenders = append(s.Spenders, SpenderRow{Ability: id, Spender: *t.spenders[id]})
	}
	return s
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
