package resource

import (
	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/fight"
)

// Hooks is the per-resource strategy the Tracker's accounting calls into.
// Concrete resources override only what differs from DefaultHooks.
type Hooks interface {
	// ScaleFactor converts logged amounts into resource units, e.g. 0.1
	// for a resource logged in tenths.
	ScaleFactor() float64
	// Cost returns the effective cost of a cast whose scaled logged cost
	// is raw.
	Cost(ev *event.Event, raw float64) float64
	// MaxResource returns the pool size for this fight.
	MaxResource(f *fight.Fight, base float64) float64
}

// DefaultHooks applies no scaling and no modifiers. Free casts cost
// nothing.
type DefaultHooks struct{}

func (DefaultHooks) ScaleFactor() float64 { return 1 }

func (DefaultHooks) Cost(ev *event.Event, raw float64) float64 {
	if ev.Free {
		return 0
	}
	return raw
}

func (DefaultHooks) MaxResource(_ *fight.Fight, base float64) float64 { return base }

// Scaled is DefaultHooks with a fixed scale factor.
type Scaled struct {
	DefaultHooks
	Factor float64
}

func (s Scaled) ScaleFactor() float64 { return s.Factor }

// BuffState answers whether an aura is up on the player. Implemented by
// buffs.Tracker.
type BuffState interface {
	Has(ability int) bool
}

// configHooks derives hooks from a Config: talent-raised maximum and
// buff-driven cost multipliers.
type configHooks struct {
	cfg   Config
	buffs BuffState
}

// NewHooks builds hooks from cfg. buffs may be nil when cfg has no cost
// modifiers.
func NewHooks(cfg Config, buffs BuffState) Hooks {
	return &configHooks{cfg: cfg, buffs: buffs}
}

func (h *configHooks) ScaleFactor() float64 {
	if h.cfg.Scale == 0 {
		return 1
	}
	return h.cfg.Scale
}

func (h *configHooks) Cost(ev *event.Event, raw float64) float64 {
	if ev.Free {
		return 0
	}
	cost := raw
	if h.buffs == nil {
		return cost
	}
	for _, m := range h.cfg.CostModifiers {
		if h.buffs.Has(m.Buff) {
			cost *= m.Multiplier
		}
	}
	return cost
}

func (h *configHooks) MaxResource(f *fight.Fight, base float64) float64 {
	for _, m := range h.cfg.MaxModifiers {
		if f.Player.HasTalent(m.Talent) {
			base += m.Amount * float64(f.Player.TalentRank(m.Talent))
		}
	}
	return base
}
