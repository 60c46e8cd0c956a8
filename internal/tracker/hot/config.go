package hot

import (
	"fmt"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/fight"
)

// DefaultPandemicCap is the fraction of the base duration that a refresh
// may carry over.
const DefaultPandemicCap = 0.3

// LateEventMs is how long after a removal a tick or duplicate removal of
// the same effect still belongs to the removed application. Logs often
// write the final tick at or just after the remove.
const LateEventMs = 250

// UnknownAttribution credits ticks of effects whose application was not
// observed.
const UnknownAttribution = "Unknown"

// Effect describes one tracked periodic effect.
type Effect struct {
	Spell        int    `json:"spell"`
	Name         string `json:"name,omitempty"`
	BaseDuration int64  `json:"baseDuration"`
	// PandemicCap is the carry-over fraction on refresh; nil means
	// DefaultPandemicCap and 0 disables carry-over.
	PandemicCap *float64 `json:"pandemicCap,omitempty"`
	// Ticks lists the abilities of the effect's periodic events; empty
	// means Spell.
	Ticks []int `json:"ticks,omitempty"`
	// DefaultAttribution credits plain applications; empty means Name.
	DefaultAttribution string   `json:"defaultAttribution,omitempty"`
	Sources            []Source `json:"sources,omitempty"`
}

// Source credits an application to Attribution when the apply or refresh
// event carries a relation tag named Relation.
type Source struct {
	Relation    string `json:"relation"`
	Attribution string `json:"attribution"`
}

// Extension changes running effects when a Trigger event by the player
// occurs. With Amount > 0 the effects are extended and the extra time is
// credited to Attribution. With Amount == 0 credit is handed to
// Attribution from the trigger onward.
type Extension struct {
	Trigger     event.Matcher `json:"-"`
	Effects     []int         `json:"effects"`
	Amount      int64         `json:"amount,omitempty"`
	Attribution string        `json:"attribution"`
	// AllTargets applies the extension to every open tracker instead of
	// only the trigger's target.
	AllTargets bool `json:"allTargets,omitempty"`
}

// Config describes one HoT tracker module.
type Config struct {
	Name       string      `json:"name"`
	Effects    []Effect    `json:"effects"`
	Extensions []Extension `json:"extensions,omitempty"`
}

// Cap returns a pandemic cap for Effect.PandemicCap.
func Cap(v float64) *float64 { return &v }

// Validate checks that there is at least one effect, that effects are
// unique and that durations are positive.
func (c Config) Validate() error {
	if len(c.Effects) == 0 {
		return fmt.Errorf("at least one effect is required")
	}
	seen := make(map[int]bool)
	ticks := make(map[int]int)
	for _, e := range c.Effects {
		if e.BaseDuration <= 0 {
			return fmt.Errorf("effect %d: base duration must be positive", e.Spell)
		}
		if c := e.PandemicCap; c != nil && (*c < 0 || *c > 1) {
			return fmt.Errorf("effect %d: pandemic cap %v outside [0, 1]", e.Spell, *c)
		}
		if seen[e.Spell] {
			return fmt.Errorf("effect %d: declared twice", e.Spell)
		}
		seen[e.Spell] = true
		for _, tick := range e.tickAbilities() {
			if owner, ok := ticks[tick]; ok && owner != e.Spell {
				return fmt.Errorf("tick ability %d claimed by effects %d and %d", tick, owner, e.Spell)
			}
			ticks[tick] = e.Spell
		}
	}
	for _, x := range c.Extensions {
		for _, spell := range x.Effects {
			if !seen[spell] {
				return fmt.Errorf("extension %q: unknown effect %d", x.Attribution, spell)
			}
		}
		if x.Attribution == "" {
			return fmt.Errorf("extension of %v: attribution is required", x.Effects)
		}
	}
	return nil
}

func (e Effect) tickAbilities() []int {
	if len(e.Ticks) == 0 {
		return []int{e.Spell}
	}
	return e.Ticks
}

func (e Effect) defaultAttribution() string {
	switch {
	case e.DefaultAttribution != "":
		return e.DefaultAttribution
	case e.Name != "":
		return e.Name
	}
	return fmt.Sprintf("spell %d", e.Spell)
}

// Hooks is the per-effect strategy for durations.
type Hooks interface {
	BaseDuration(e Effect, f *fight.Fight) int64
	PandemicCap(e Effect) float64
}

// DefaultHooks reads durations from the Effect.
type DefaultHooks struct{}

func (DefaultHooks) BaseDuration(e Effect, _ *fight.Fight) int64 { return e.BaseDuration }

func (DefaultHooks) PandemicCap(e Effect) float64 {
	if e.PandemicCap == nil {
		return DefaultPandemicCap
	}
	return *e.PandemicCap
}
