package profile

import (
	"github.com/adilasif/WoWAnalyzer-sub001/internal/engine"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/normalize"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/tracker/buffs"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/tracker/hot"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/tracker/resource"
)

const buffsModule = buffs.Name

func (p *Profile) needsBuffs() bool {
	if p.Buffs {
		return true
	}
	for _, r := range p.Resources {
		if len(r.CostModifiers) > 0 {
			return true
		}
	}
	return false
}

// Definitions returns the module definitions the profile declares. The
// buffs tracker is included when requested or needed by a cost modifier.
func (p *Profile) Definitions() []engine.Definition {
	var defs []engine.Definition
	if p.needsBuffs() {
		defs = append(defs, buffs.Definition())
	}
	for _, r := range p.Resources {
		defs = append(defs, resource.Definition(r))
	}
	for _, h := range p.HoTs {
		defs = append(defs, hot.Definition(h.Config()))
	}
	return defs
}

// Roots returns the modules a run resolves. The buffs tracker is a root
// only when requested explicitly; otherwise it is pulled in as a
// dependency.
func (p *Profile) Roots() []engine.Dependency {
	var roots []engine.Dependency
	if p.Buffs {
		roots = append(roots, engine.Dep(buffsModule))
	}
	for _, r := range p.Resources {
		roots = append(roots, engine.Dep(r.Name))
	}
	for _, h := range p.HoTs {
		roots = append(roots, engine.Dep(h.Name))
	}
	return roots
}

// Catalog registers the profile's definitions in a new catalog.
func (p *Profile) Catalog() (*engine.Catalog, error) {
	c := engine.NewCatalog()
	if err := c.Register(p.Definitions()...); err != nil {
		return nil, err
	}
	return c, nil
}

// Normalizers returns the profile's normalizer rules. The fight-end
// marker is always last.
func (p *Profile) Normalizers() []normalize.Normalizer {
	var out []normalize.Normalizer
	if p.Prepull.Enabled {
		out = append(out, &normalize.PrepullBuffs{
			Abilities:    p.Prepull.Abilities,
			IncludeTicks: p.Prepull.IncludeTicks,
		})
	}
	for _, r := range p.Reorder {
		out = append(out, &normalize.Reorder{
			Label:           r.Name,
			Prio:            r.Priority,
			Before:          r.Before.matcher(),
			After:           r.After.matcher(),
			BufferMs:        r.BufferMs,
			MaxMatches:      r.MaxMatches,
			UpdateTimestamp: r.UpdateTimestamp,
			AnySource:       r.AnySource,
			AnyTarget:       r.AnyTarget,
		})
	}
	for _, f := range p.FreeCast {
		out = append(out, &normalize.FreeCast{
			Label:         f.Name,
			Prio:          f.Priority,
			Abilities:     f.Abilities,
			Proc:          f.Proc,
			ConsumeOnCast: f.ConsumeOnCast,
		})
	}
	for _, l := range p.Link {
		out = append(out, &normalize.Link{
			Label:            l.Name,
			Prio:             l.Priority,
			Relation:         l.Relation,
			ReverseRelation:  l.ReverseRelation,
			Anchor:           l.Anchor.matcher(),
			Target:           l.Target.matcher(),
			ForwardBufferMs:  l.ForwardBufferMs,
			BackwardBufferMs: l.BackwardBufferMs,
			MaxLinks:         l.MaxLinks,
			AnySource:        l.AnySource,
			AnyTarget:        l.AnyTarget,
			Exclusive:        l.Exclusive,
		})
	}
	return append(out, normalize.FightEnd{})
}
