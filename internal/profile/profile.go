// Package profile compiles analysis profiles written in CUE.
//
// A profile declares everything a run needs beyond the events themselves:
// which resources and periodic effects to track and which normalizer rules
// repair the log first. Profiles are unified with the embedded #Profile
// schema, so defaults (pandemic cap 0.3, one match per reorder anchor,
// unlimited links) are filled in before decoding.
//
// Usage:
//
//	p, err := profile.Load("profiles/restoration.cue")
//	catalog, err := p.Catalog()
//	a := engine.NewAnalyzer(catalog, p.Roots(), engine.WithNormalizers(p.Normalizers()...))
package profile

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/tracker/hot"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/tracker/resource"
)

//go:embed schema.cue
var schemaSource string

// Profile is a compiled analysis profile.
type Profile struct {
	Name      string            `json:"name"`
	Prepull   Prepull           `json:"prepull"`
	Reorder   []ReorderRule     `json:"reorder"`
	Link      []LinkRule        `json:"link"`
	FreeCast  []FreeCastRule    `json:"freeCast"`
	Buffs     bool              `json:"buffs"`
	Resources []resource.Config `json:"resources"`
	HoTs      []HoTs            `json:"hots"`
}

// Matcher selects events by type and ability.
type Matcher struct {
	Types     []string `json:"types,omitempty"`
	Abilities []int    `json:"abilities,omitempty"`
}

func (m Matcher) matcher() event.Matcher {
	out := event.Matcher{Abilities: m.Abilities}
	for _, t := range m.Types {
		out.Types = append(out.Types, event.Type(t))
	}
	return out
}

// Prepull configures synthetic applications for auras active before the
// log starts.
type Prepull struct {
	Enabled      bool  `json:"enabled"`
	Abilities    []int `json:"abilities"`
	IncludeTicks bool  `json:"includeTicks"`
}

// ReorderRule is the profile form of normalize.Reorder.
type ReorderRule struct {
	Name            string  `json:"name"`
	Priority        int     `json:"priority"`
	Before          Matcher `json:"before"`
	After           Matcher `json:"after"`
	BufferMs        int64   `json:"bufferMs"`
	MaxMatches      int     `json:"maxMatches"`
	UpdateTimestamp bool    `json:"updateTimestamp"`
	AnySource       bool    `json:"anySource"`
	AnyTarget       bool    `json:"anyTarget"`
}

// LinkRule is the profile form of normalize.Link.
type LinkRule struct {
	Name             string  `json:"name"`
	Priority         int     `json:"priority"`
	Relation         string  `json:"relation"`
	ReverseRelation  string  `json:"reverseRelation,omitempty"`
	Anchor           Matcher `json:"anchor"`
	Target           Matcher `json:"target"`
	ForwardBufferMs  int64   `json:"forwardBufferMs"`
	BackwardBufferMs int64   `json:"backwardBufferMs"`
	MaxLinks         int     `json:"maxLinks"`
	AnySource        bool    `json:"anySource"`
	AnyTarget        bool    `json:"anyTarget"`
	Exclusive        bool    `json:"exclusive"`
}

// FreeCastRule is the profile form of normalize.FreeCast.
type FreeCastRule struct {
	Name          string `json:"name"`
	Priority      int    `json:"priority"`
	Abilities     []int  `json:"abilities"`
	Proc          int    `json:"proc"`
	ConsumeOnCast bool   `json:"consumeOnCast"`
}

// HoTs is the profile form of hot.Config.
type HoTs struct {
	Name       string       `json:"name"`
	Effects    []hot.Effect `json:"effects"`
	Extensions []Extension  `json:"extensions"`
}

// Extension is the profile form of hot.Extension.
type Extension struct {
	Trigger     Matcher `json:"trigger"`
	Effects     []int   `json:"effects"`
	Amount      int64   `json:"amount"`
	Attribution string  `json:"attribution"`
	AllTargets  bool    `json:"allTargets"`
}

// Config converts h to the tracker's configuration.
func (h HoTs) Config() hot.Config {
	cfg := hot.Config{Name: h.Name, Effects: h.Effects}
	for _, x := range h.Extensions {
		cfg.Extensions = append(cfg.Extensions, hot.Extension{
			Trigger:     x.Trigger.matcher(),
			Effects:     x.Effects,
			Amount:      x.Amount,
			Attribution: x.Attribution,
			AllTargets:  x.AllTargets,
		})
	}
	return cfg
}

// Load reads and compiles the profile at path.
func Load(path string) (*Profile, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return Compile(path, src)
}

// Compile compiles CUE source against the #Profile schema. filename is
// used in error positions only.
func Compile(filename string, src []byte) (*Profile, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("profile schema: %w", err)
	}

	user := ctx.CompileBytes(src, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := schema.LookupPath(cue.ParsePath("#Profile")).Unify(user)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	p := &Profile{}
	if err := v.Decode(p); err != nil {
		return nil, formatCUEError(err)
	}
	if err := p.check(user); err != nil {
		return nil, err
	}
	return p, nil
}

// Default returns the profile used when none is given: prepull injection
// and the fight-end marker, no trackers.
func Default() *Profile {
	p, err := Compile("default.cue", []byte(`name: "default"`))
	if err != nil {
		panic(fmt.Sprintf("default profile: %v", err))
	}
	return p
}

// check enforces the constraints the schema cannot express: module names
// unique across sections and per-tracker validation. Positions are looked
// up in src, the profile as written.
func (p *Profile) check(src cue.Value) error {
	names := map[string]string{}
	claim := func(name string, path cue.Path, field string) error {
		if prev, ok := names[name]; ok {
			return &CompileError{
				Field:   field,
				Message: fmt.Sprintf("module name %q already used by %s", name, prev),
				Pos:     src.LookupPath(path).Pos(),
			}
		}
		names[name] = field
		return nil
	}
	if p.needsBuffs() {
		names[buffsModule] = "buffs"
	}

	for i, r := range p.Resources {
		path := cue.MakePath(cue.Str("resources"), cue.Index(i))
		if err := claim(r.Name, path, fmt.Sprintf("resources[%d]", i)); err != nil {
			return err
		}
	}
	for i, h := range p.HoTs {
		path := cue.MakePath(cue.Str("hots"), cue.Index(i))
		field := fmt.Sprintf("hots[%d]", i)
		if err := claim(h.Name, path, field); err != nil {
			return err
		}
		if err := h.Config().Validate(); err != nil {
			return &CompileError{Field: field, Message: err.Error(), Pos: src.LookupPath(path).Pos()}
		}
	}
	return nil
}
