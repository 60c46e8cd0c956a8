// Package eventlog reads fight logs from disk and writes normalized ones
// back out.
//
// A log file holds the fight metadata and its events:
//
//	fight:
//	  id: 3
//	  start: 0
//	  end: 60000
//	  player: {id: 1, name: Tester}
//	events:
//	  - {timestamp: 1000, type: cast, sourceID: 1, targetID: 1, ability: {guid: 774}}
//
// YAML is the default format; files ending in .json are read as JSON. Both
// decoders reject unknown fields.
package eventlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/event"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/fight"
)

// Format selects the file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// File is one fight log.
type File struct {
	Fight  fight.Fight   `yaml:"fight" json:"fight"`
	Events []event.Event `yaml:"events" json:"events"`
}

// Load reads and validates the log at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event log: %w", err)
	}
	f, err := Decode(bytes.NewReader(data), FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if unknown := f.UnknownTypes(); len(unknown) > 0 {
		slog.Warn("event log has event types no module understands",
			"path", path,
			"types", unknown,
		)
	}
	return f, nil
}

// UnknownTypes lists, sorted, the distinct event types in f that the
// engine has no meaning for. Such events are kept and dispatched.
func (f *File) UnknownTypes() []event.Type {
	seen := make(map[event.Type]bool)
	var out []event.Type
	for _, ev := range f.Events {
		if !ev.Type.Known() && !seen[ev.Type] {
			seen[ev.Type] = true
			out = append(out, ev.Type)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Decode parses a log with strict field checking, validates it and
// NFC-normalizes every name so attribution keys compare byte for byte.
func Decode(r io.Reader, format Format) (*File, error) {
	var f File
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
	default:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
	}

	if err := validate(&f); err != nil {
		return nil, fmt.Errorf("invalid event log: %w", err)
	}
	normalizeNames(&f)
	return &f, nil
}

func validate(f *File) error {
	if f.Fight.End < f.Fight.Start {
		return fmt.Errorf("fight ends at %d before it starts at %d", f.Fight.End, f.Fight.Start)
	}
	if f.Fight.Player.ID == 0 {
		return fmt.Errorf("fight.player.id is required")
	}
	for i, ev := range f.Events {
		if ev.Type == "" {
			return fmt.Errorf("event %d: type is required", i)
		}
		if ev.ID != 0 {
			return fmt.Errorf("event %d: id is assigned during normalization and must be omitted", i)
		}
	}
	return nil
}

func normalizeNames(f *File) {
	f.Fight.Player.Name = norm.NFC.String(f.Fight.Player.Name)
	for i := range f.Events {
		f.Events[i].Ability.Name = norm.NFC.String(f.Events[i].Ability.Name)
	}
}

// Normalized is a log after the normalizer pipeline: events carry IDs and
// the relation tags between them are listed.
type Normalized struct {
	Fight     fight.Fight   `yaml:"fight" json:"fight"`
	Events    []event.Event `yaml:"events" json:"events"`
	Relations []event.Edge  `yaml:"relations" json:"relations"`
}

// NewNormalized snapshots a frozen log.
func NewNormalized(f *fight.Fight, log *event.Log) *Normalized {
	edges := log.Edges()
	if edges == nil {
		edges = []event.Edge{}
	}
	return &Normalized{
		Fight:     *f,
		Events:    log.Events(),
		Relations: edges,
	}
}

// Encode writes n in the given format.
func (n *Normalized) Encode(w io.Writer, format Format) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(n)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(n); err != nil {
		return err
	}
	return enc.Close()
}
