package report

import (
	"encoding/json"
	"io"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/tracker/buffs"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/tracker/hot"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/tracker/resource"
)

// textWriter formats numbers with digit grouping and remembers the first
// write error.
type textWriter struct {
	p   *message.Printer
	w   io.Writer
	err error
}

func (t *textWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = t.p.Fprintf(t.w, format, args...)
}

// WriteText writes a human-readable summary of r.
func (r *Report) WriteText(w io.Writer) error {
	t := &textWriter{p: message.NewPrinter(language.English), w: w}

	t.printf("run:       %s\n", r.RunID)
	t.printf("fight:     %s %s, %d ms\n", strconv.Itoa(r.Fight.ID), r.Fight.Player, r.Fight.DurationMs)
	n := r.Normalize
	t.printf("normalize: %d events in, %d out, %d relations, %d anomalies\n",
		n.Input, n.Output, n.Relations, n.Anomalies)
	for _, s := range n.Steps {
		t.printf("  %s (priority %d): %d changes", s.Name, s.Priority, s.Changes)
		if s.Reordered {
			t.printf(", re-sorted")
		}
		t.printf("\n")
	}
	d := r.Dispatch
	t.printf("dispatch:  %d events, %d deliveries, %d failures\n", d.Events, d.Deliveries, d.Failures)

	for _, m := range r.Modules {
		t.printf("\n[%s]", m.Name)
		if !m.Active {
			t.printf(" inactive\n")
			continue
		}
		t.printf("\n")
		writeOutput(t, m.Output)
		if m.Failures > 0 {
			t.printf("  failures: %d\n", m.Failures)
			for _, e := range m.Errors {
				t.printf("    %s\n", e)
			}
		}
	}
	return t.err
}

func writeOutput(t *textWriter, out any) {
	switch o := out.(type) {
	case nil:
	case []buffs.Uptime:
		for _, u := range o {
			t.printf("  %s: %d applies, uptime %d ms (%.1f%%)\n",
				label(u.Name, u.Ability), u.Applies, u.UptimeMs, u.Percent*100)
		}
	case resource.Summary:
		t.printf("  max %.0f, final %.0f\n", o.Max, o.Final)
		t.printf("  generated %.0f, wasted %.0f, spent %.0f, drained %.0f\n",
			o.Totals.Generated, o.Totals.Wasted, o.Totals.Spent, o.Totals.Drained)
		for _, b := range o.Builders {
			t.printf("  builder %s: generated %.0f, wasted %.0f\n", label(b.Name, b.Ability), b.Generated, b.Wasted)
		}
		for _, s := range o.Spenders {
			t.printf("  spender %s: spent %.0f in %d casts", label(s.Name, s.Ability), s.Spent, s.Casts)
			if s.Free > 0 {
				t.printf(" (%d free)", s.Free)
			}
			t.printf("\n")
		}
		if a := o.Anomalies; a.Total() > 0 {
			t.printf("  anomalies: %d underflow, %d overspend, %d desync\n", a.Underflow, a.Overspend, a.Desync)
		}
	case []hot.EffectSummary:
		for _, e := range o {
			t.printf("  %s: %d applications, uptime %d ms (%.1f%%), avg stacks %.2f\n",
				label(e.Name, e.Spell), e.Applications, e.UptimeMs, e.UptimePercent*100, e.AverageStacks)
			for _, a := range e.Attributions {
				t.printf("    %s: %d over %d ticks\n", a.Name, a.Amount, a.Ticks)
			}
		}
	default:
		raw, err := json.Marshal(o)
		if err != nil {
			t.printf("  <unrenderable: %v>\n", err)
			return
		}
		t.printf("  %s\n", string(raw))
	}
}

// label names an ability, keeping its ID ungrouped.
func label(name string, id int) string {
	if name == "" {
		return strconv.Itoa(id)
	}
	return name + " (" + strconv.Itoa(id) + ")"
}
