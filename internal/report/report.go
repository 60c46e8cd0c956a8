// Package report turns an analysis result into its published form: one
// entry per constructed module with the module's rendered output, listener
// failures, and the normalization and dispatch statistics of the run.
package report

import (
	"encoding/json"
	"io"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/engine"
	"github.com/adilasif/WoWAnalyzer-sub001/internal/normalize"
)

// Report is the output of one analysis run.
type Report struct {
	RunID     string               `json:"runID"`
	Fight     Fight                `json:"fight"`
	Normalize normalize.Stats      `json:"normalize"`
	Dispatch  engine.DispatchStats `json:"dispatch"`
	Modules   []Module             `json:"modules"`
}

// Fight identifies the analyzed fight.
type Fight struct {
	ID         int    `json:"id"`
	Player     string `json:"player"`
	Start      int64  `json:"start"`
	End        int64  `json:"end"`
	DurationMs int64  `json:"durationMs"`
}

// Module is one constructed module's entry. Output is set for active
// modules that render.
type Module struct {
	Name     string   `json:"name"`
	Active   bool     `json:"active"`
	Output   any      `json:"output,omitempty"`
	Failures int      `json:"failures,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// Build collects res into a Report. Modules appear in construction order.
func Build(res *engine.Result) *Report {
	r := &Report{
		RunID:     res.RunID,
		Normalize: res.Normalize,
		Dispatch:  res.Dispatch,
		Modules:   []Module{},
	}
	if f := res.Fight; f != nil {
		r.Fight = Fight{
			ID:         f.ID,
			Player:     f.Player.Name,
			Start:      f.Start,
			End:        f.End,
			DurationMs: f.Duration(),
		}
	}
	if res.Registry == nil {
		return r
	}

	for _, inst := range res.Registry.Instances() {
		m := Module{
			Name:     inst.Name,
			Active:   inst.Active(),
			Failures: inst.Failures(),
		}
		if rd, ok := inst.Module.(engine.Renderer); ok && m.Active {
			m.Output = rd.Render()
		}
		for _, err := range inst.Errors() {
			m.Errors = append(m.Errors, err.Error())
		}
		r.Modules = append(r.Modules, m)
	}
	return r
}

// Failures returns the total number of listener failures in the run.
func (r *Report) Failures() int {
	n := 0
	for _, m := range r.Modules {
		n += m.Failures
	}
	return n
}

// WriteJSON writes r as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
