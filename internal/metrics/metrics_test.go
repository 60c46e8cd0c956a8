package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterIdempotentAndHelpersRecord(t *testing.T) {
	regOK.Store(false)
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg), "second register is a no-op")

	IncRun("ok")
	AddEventsDispatched(12)
	AddListenerCalls("resource:rage", 4)
	IncListenerError("resource:rage")
	AddNormalizerChanges("reorder", 2)
	IncNormalizerAnomaly("reorder")
	IncAccountingAnomaly("resource:rage", "negative")
	ObservePhase("dispatch", 0.01)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	want := map[string]bool{
		"fightlog_analysis_runs_total":             false,
		"fightlog_dispatch_events_total":           false,
		"fightlog_dispatch_listener_calls_total":   false,
		"fightlog_dispatch_listener_errors_total":  false,
		"fightlog_normalize_changes_total":         false,
		"fightlog_normalize_anomalies_total":       false,
		"fightlog_tracker_anomalies_total":         false,
		"fightlog_analysis_phase_duration_seconds": false,
	}
	for _, mf := range mfs {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
			assert.NotEmpty(t, mf.GetMetric(), "metric %s has no samples", mf.GetName())
		}
	}
	for name, found := range want {
		assert.True(t, found, "expected metric %s", name)
	}
}

func TestWriteTextfile(t *testing.T) {
	regOK.Store(false)
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	IncRun("error")

	path := filepath.Join(t.TempDir(), "fightlog.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `fightlog_analysis_runs_total{status="error"}`)
}
