package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adilasif/WoWAnalyzer-sub001/internal/eventlog"
)

func normalizeLog(t *testing.T, opts *NormalizeOptions, logPath string) (string, string, error) {
	t.Helper()
	if opts.RootOptions == nil {
		opts.RootOptions = &RootOptions{Format: "text"}
	}
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(diag)
	err := runNormalize(opts, logPath, cmd)
	return out.String(), diag.String(), err
}

func TestNormalize_YAML(t *testing.T) {
	out, _, err := normalizeLog(t, &NormalizeOptions{Profile: restorationProfile}, restorationLog)
	require.NoError(t, err)

	assert.Contains(t, out, "type: fightend")
	assert.Contains(t, out, "relation: fromSwiftmend")
}

func TestNormalize_JSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "normalized.json")
	opts := &NormalizeOptions{
		RootOptions: &RootOptions{Format: "json", Verbose: true},
		Profile:     restorationProfile,
		Output:      path,
	}

	out, diag, err := normalizeLog(t, opts, restorationLog)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, diag, "swiftmend-rejuvenation: 1 changes")
	assert.Contains(t, diag, "Wrote ")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var n eventlog.Normalized
	require.NoError(t, json.Unmarshal(data, &n))
	assert.Equal(t, 7, n.Fight.ID)
	require.Len(t, n.Relations, 1)
	assert.Equal(t, "fromSwiftmend", n.Relations[0].Relation)

	last := n.Events[len(n.Events)-1]
	assert.Equal(t, "fightend", string(last.Type))
	for i, ev := range n.Events {
		assert.NotZero(t, ev.ID, "event %d", i)
	}
}

func TestNormalize_MissingProfile(t *testing.T) {
	out, _, err := normalizeLog(t, &NormalizeOptions{Profile: "testdata/nope.cue"}, restorationLog)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "profile not found")
}

func TestNormalize_UnwritableOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.yaml")

	_, _, err := normalizeLog(t, &NormalizeOptions{Output: path}, smallLog)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
