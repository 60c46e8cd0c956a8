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
)

func validate(t *testing.T, opts *ValidateOptions, logPath string) (string, error) {
	t.Helper()
	if opts.RootOptions == nil {
		opts.RootOptions = &RootOptions{Format: "text"}
	}
	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	err := runValidate(opts, logPath, cmd)
	return buf.String(), err
}

func writeProfile(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.cue")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestValidateGuardianProfile(t *testing.T) {
	out, err := validate(t, &ValidateOptions{Profile: guardianProfile}, "")
	require.NoError(t, err)

	assert.Contains(t, out, `✓ Profile "guardian" valid`)
	assert.Contains(t, out, "  modules:     buffs, rage\n")
	assert.Contains(t, out, "  normalizers: prepull-buffs, ironfur-after-mangle, free-ironfur, fight-end\n")
}

func TestValidateJSON(t *testing.T) {
	out, err := validate(t, &ValidateOptions{
		RootOptions: &RootOptions{Format: "json"},
		Profile:     restorationProfile,
	}, restorationLog)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, "restoration", resp.Data.Profile)
	assert.Equal(t, []string{"mana", "hots"}, resp.Data.Modules)
}

func TestValidateBuiltinProfile(t *testing.T) {
	out, err := validate(t, &ValidateOptions{}, "")
	require.NoError(t, err)
	assert.Contains(t, out, `✓ Profile "default" valid`)
}

func TestValidateCompileError(t *testing.T) {
	path := writeProfile(t, `name: "broken"
hots: [{
	name: "hots"
	effects: [{spell: 774, baseDuration: 0}]
}]
`)

	out, err := validate(t, &ValidateOptions{Profile: path}, "")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "  E002")
}

func TestValidateCompileErrorJSON(t *testing.T) {
	path := writeProfile(t, "name: \"x\"\nunknown: true\n")

	out, err := validate(t, &ValidateOptions{
		RootOptions: &RootOptions{Format: "json"},
		Profile:     path,
	}, "")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  CLIError         `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	assert.Equal(t, "E002", resp.Error.Code)
	require.Len(t, resp.Data.Errors, 1)
}

func TestValidateDuplicateModule(t *testing.T) {
	path := writeProfile(t, `name: "dup"
resources: [{name: "mana", resource: 0, max: 100}]
hots: [{name: "mana", effects: [{spell: 774, baseDuration: 12000}]}]
`)

	out, err := validate(t, &ValidateOptions{Profile: path}, "")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, `module name "mana" already used`)
}

func TestValidateNonExistentProfile(t *testing.T) {
	out, err := validate(t, &ValidateOptions{Profile: "testdata/nope.cue"}, "")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}

func TestValidateBadEventLog(t *testing.T) {
	_, err := validate(t, &ValidateOptions{Profile: guardianProfile}, "testdata/nope.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
