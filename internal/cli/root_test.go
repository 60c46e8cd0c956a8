package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	restorationProfile = filepath.Join("..", "profile", "testdata", "restoration.cue")
	guardianProfile    = filepath.Join("..", "profile", "testdata", "guardian.cue")
	restorationLog     = filepath.Join("..", "eventlog", "testdata", "restoration.yaml")
	smallLog           = filepath.Join("..", "eventlog", "testdata", "small.json")
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "fightlog", cmd.Use)
	assert.Contains(t, cmd.Long, "combat log")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"analyze", "normalize", "validate"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("log-file"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("log-level"))
}

func TestAnalyzeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	analyzeCmd, _, err := cmd.Find([]string{"analyze"})
	require.NoError(t, err)

	profileFlag := analyzeCmd.Flags().Lookup("profile")
	require.NotNil(t, profileFlag)
	assert.Equal(t, "p", profileFlag.Shorthand)
	assert.Equal(t, "", profileFlag.DefValue)

	require.NotNil(t, analyzeCmd.Flags().Lookup("metrics-file"))
	assert.Equal(t, "false", analyzeCmd.Flags().Lookup("strict").DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "validate", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFormatFromEnv(t *testing.T) {
	t.Setenv("FIGHTLOG_FORMAT", "json")

	out, _, err := execute(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "ok"`)
}

func TestFlagOverridesEnv(t *testing.T) {
	t.Setenv("FIGHTLOG_FORMAT", "json")

	out, _, err := execute(t, "validate", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Profile")
}

func TestInvalidLogLevel(t *testing.T) {
	_, _, err := execute(t, "validate", "--log-level", "loud")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestVerboseEnablesDebugLogs(t *testing.T) {
	_, stderr, err := execute(t, "analyze", "-v", "--profile", restorationProfile, restorationLog)
	require.NoError(t, err)
	assert.Contains(t, stderr, "level=DEBUG")
}

func TestLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fightlog.log")

	_, _, err := execute(t, "analyze", "--log-file", path, smallLog)
	require.NoError(t, err)
	assert.FileExists(t, path)
}
