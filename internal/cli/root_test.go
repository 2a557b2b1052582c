package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/animpub/internal/ident"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// isolate points HOME at an empty directory so no real config is loaded.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, opts *RootOptions, args ...string) (string, string, error) {
	t.Helper()
	if opts == nil {
		opts = &RootOptions{}
	}
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := newRootCommand(opts)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func fixedIDs(ids ...string) *RootOptions {
	return &RootOptions{IDs: ident.NewFixedGenerator(ids...)}
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "animpub", cmd.Use)
	assert.Contains(t, cmd.Long, "runtime palette")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"publish"},
		{"inspect"},
		{"registry"},
		{"palette"},
		{"palette", "schema"},
		{"palette", "check"},
		{"history"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
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

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestPublishCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	publishCmd, _, err := cmd.Find([]string{"publish"})
	require.NoError(t, err)

	forceFlag := publishCmd.Flags().Lookup("force")
	require.NotNil(t, forceFlag)
	assert.Equal(t, "f", forceFlag.Shorthand)

	copyFlag := publishCmd.Flags().Lookup("copy")
	require.NotNil(t, copyFlag)
	assert.Equal(t, "c", copyFlag.Shorthand)
}

func TestInspectCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	inspectCmd, _, err := cmd.Find([]string{"inspect"})
	require.NoError(t, err)

	outputFlag := inspectCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
}

func TestHistoryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	historyCmd, _, err := cmd.Find([]string{"history"})
	require.NoError(t, err)

	manifestFlag := historyCmd.Flags().Lookup("manifest")
	require.NotNil(t, manifestFlag)
	assert.Equal(t, "", manifestFlag.DefValue)
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.True(t, isValidFormat("yaml"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, nil, "--format", "invalid", "inspect", "hero.js")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestConfigFormatIsDefault(t *testing.T) {
	isolate(t)
	cfgPath := filepath.Join(t.TempDir(), "animpub.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"format": "json"}`), 0o644))

	opts := &RootOptions{}
	_, _, err := execute(t, opts, "--config", cfgPath, "history")

	require.Error(t, err)
	assert.Equal(t, "json", opts.Format)
}

func TestFormatFlagOverridesConfig(t *testing.T) {
	isolate(t)
	cfgPath := filepath.Join(t.TempDir(), "animpub.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"format": "json"}`), 0o644))

	opts := &RootOptions{}
	_, _, _ = execute(t, opts, "--config", cfgPath, "--format", "yaml", "history")

	assert.Equal(t, "yaml", opts.Format)
}

func TestConfigError(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, nil, "--config", filepath.Join(t.TempDir(), "missing.json"), "history")

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stdout, "Error [CONFIG_ERROR]")
}

func TestInvalidConfigValue(t *testing.T) {
	isolate(t)
	cfgPath := filepath.Join(t.TempDir(), "animpub.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"log_level": "loud"}`), 0o644))

	stdout, _, err := execute(t, nil, "--config", cfgPath, "history")

	require.Error(t, err)
	assert.Contains(t, stdout, "config validation failed")
}

func TestVerboseEnablesDebugLogging(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := writeExport(t, dir, "hero.js")

	_, stderr, err := execute(t, fixedIDs(id1), "-v", "publish", path)

	require.NoError(t, err)
	assert.Contains(t, stderr, "level=DEBUG")
	assert.Contains(t, stderr, `msg="rule applied"`)
}

func TestQuietByDefault(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := writeExport(t, dir, "hero.js")

	_, stderr, err := execute(t, fixedIDs(id1), "publish", path)

	require.NoError(t, err)
	assert.NotContains(t, stderr, "level=DEBUG")
	assert.Contains(t, stderr, "msg=published")
}
