package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/littlesteps/internal/testutil"
)

// setConfigFile sets the package-level configFile for the duration of the test.
func setConfigFile(t *testing.T, cfgPath string) {
	t.Helper()
	oldConfigFile := configFile
	configFile = cfgPath
	t.Cleanup(func() { configFile = oldConfigFile })
}

// setupBrokenConfigFile creates a config file with invalid YAML that causes Load() to fail.
func setupBrokenConfigFile(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{{invalid yaml content"), 0644))
	return cfgPath
}

// setupStore points the commands at a file-backed store in a temp dir and
// returns that dir.
func setupStore(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	setConfigFile(t, testutil.SetupTestConfig(t, tmpDir))
	return tmpDir
}

// execute runs a command built by newCommand with args and stdin, and
// returns what it printed.
func execute(t *testing.T, newCommand func() *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

// mustExecute is execute for steps that set up a test.
func mustExecute(t *testing.T, newCommand func() *cobra.Command, args ...string) string {
	t.Helper()
	out, err := execute(t, newCommand, "", args...)
	require.NoError(t, err, out)
	return out
}
