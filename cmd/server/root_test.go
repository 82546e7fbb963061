package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "version flag", args: []string{"--version"}},
		{name: "help flag", args: []string{"--help"}},
		{name: "unknown command", args: []string{"frobnicate"}, wantErr: true},
		{name: "state takes no args", args: []string{"state", "extra"}, wantErr: true},
		{name: "import needs a file", args: []string{"credentials", "import"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStateCommandPrintsDefaultDesktop(t *testing.T) {
	db := filepath.Join(t.TempDir(), "desktop.db")

	out, _, err := run(t, "state", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "workspaces:")
	assert.Contains(t, out, "name: Home")
	assert.Contains(t, out, "activeWorkspaceId: 1")
}

func TestCredentialsImportAndList(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "desktop.db")
	file := filepath.Join(dir, "keys.toml")
	require.NoError(t, os.WriteFile(file, []byte("[apiKeys]\nanthropic = \"sk-ant-abcdef123456\"\n"), 0o600))

	out, _, err := run(t, "credentials", "import", file, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 key(s)")

	out, _, err = run(t, "credentials", "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "anthropic")
	assert.Contains(t, out, "3456")
	assert.NotContains(t, out, "sk-ant-abcdef123456")
}

func TestCredentialsImportMissingFile(t *testing.T) {
	db := filepath.Join(t.TempDir(), "desktop.db")
	_, _, err := run(t, "credentials", "import", "/does/not/exist.toml", "--db", db)
	assert.Error(t, err)
}
