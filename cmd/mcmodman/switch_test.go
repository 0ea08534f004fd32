package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"mcmodman/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupProfiles makes Forge 1.20 active with a.jar and b.jar, and stores c.jar and d.jar under Fabric 1.21
func setupProfiles(t *testing.T) string {
	t.Helper()
	root := setupTestEnv(t)

	require.NoError(t, os.WriteFile(filepath.Join(root, "mcmodman.json"), []byte(`{"modLoader":"Forge","version":"1.20"}`), 0644))
	writeFiles(t, root, "a.jar", "b.jar")
	writeFiles(t, filepath.Join(root, "Fabric", "1.21"), "c.jar", "d.jar")
	return root
}

func readState(t *testing.T, root string) domain.ActiveState {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, "mcmodman.json"))
	require.NoError(t, err)
	var s domain.ActiveState
	require.NoError(t, json.Unmarshal(data, &s))
	return s
}

func TestSwitchCmd_Structure(t *testing.T) {
	assert.Equal(t, "switch", switchCmd.Use)
	assert.NotEmpty(t, switchCmd.Short)
	assert.NotEmpty(t, switchCmd.Long)

	for _, name := range []string{"loader", "version", "mods", "all", "yes"} {
		assert.NotNil(t, switchCmd.Flags().Lookup(name), name)
	}
}

func TestSwitchCmd_Direct(t *testing.T) {
	root := setupProfiles(t)

	out, _, err := runCommand(t, switchCmd, "--loader", "Fabric", "--version", "1.21", "--mods", "c.jar", "--yes")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Switched to Fabric 1.21")
	assert.Contains(t, out, "archived 2 mod(s) to Forge 1.20")
	assert.Contains(t, out, "activated 1 mod(s)")

	assert.FileExists(t, filepath.Join(root, "c.jar"))
	assert.NoFileExists(t, filepath.Join(root, "a.jar"))
	assert.FileExists(t, filepath.Join(root, "Forge", "1.20", "a.jar"))
	assert.FileExists(t, filepath.Join(root, "Forge", "1.20", "b.jar"))
	assert.FileExists(t, filepath.Join(root, "Fabric", "1.21", "d.jar"))
	assert.Equal(t, domain.ActiveState{ModLoader: "Fabric", Version: "1.21"}, readState(t, root))
}

func TestSwitchCmd_AllJSON(t *testing.T) {
	root := setupProfiles(t)
	jsonOutput = true

	out, _, err := runCommand(t, switchCmd, "--loader", "Fabric", "--version", "1.21", "--all", "--yes")
	require.NoError(t, err)

	var got switchJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "switched", got.Outcome)
	assert.Equal(t, "Forge 1.20", got.From)
	assert.Equal(t, "Fabric 1.21", got.To)
	assert.Equal(t, []string{"a.jar", "b.jar"}, got.Archived)
	assert.Equal(t, []string{"c.jar", "d.jar"}, got.Activated)

	assert.FileExists(t, filepath.Join(root, "d.jar"))
}

func TestSwitchCmd_AlreadyActive(t *testing.T) {
	root := setupProfiles(t)

	out, _, err := runCommand(t, switchCmd, "--loader", "Forge", "--version", "1.20", "--all", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Forge 1.20 is already active")
	assert.FileExists(t, filepath.Join(root, "a.jar"))
}

func TestSwitchCmd_NoModsAvailable(t *testing.T) {
	root := setupProfiles(t)

	out, _, err := runCommand(t, switchCmd, "--loader", "Fabric", "--version", "1.19", "--all", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "No mods found for Fabric 1.19")
	assert.NoDirExists(t, filepath.Join(root, "Fabric", "1.19"))
	assert.Equal(t, domain.ActiveState{ModLoader: "Forge", Version: "1.20"}, readState(t, root))
}

func TestSwitchCmd_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"loader without version", []string{"--loader", "Fabric", "--yes"}, "--loader and --version"},
		{"unsupported loader", []string{"--loader", "Quilt", "--version", "1.21", "--all", "--yes"}, "supported: Forge, Fabric"},
		{"unsafe version", []string{"--loader", "Fabric", "--version", "../..", "--all", "--yes"}, "invalid game version"},
		{"no mods chosen", []string{"--loader", "Fabric", "--version", "1.21", "--yes"}, "pass --mods or --all"},
		{"unknown mod", []string{"--loader", "Fabric", "--version", "1.21", "--mods", "zzz.jar", "--yes"}, "zzz.jar"},
		{"mods and all", []string{"--loader", "Fabric", "--version", "1.21", "--mods", "c.jar", "--all", "--yes"}, "cannot be combined"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := setupProfiles(t)

			_, _, err := runCommand(t, switchCmd, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			assert.FileExists(t, filepath.Join(root, "a.jar"))
			assert.Equal(t, domain.ActiveState{ModLoader: "Forge", Version: "1.20"}, readState(t, root))
		})
	}
}

func TestSwitchCmd_RejectsModFromActiveProfile(t *testing.T) {
	root := setupProfiles(t)

	_, _, err := runCommand(t, switchCmd, "--loader", "Fabric", "--version", "1.21", "--mods", "a.jar", "--yes")
	require.ErrorIs(t, err, domain.ErrUnknownMod)
	assert.Contains(t, err.Error(), "available: c.jar, d.jar")

	assert.FileExists(t, filepath.Join(root, "a.jar"))
	assert.FileExists(t, filepath.Join(root, "b.jar"))
	assert.NoDirExists(t, filepath.Join(root, "Forge", "1.20"))
	assert.Equal(t, domain.ActiveState{ModLoader: "Forge", Version: "1.20"}, readState(t, root))
}

func TestSwitchCmd_JSONNeedsYes(t *testing.T) {
	setupProfiles(t)
	jsonOutput = true

	_, _, err := runCommand(t, switchCmd, "--loader", "Fabric", "--version", "1.21", "--all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestSwitchCmd_InteractiveRejectsJSON(t *testing.T) {
	setupProfiles(t)
	jsonOutput = true

	_, _, err := runCommand(t, switchCmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not support --json")
}

func TestReportSwitchError(t *testing.T) {
	noColor = true
	buf := new(bytes.Buffer)

	reportSwitchError(buf, &domain.PartialSwitchError{
		Phase:   domain.PhaseActivate,
		Moved:   []string{"c.jar"},
		Pending: []string{"d.jar"},
	})

	assert.Contains(t, buf.String(), "activate phase")
	assert.Contains(t, buf.String(), "moved:     c.jar")
	assert.Contains(t, buf.String(), "not moved: d.jar")
	assert.Contains(t, buf.String(), "mcmodman resume")

	buf.Reset()
	reportSwitchError(buf, domain.ErrUnknownMod)
	assert.Empty(t, buf.String())
}
