package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/confronto-dev/confronto/internal/config"
)

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir, "2025-09-30", "17122471000175"))

	for _, d := range []string{"invoices", "outputs", "logs"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runInit(dir, "2025-09-30", "17122471000175"))

	cfg, err := config.Load(filepath.Join(dir, "confronto.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "2025-09-30", cfg.ClosingDate)
	assert.Equal(t, "17122471000175", cfg.TargetRecipientID)
	assert.Equal(t, 60, cfg.MaxPostponementDays)
	assert.Equal(t, "1.01", cfg.ValueTolerance)

	// The config must convert cleanly into an engine configuration.
	_, err = cfg.EngineConfig()
	require.NoError(t, err)
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	root := NewRootCommand()

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["init"])
	assert.True(t, names["run"])
}
