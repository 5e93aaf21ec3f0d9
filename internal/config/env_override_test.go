package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvOverrides_Paths(t *testing.T) {
	t.Run("CHANGELOG_CHANGES replaces change set path", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CHANGELOG_CHANGES", "env/changes.json")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "env/changes.json", cfg.Project.Changes)
	})

	t.Run("CHANGELOG_CATALOG sets catalog", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CHANGELOG_CATALOG", "symbols.sqlite")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "symbols.sqlite", cfg.Catalog.Path)
	})

	t.Run("CHANGELOG_OUTPUT and CHANGELOG_HISTORY_DB", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CHANGELOG_OUTPUT", "out.md")
		t.Setenv("CHANGELOG_HISTORY_DB", "runs.db")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "out.md", cfg.Render.Output)
		assert.Equal(t, "runs.db", cfg.History.DatabasePath)
	})

	t.Run("empty values do not override", func(t *testing.T) {
		clearEnv(t)

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, DefaultConfig(), cfg)
	})
}

func TestEnvOverrides_LogLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("CHANGELOG_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvOverrides_WinOverFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("render:\n  output: from-file.md\n"), 0644))
	t.Setenv("CHANGELOG_OUTPUT", "from-env.md")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env.md", cfg.Render.Output)
}
