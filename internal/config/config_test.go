package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a123ao/async-excel-go/pkg/asyncexcel"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, time.Second, time.Duration(cfg.Interval))
	assert.True(t, cfg.AutoSave)
	assert.True(t, cfg.Visible)
	assert.Equal(t, "xlsx", cfg.Engine)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
file: books/ledger.xlsx
sheet: Totals
interval: 250ms
auto_save: false
engine: com
log:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "books/ledger.xlsx", cfg.File)
	assert.Equal(t, "Totals", cfg.Sheet)
	assert.Equal(t, 250*time.Millisecond, time.Duration(cfg.Interval))
	assert.False(t, cfg.AutoSave)
	assert.Equal(t, "com", cfg.Engine)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
sheet: FromFile
interval: 5s
`)
	t.Setenv("XLWATCH_SHEET", "FromEnv")
	t.Setenv("XLWATCH_INTERVAL", "2s")
	t.Setenv("XLWATCH_AUTO_SAVE", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "FromEnv", cfg.Sheet)
	assert.Equal(t, 2*time.Second, time.Duration(cfg.Interval))
	assert.False(t, cfg.AutoSave)
}

func TestInvalidValues(t *testing.T) {
	t.Run("bad duration in file", func(t *testing.T) {
		path := writeConfig(t, "interval: soon\n")
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("bad duration in env", func(t *testing.T) {
		t.Setenv("XLWATCH_INTERVAL", "whenever")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("unknown engine", func(t *testing.T) {
		path := writeConfig(t, "engine: abacus\n")
		_, err := Load(path)
		assert.ErrorIs(t, err, asyncexcel.ErrInvalidConfig)
	})

	t.Run("non-positive interval", func(t *testing.T) {
		cfg := Default()
		cfg.Interval = 0
		assert.ErrorIs(t, cfg.Validate(), asyncexcel.ErrInvalidConfig)
	})
}
