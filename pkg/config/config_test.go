package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfigMissingFile verifies defaults are returned when no file exists
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), cfg.Processing.NumCores)
	assert.Equal(t, 1.5, cfg.Quality.Fence)
	assert.Equal(t, "infinite", cfg.Quality.Degenerate)
	assert.Equal(t, "default", cfg.Distortion.Mode)
	assert.Equal(t, 0.6, cfg.Mask.Threshold)
}

// TestLoadConfigOverrides verifies values from the file replace the defaults
func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "surfaces.yaml")
	data := []byte("processing:\n  numCores: 3\nquality:\n  fence: 3\n  degenerate: reject\nlog:\n  level: debug\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Processing.NumCores)
	assert.Equal(t, 3.0, cfg.Quality.Fence)
	assert.Equal(t, "reject", cfg.Quality.Degenerate)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched sections keep their defaults
	assert.Equal(t, "default", cfg.Distortion.Mode)
}

// TestLoadConfigInvalid verifies unparsable and out-of-range files are rejected
func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("quality: [\n"), 0644))
	_, err := LoadConfig(broken)
	assert.Error(t, err)

	badMode := filepath.Join(dir, "mode.yaml")
	require.NoError(t, os.WriteFile(badMode, []byte("distortion:\n  mode: sideways\n"), 0644))
	_, err = LoadConfig(badMode)
	assert.ErrorContains(t, err, "distortion.mode")
}

// TestCreateDefaultConfigFile verifies a saved default config loads back identically
func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "surfaces.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
