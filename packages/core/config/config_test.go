package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 2*time.Second, cfg.DefaultWait())
	assert.Equal(t, 50*time.Millisecond, cfg.PollInterval())
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout())
	assert.Equal(t, []string{"console"}, cfg.Reporters)
	assert.False(t, cfg.GetBail())
	assert.False(t, cfg.GetVerbose())
	assert.False(t, cfg.GetNoColor())
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "domspec.config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"defaultWait": 5000,
		"pollInterval": 100,
		"bail": true
	}`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.DefaultWait())
	assert.Equal(t, 100*time.Millisecond, cfg.PollInterval())
	assert.True(t, cfg.GetBail())
	// Untouched fields keep their defaults.
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout())
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{not json`), 0644))
	_, err := LoadConfig(bad)
	assert.Error(t, err)

	negative := filepath.Join(dir, "negative.json")
	require.NoError(t, os.WriteFile(negative, []byte(`{"defaultWait": -1}`), 0644))
	_, err = LoadConfig(negative)
	assert.Error(t, err)
}

func TestFindAndLoadConfig_DefaultsWhenAbsent(t *testing.T) {
	cfg, err := FindAndLoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().DefaultWaitMs, cfg.DefaultWaitMs)
}

func TestConfig_Merge(t *testing.T) {
	base := DefaultConfig()

	merged := base.Merge(&Config{
		DefaultWaitMs: 7000,
		Verbose:       BoolPtr(true),
	})
	assert.Equal(t, 7000, merged.DefaultWaitMs)
	assert.True(t, merged.GetVerbose())
	assert.Equal(t, base.PollIntervalMs, merged.PollIntervalMs)

	// Zero-valued overrides leave the base untouched.
	merged = base.Merge(&Config{})
	assert.Equal(t, base.DefaultWaitMs, merged.DefaultWaitMs)
	assert.False(t, merged.GetVerbose())

	assert.Same(t, base, base.Merge(nil))
}
