package engine

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
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":9001", cfg.Addr)
	assert.Equal(t, 10*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, 512, cfg.MaxAppliesPerTick)
	assert.Equal(t, 30*time.Second, cfg.HeartbeatTimeout())
	assert.Equal(t, 11, cfg.Layout().Rows())
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`
addr = "127.0.0.1:9999"
tick_ms = 20
columns = [2, 2]
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.Addr)
	assert.Equal(t, 20*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, []int{2, 2}, cfg.Columns)
	// Untouched keys keep their defaults.
	assert.Equal(t, 512, cfg.MaxAppliesPerTick)
	assert.Equal(t, 65536, cfg.QueueSize)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("tick_ms = -1\n"), 0o644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "tick_ms")
}

func TestConfigValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"zero tick", func(c *Config) { c.TickMillis = 0 }},
		{"zero apply cap", func(c *Config) { c.MaxAppliesPerTick = 0 }},
		{"zero queue", func(c *Config) { c.QueueSize = 0 }},
		{"no columns", func(c *Config) { c.Columns = nil }},
		{"zero-width row", func(c *Config) { c.Columns = []int{4, 0} }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	want := filepath.Join(root, ConfigFileName)
	require.NoError(t, os.WriteFile(want, []byte(`addr = ":7000"`+"\n"), 0o644))

	path, cfg, err := FindConfig(nested)
	require.NoError(t, err)
	assert.Equal(t, want, path)
	assert.Equal(t, ":7000", cfg.Addr)
}

func TestFindConfigFallsBackToDefaults(t *testing.T) {
	path, cfg, err := FindConfig(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, DefaultConfig().Addr, cfg.Addr)
}
