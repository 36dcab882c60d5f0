// Package engine runs the display: a UDP listener feeding a bounded inbox,
// and a fixed-interval apply loop that coalesces pending updates and pushes
// them through the grid to the render surface. The listener goroutine and
// the tick loop are the only two concurrency domains; the inbox channel is
// the only thing they share.
package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/patchgrid/patchgrid/pkg/grid"
)

// ConfigFileName is looked up in the working directory and its parents.
const ConfigFileName = "patchgrid.toml"

// Config is the engine configuration. Zero fields fall back to the
// reference deployment's values.
type Config struct {
	// Addr is the UDP listen address.
	Addr string `toml:"addr"`

	// TickMillis is the apply-loop interval in milliseconds.
	TickMillis int `toml:"tick_ms"`

	// MaxAppliesPerTick bounds how many pending updates one tick may push
	// to the surface. Excess updates carry over to the next tick.
	MaxAppliesPerTick int `toml:"max_applies_per_tick"`

	// QueueSize bounds the listener-to-scheduler inbox. When full, new
	// datagrams are counted and discarded.
	QueueSize int `toml:"queue_size"`

	// HeartbeatSeconds is how long the display may go without any
	// datagram before the stats log flags it as silent.
	HeartbeatSeconds int `toml:"heartbeat_s"`

	// RecvBufferBytes is the OS receive buffer requested for the socket.
	// Best effort; failures are logged and ignored.
	RecvBufferBytes int `toml:"recv_buffer_bytes"`

	// Columns is the per-row column count of the grid.
	Columns []int `toml:"columns"`
}

// DefaultConfig mirrors the reference deployment: port 9001 on all
// interfaces, 10 ms ticks, 512 applies per tick, and the 11-row layout.
func DefaultConfig() Config {
	return Config{
		Addr:              ":9001",
		TickMillis:        10,
		MaxAppliesPerTick: 512,
		QueueSize:         65536,
		HeartbeatSeconds:  30,
		RecvBufferBytes:   1 << 20,
		Columns:           grid.ReferenceLayout().Columns,
	}
}

// TickInterval returns the apply-loop period.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickMillis) * time.Millisecond
}

// HeartbeatTimeout returns the silence threshold.
func (c Config) HeartbeatTimeout() time.Duration {
	return time.Duration(c.HeartbeatSeconds) * time.Second
}

// Layout returns the grid geometry.
func (c Config) Layout() grid.Layout {
	return grid.Layout{Columns: c.Columns}
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.TickMillis <= 0 {
		return fmt.Errorf("tick_ms must be positive, got %d", c.TickMillis)
	}
	if c.MaxAppliesPerTick <= 0 {
		return fmt.Errorf("max_applies_per_tick must be positive, got %d", c.MaxAppliesPerTick)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be positive, got %d", c.QueueSize)
	}
	if err := c.Layout().Validate(); err != nil {
		return fmt.Errorf("invalid layout: %w", err)
	}
	return nil
}

// LoadConfig reads a TOML config file, overlaying it on the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FindConfig searches for patchgrid.toml starting from dir and walking up.
// Returns the path and parsed config, or ("", DefaultConfig(), nil) when no
// file exists anywhere on the path.
func FindConfig(dir string) (string, Config, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", Config{}, err
	}
	for {
		path := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(path); err == nil {
			cfg, err := LoadConfig(path)
			if err != nil {
				return "", Config{}, err
			}
			return path, cfg, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", DefaultConfig(), nil
		}
		dir = parent
	}
}
