// Command patchgrid runs the remote display: it listens for UDP control
// messages and renders the instrument grid in the terminal.
//
// Usage:
//
//	# Run with the built-in layout on :9001
//	patchgrid
//
//	# Run headless (no rendering, counters only) with debug logging
//	patchgrid --headless -d
//
//	# Send a test message to a running display
//	patchgrid send "BARVAL 3 1 99"
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/patchgrid/patchgrid/pkg/engine"
	"github.com/patchgrid/patchgrid/pkg/grid"
	"github.com/patchgrid/patchgrid/pkg/termgrid"
)

// Config holds the command line configuration
type Config struct {
	Debug      bool
	Addr       string
	ConfigFile string
	Headless   bool
}

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "patchgrid [flags]",
		Short: "UDP remote display for instrument patches",
		Long: `Patchgrid renders a fixed grid of text cells, bar gauges, and ring
gauges in the terminal, driven by plain-text UDP messages. It is the
display half of a patch-controlled kiosk: the patch sends values, the
grid shows them.`,
		Example: `  # Listen on the default port (:9001)
  patchgrid

  # Listen elsewhere, with a config file
  patchgrid --addr :9100 --config ./patchgrid.toml

  # Soak-test ingestion without rendering
  patchgrid --headless`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	rootCmd.Flags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.Flags().StringVar(&cfg.Addr, "addr", "", "UDP listen address (overrides config)")
	rootCmd.Flags().StringVar(&cfg.ConfigFile, "config", "", "Path to patchgrid.toml")
	rootCmd.Flags().BoolVar(&cfg.Headless, "headless", false, "Run without rendering")

	rootCmd.AddCommand(sendCmd())

	if err := fang.Execute(context.Background(), rootCmd,
		fang.WithVersion("v0.1.0"),
	); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config) error {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	engCfg, err := loadConfig(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var surface grid.Surface = grid.Discard
	if !cfg.Headless {
		term := termgrid.NewProcessTerminal()
		ts := termgrid.New(term, engCfg.Layout())
		if err := ts.Start(); err != nil {
			return fmt.Errorf("starting terminal: %w", err)
		}
		defer ts.Stop()
		go func() {
			<-ts.Done()
			cancel()
		}()
		surface = ts
	}

	eng, err := engine.New(engCfg, surface, logger)
	if err != nil {
		return err
	}
	return eng.Run(ctx)
}

// loadConfig resolves the engine configuration: an explicit --config path,
// otherwise a patchgrid.toml found by walking up from the working directory,
// otherwise the defaults. Flags win over the file.
func loadConfig(cfg Config, logger *slog.Logger) (engine.Config, error) {
	var engCfg engine.Config
	if cfg.ConfigFile != "" {
		loaded, err := engine.LoadConfig(cfg.ConfigFile)
		if err != nil {
			return engine.Config{}, err
		}
		engCfg = loaded
	} else {
		cwd, _ := os.Getwd()
		path, loaded, err := engine.FindConfig(cwd)
		if err != nil {
			return engine.Config{}, err
		}
		if path != "" {
			logger.Debug("loaded config", "path", path)
		}
		engCfg = loaded
	}
	if cfg.Addr != "" {
		engCfg.Addr = cfg.Addr
	}
	return engCfg, nil
}
