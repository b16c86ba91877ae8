package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stagger/pkg/buildinfo"
	"github.com/matzehuels/stagger/pkg/cache"
	"github.com/matzehuels/stagger/pkg/config"
	"github.com/matzehuels/stagger/pkg/items"
	"github.com/matzehuels/stagger/pkg/observability"
	"github.com/matzehuels/stagger/pkg/observability/prom"
	"github.com/matzehuels/stagger/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "stagger"

	// configFileName is looked up in the user config directory when --config
	// is not given.
	configFileName = "config.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath  string
	metricsFile string
	registry    *prometheus.Registry
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Stagger computes staggered grid layouts",
		Long: `Stagger places variable-size items into a fixed number of lanes, always
extending the shortest lane, and can jump to any item position with the same
result it would have reached by scrolling there.

Item placements are cached per dataset, so later runs only measure new items.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setupMetrics,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.writeMetrics()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/stagger/config.toml if present)")
	root.PersistentFlags().StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Metrics
// =============================================================================

// setupMetrics registers Prometheus hooks when --metrics-file is set.
func (c *CLI) setupMetrics(cmd *cobra.Command, args []string) error {
	if c.metricsFile != "" {
		c.metricsRegistry()
	}
	return nil
}

// metricsRegistry returns the CLI's registry, creating it and registering
// the Prometheus hooks on first use.
func (c *CLI) metricsRegistry() *prometheus.Registry {
	if c.registry == nil {
		c.registry = prometheus.NewRegistry()
		adapter := prom.New(c.registry, appName, "", nil)
		observability.SetLayoutHooks(adapter)
		observability.SetCacheHooks(adapter)
	}
	return c.registry
}

// writeMetrics dumps the registry in the text exposition format.
func (c *CLI) writeMetrics() error {
	if c.registry == nil || c.metricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(c.metricsFile, c.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	c.Logger.Debug("wrote metrics", "file", c.metricsFile)
	return nil
}

// =============================================================================
// Configuration
// =============================================================================

// engineFlags are the engine settings every layout-producing command accepts.
// Flags the user sets explicitly override the config file.
type engineFlags struct {
	lanes       int
	laneSize    int
	orientation string
	strategy    string
}

func (f *engineFlags) register(cmd *cobra.Command) {
	def := config.Default()
	cmd.Flags().IntVarP(&f.lanes, "lanes", "n", def.Lanes, "number of lanes")
	cmd.Flags().IntVar(&f.laneSize, "lane-size", def.LaneSize, "cross-axis size of each lane")
	cmd.Flags().StringVar(&f.orientation, "orientation", def.Orientation, "lane orientation: vertical, horizontal")
	cmd.Flags().StringVar(&f.strategy, "strategy", def.Strategy, "placement strategy: staggered, grid")
	registerEngineCompletions(cmd)
}

// loadConfig reads the config file and applies explicitly set engine flags.
func (c *CLI) loadConfig(cmd *cobra.Command, f engineFlags) (config.Config, error) {
	cfg := config.Default()
	path := c.configPath
	if path == "" {
		if p, err := defaultConfigPath(); err == nil {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
		c.Logger.Debug("loaded config", "path", path)
	}

	flags := cmd.Flags()
	if flags.Changed("lanes") {
		cfg.Lanes = f.lanes
	}
	if flags.Changed("lane-size") {
		cfg.LaneSize = f.laneSize
	}
	if flags.Changed("orientation") {
		cfg.Orientation = f.orientation
	}
	if flags.Changed("strategy") {
		cfg.Strategy = f.strategy
	}

	// Re-validate after overrides.
	out := config.Config{
		Lanes:       cfg.Lanes,
		LaneSize:    cfg.LaneSize,
		Orientation: cfg.Orientation,
		Strategy:    cfg.Strategy,
		Cache:       cfg.Cache,
		Server:      cfg.Server,
	}
	if err := out.ValidateAndSetDefaults(); err != nil {
		return config.Config{}, err
	}
	return out, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		dir = ""
	}
	store, err := cfg.OpenCache(ctx, dir)
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return store, nil
}

// loadItems reads the dataset at path.
func loadItems(path string) (*items.Dataset, error) {
	ds, err := items.Import(path)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	return ds, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/stagger/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// defaultConfigPath returns ~/.config/stagger/config.toml (XDG aware).
func defaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, configFileName), nil
}
