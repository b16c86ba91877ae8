package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stagger/pkg/cache"
	"github.com/matzehuels/stagger/pkg/config"
	errs "github.com/matzehuels/stagger/pkg/errors"
	"github.com/matzehuels/stagger/pkg/pipeline"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the snapshot cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheForgetCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached snapshot from the file cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, engineFlags{})
			if err != nil {
				return err
			}
			if cfg.Cache.Backend != config.BackendFile {
				return errs.New(errs.ErrCodeUnsupported, "cache clear only supports the file backend, configured: %s", cfg.Cache.Backend)
			}
			dir, err := fileCacheDir(cfg)
			if err != nil {
				return err
			}

			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			count := 0
			_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
				if err == nil && !d.IsDir() {
					count++
				}
				return nil
			})

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			if err := fc.Clear(); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd, engineFlags{})
			if err != nil {
				return err
			}
			dir, err := fileCacheDir(cfg)
			if err != nil {
				return err
			}
			fmt.Println(dir)
			return nil
		},
	}
}

// cacheForgetCommand creates the "cache forget" subcommand, which drops the
// snapshot of one dataset under one engine configuration.
func (c *CLI) cacheForgetCommand() *cobra.Command {
	var engine engineFlags

	cmd := &cobra.Command{
		Use:   "forget [items.json|items.toml]",
		Short: "Drop the cached snapshot of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig(cmd, engine)
			if err != nil {
				return err
			}
			ds, err := loadItems(args[0])
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, cfg, false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			e, err := runner.NewEngine(ds, pipeline.FromConfig(cfg))
			if err != nil {
				return err
			}
			if err := runner.Store().Delete(ctx, ds.Hash(), e); err != nil {
				return fmt.Errorf("delete snapshot: %w", err)
			}
			printSuccess("Forgot snapshot")
			printDetail("Key: %s", runner.Store().Key(ds.Hash(), e))
			return nil
		},
	}

	engine.register(cmd)
	return cmd
}

// fileCacheDir returns the configured file cache directory, or the XDG
// default.
func fileCacheDir(cfg config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return "", fmt.Errorf("get cache dir: %w", err)
	}
	return dir, nil
}
