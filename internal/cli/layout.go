package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stagger/pkg/items"
	"github.com/matzehuels/stagger/pkg/pipeline"
)

// layoutOpts holds the command-line flags for the layout command.
type layoutOpts struct {
	engine   engineFlags
	output   string // output file path (default: <input>.layout.json)
	position int    // first position to place
	offset   int    // main-axis offset the first item starts at
	count    int    // items to place (0 = through the end)
	noCache  bool   // skip snapshot restore and save
	refresh  bool   // ignore the stored snapshot but save a new one
}

// layoutCommand creates the layout command for computing frames.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout [items.json|items.toml]",
		Short: "Compute item frames for a dataset",
		Long: `Compute item frames for a dataset.

The layout command replays placement up to --position, aligns that item at
--offset, and places --count items from there. Frames are written as JSON.

Placements are cached per dataset and lane configuration, so a second run
only measures items it has not seen before.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeItemFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, args[0], opts)
		},
	}

	opts.engine.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.layout.json, - for stdout)")
	cmd.Flags().IntVarP(&opts.position, "position", "p", 0, "first item position to place")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "main-axis offset of the first placed item")
	cmd.Flags().IntVarP(&opts.count, "count", "c", 0, "number of items to place (0 = all remaining)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable snapshot caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore the stored snapshot")

	return cmd
}

// runLayout loads the dataset, computes frames, and writes output.
func (c *CLI) runLayout(cmd *cobra.Command, input string, opts layoutOpts) error {
	ctx := cmd.Context()
	cfg, err := c.loadConfig(cmd, opts.engine)
	if err != nil {
		return err
	}

	ds, err := loadItems(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	popts := pipeline.FromConfig(cfg)
	popts.Position = opts.position
	popts.Offset = opts.offset
	popts.Count = opts.count
	popts.Refresh = opts.refresh
	popts.Formats = []string{pipeline.FormatJSON}
	popts.Labels = true
	popts.Logger = c.Logger

	result, err := c.execute(ctx, runner, ds, popts, "Computing layout...")
	if err != nil {
		return err
	}

	outputPath := opts.output
	if outputPath == "" {
		outputPath = derivePath(input, ".layout.json")
	}
	if err := writeOutput(outputPath, result.Artifacts[pipeline.FormatJSON]); err != nil {
		return err
	}

	if outputPath != "-" {
		printSuccess("Layout complete")
		printFile(outputPath)
		printLayoutStats(result.Stats, result.CacheInfo.SnapshotHit)
		printNewline()
		printNextStep("Render", "stagger render "+input)
	}
	return nil
}

// execute runs the pipeline behind a spinner.
func (c *CLI) execute(ctx context.Context, runner *pipeline.Runner, ds *items.Dataset, popts pipeline.Options, message string) (*pipeline.Result, error) {
	spinner := newSpinner(ctx, message, ds.Count())
	popts.Hooks = spinner
	spinner.Start()

	result, err := runner.Execute(ctx, ds, popts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return nil, err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return result, nil
}

// derivePath replaces the extension of input with suffix.
func derivePath(input, suffix string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + suffix
}

// writeOutput writes data to path, or stdout for "-".
func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", path, err)
	}
	return nil
}
