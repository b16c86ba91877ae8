package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stagger/pkg/pipeline"
	"github.com/matzehuels/stagger/pkg/snapshot"
)

// snapshotCommand creates the snapshot command group.
func (c *CLI) snapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export, import and inspect placement snapshots",
		Long: `Export, import and inspect placement snapshots.

A snapshot holds the lane and size recorded for every placed item, together
with the lane configuration it was computed under. Importing one into the
cache lets later runs skip measuring those items.`,
	}

	cmd.AddCommand(c.snapshotExportCommand())
	cmd.AddCommand(c.snapshotImportCommand())
	cmd.AddCommand(c.snapshotInspectCommand())

	return cmd
}

// snapshotExportCommand creates the "snapshot export" subcommand.
func (c *CLI) snapshotExportCommand() *cobra.Command {
	var (
		engine  engineFlags
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "export [items.json|items.toml]",
		Short: "Lay out a dataset and write its snapshot",
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

			runner, err := c.newRunner(ctx, cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			popts := pipeline.FromConfig(cfg)
			popts.Formats = []string{pipeline.FormatJSON}
			popts.Logger = c.Logger

			result, err := c.execute(ctx, runner, ds, popts, "Computing layout...")
			if err != nil {
				return err
			}
			if result.Snapshot == nil {
				printWarning("Dataset is empty, nothing to export")
				return nil
			}

			if output == "" {
				output = derivePath(args[0], ".snapshot.json")
			}
			if err := snapshot.Export(result.Snapshot, output); err != nil {
				return err
			}
			printSuccess("Exported %d entries", len(result.Snapshot.Entries))
			printFile(output)
			return nil
		},
	}

	engine.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.snapshot.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable snapshot caching")

	return cmd
}

// snapshotImportCommand creates the "snapshot import" subcommand. The engine
// configuration is taken from the snapshot header.
func (c *CLI) snapshotImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import [snapshot.json] [items.json|items.toml]",
		Short: "Store a snapshot in the cache for a dataset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prog := newProgress(c.Logger)
			snap, err := snapshot.Import(args[0])
			if err != nil {
				return err
			}
			ds, err := loadItems(args[1])
			if err != nil {
				return err
			}

			cfg, err := c.loadConfig(cmd, engineFlags{})
			if err != nil {
				return err
			}
			cfg.Lanes = snap.Lanes
			cfg.LaneSize = snap.LaneSize
			cfg.Orientation = snap.Orientation
			cfg.Strategy = snap.Strategy

			runner, err := c.newRunner(ctx, cfg, false)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			popts := pipeline.FromConfig(cfg)
			popts.Logger = c.Logger
			e, err := runner.NewEngine(ds, popts)
			if err != nil {
				return err
			}
			n, err := snap.Restore(e)
			if err != nil {
				return err
			}
			if _, err := runner.Store().Save(ctx, ds.Hash(), e); err != nil {
				return err
			}

			prog.done("Imported snapshot", "dataset", ds.Hash(), "entries", n)
			printSuccess("Imported %d of %d entries", n, len(snap.Entries))
			printDetail("Dataset: %s", ds.Hash())
			return nil
		},
	}
}

// snapshotInspectCommand creates the "snapshot inspect" subcommand.
func (c *CLI) snapshotInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [snapshot.json]",
		Short: "Print a snapshot's header and lane usage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := snapshot.Import(args[0])
			if err != nil {
				return err
			}
			printSnapshot(snap)
			return nil
		},
	}
}

// printSnapshot prints the header of snap and the number of entries per lane.
func printSnapshot(snap *snapshot.Snapshot) {
	fmt.Println(StyleTitle.Render("Snapshot"))
	printKeyValue("ID", snap.ID)
	printKeyValue("Created", snap.CreatedAt.Format("2006-01-02 15:04:05"))
	printKeyValue("Lanes", strconv.Itoa(snap.Lanes))
	printKeyValue("Lane size", strconv.Itoa(snap.LaneSize))
	printKeyValue("Orientation", snap.Orientation)
	printKeyValue("Strategy", snap.Strategy)
	printKeyValue("Entries", strconv.Itoa(len(snap.Entries)))

	perLane := make(map[int]int)
	for _, r := range snap.Entries {
		perLane[r.Lane]++
	}
	lanes := make([]int, 0, len(perLane))
	for lane := range perLane {
		lanes = append(lanes, lane)
	}
	sort.Ints(lanes)

	parts := make([]string, 0, len(lanes))
	for _, lane := range lanes {
		parts = append(parts, fmt.Sprintf("%d:%s", lane, StyleNumber.Render(strconv.Itoa(perLane[lane]))))
	}
	if len(parts) > 0 {
		printKeyValue("Per lane", strings.Join(parts, " "))
	}
}
