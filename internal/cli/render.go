package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stagger/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	engine  engineFlags
	output  string   // output file path (or base path for multiple formats)
	formats []string // output formats: "svg", "png", "json"
	labels  bool     // draw item ids inside frames
	scale   float64  // PNG scale factor
	noCache bool     // skip snapshot restore and save
}

// renderCommand creates the render command for drawing a full layout.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{labels: true, scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render [items.json|items.toml]",
		Short: "Lay out every item and render the result",
		Long: `Lay out every item of a dataset and render the frames.

The format is taken from --format, or from the extension of --output, and
defaults to SVG. Several formats can be given comma-separated, in which case
--output is used as the base path.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeItemFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr, opts.output)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], opts)
		},
	}

	opts.engine.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, json, dot, lanes (comma-separated)")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	cmd.Flags().BoolVar(&opts.labels, "labels", opts.labels, "draw item ids inside frames")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable snapshot caching")

	return cmd
}

// runRender lays out the whole dataset and writes one file per format.
func (c *CLI) runRender(cmd *cobra.Command, input string, opts renderOpts) error {
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
	popts.Formats = opts.formats
	popts.Labels = opts.labels
	popts.Scale = opts.scale
	popts.Logger = c.Logger

	result, err := c.execute(ctx, runner, ds, popts, fmt.Sprintf("Rendering %d items...", ds.Count()))
	if err != nil {
		return err
	}

	printSuccess("Rendered %d items", result.Stats.Placed)
	for _, format := range opts.formats {
		path := outputPath(input, opts.output, format, len(opts.formats) > 1)
		if err := writeOutput(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	printLayoutStats(result.Stats, result.CacheInfo.SnapshotHit)
	return nil
}

// parseFormats parses the --format flag into a slice of output formats.
// Without a flag the extension of output decides, then SVG.
func parseFormats(s, output string) []string {
	if s != "" {
		return strings.Split(s, ",")
	}
	lower := strings.ToLower(output)
	if strings.HasSuffix(lower, pipeline.Extension(pipeline.FormatLane)) {
		return []string{pipeline.FormatLane}
	}
	switch ext := strings.TrimPrefix(filepath.Ext(lower), "."); ext {
	case pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatJSON, pipeline.FormatDOT:
		return []string{ext}
	}
	return []string{pipeline.FormatSVG}
}

// outputPath picks the file for one format. With several formats, or no
// --output, the format is appended as extension to the base path.
func outputPath(input, output, format string, multi bool) string {
	if output == "" {
		return derivePath(input, pipeline.Extension(format))
	}
	if multi {
		return derivePath(output, pipeline.Extension(format))
	}
	return output
}
