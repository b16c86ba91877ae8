package pipeline

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	errs "github.com/matzehuels/stagger/pkg/errors"
	"github.com/matzehuels/stagger/pkg/items"
	"github.com/matzehuels/stagger/pkg/lanes"
	"github.com/matzehuels/stagger/pkg/layout"
	"github.com/matzehuels/stagger/pkg/render"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, frames []layout.Frame, ds *items.Dataset, opts Options) (map[string][]byte, error) {
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}

	renderOpts := []render.Option{render.WithScale(opts.Scale)}
	if o, err := lanes.ParseOrientation(opts.Orientation); err == nil && opts.Lanes > 0 {
		renderOpts = append(renderOpts, render.WithLanes(o, opts.Lanes, opts.LaneSize))
	}
	if opts.Labels && ds != nil {
		renderOpts = append(renderOpts, render.WithLabels(ds.Label))
	}

	var mu sync.Mutex
	artifacts := make(map[string][]byte, len(opts.Formats))
	g, ctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			data, err := renderFormat(ctx, format, frames, renderOpts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

// renderFormat produces one artifact. Sinks only read frames, so formats
// render concurrently.
func renderFormat(ctx context.Context, format string, frames []layout.Frame, opts []render.Option) ([]byte, error) {
	switch format {
	case FormatSVG:
		return render.RenderSVG(frames, opts...), nil
	case FormatPNG:
		return render.RenderPNG(frames, opts...)
	case FormatJSON:
		return render.RenderJSON(frames, opts...)
	case FormatDOT:
		return []byte(render.ToDOT(frames, opts...)), nil
	case FormatLane:
		return render.RenderGraphSVG(ctx, frames, opts...)
	}
	return nil, errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q", format)
}
