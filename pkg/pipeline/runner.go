package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stagger/pkg/cache"
	"github.com/matzehuels/stagger/pkg/items"
	"github.com/matzehuels/stagger/pkg/layout"
	"github.com/matzehuels/stagger/pkg/snapshot"
)

// Runner encapsulates pipeline execution with snapshot caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	store *snapshot.Store
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		store:  snapshot.NewStore(c, keyer, logger),
	}
}

// Execute runs the complete restore → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, ds *items.Dataset, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result, err := r.Layout(ctx, ds, opts)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	artifacts, err := Render(ctx, result.Frames, ds, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Layout restores the dataset's snapshot, places the requested items and
// saves the grown snapshot. The returned result has no artifacts.
func (r *Runner) Layout(ctx context.Context, ds *items.Dataset, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	e, err := r.NewEngine(ds, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{DatasetHash: ds.Hash()}
	result.Stats.Items = ds.Count()

	if !opts.Refresh {
		n, hit, err := r.store.Load(ctx, result.DatasetHash, e)
		if err != nil {
			// A broken cache backend must not block layout.
			opts.Logger.Warn("snapshot unavailable", "err", err)
		}
		result.CacheInfo.SnapshotHit = hit
		result.Stats.Restored = n
	}

	if ds.Count() == 0 {
		return result, nil
	}

	count := opts.Count
	if count == 0 {
		count = ds.Count() - opts.Position
	}

	layoutStart := time.Now()
	frames, err := e.Layout(opts.Position, opts.Offset, count)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	stats := e.Stats()
	result.Frames = frames
	result.Stats.Placed = len(frames)
	result.Stats.Measured = stats.Measured
	result.Stats.Cached = stats.Cached
	result.Stats.LayoutTime = time.Since(layoutStart)

	opts.Logger.Info("computed layout",
		"items", ds.Count(),
		"placed", len(frames),
		"measured", stats.Measured,
		"cached", stats.Cached,
		"duration", result.Stats.LayoutTime)

	if stats.Measured > 0 || !result.CacheInfo.SnapshotHit {
		snap, err := r.store.Save(ctx, result.DatasetHash, e)
		if err != nil {
			opts.Logger.Warn("snapshot not saved", "err", err)
			snap = snapshot.Capture(e)
		}
		result.Snapshot = snap
	} else {
		result.Snapshot = snapshot.Capture(e)
	}

	return result, nil
}

// NewEngine builds an engine over ds configured by opts, with the runner's
// logger.
func (r *Runner) NewEngine(ds *items.Dataset, opts Options) (*layout.Engine, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	engineOpts, err := opts.EngineOptions()
	if err != nil {
		return nil, err
	}
	engineOpts = append(engineOpts, layout.WithLogger(r.Logger))
	if opts.Hooks != nil {
		engineOpts = append(engineOpts, layout.WithHooks(opts.Hooks))
	}
	return layout.New(ds, engineOpts...)
}

// Store returns the snapshot store backing the runner.
func (r *Runner) Store() *snapshot.Store { return r.store }

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
