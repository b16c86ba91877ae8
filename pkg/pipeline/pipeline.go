// Package pipeline runs the restore → layout → save → render flow shared by
// the CLI commands.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Restore: load the entry snapshot stored for the dataset, if any
//  2. Layout: replay to the requested position and place items from there
//  3. Render: produce artifacts (SVG, PNG, JSON, DOT) from the placed frames
//
// After the layout stage the engine's entries are saved back, so the next
// run over the same dataset and lane configuration measures nothing it has
// already seen.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, dataset, pipeline.Options{
//	    Lanes:   3,
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stagger/pkg/config"
	errs "github.com/matzehuels/stagger/pkg/errors"
	"github.com/matzehuels/stagger/pkg/layout"
	"github.com/matzehuels/stagger/pkg/observability"
	"github.com/matzehuels/stagger/pkg/snapshot"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
	FormatDOT  = "dot"   // Graphviz source of the lane chains
	FormatLane = "lanes" // lane chains laid out by Graphviz, as SVG
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatLane: true,
}

// Extension returns the file extension, with leading dot, for format.
func Extension(format string) string {
	if format == FormatLane {
		return ".lanes.svg"
	}
	return "." + format
}

// DefaultScale is the PNG scale factor.
const DefaultScale = 2.0

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization.
type Options struct {
	// Engine options
	Lanes       int    `json:"lanes,omitempty"`
	LaneSize    int    `json:"lane_size,omitempty"`
	Orientation string `json:"orientation,omitempty"`
	Strategy    string `json:"strategy,omitempty"`

	// Layout options
	Position int  `json:"position,omitempty"`
	Offset   int  `json:"offset,omitempty"`
	Count    int  `json:"count,omitempty"`   // items to place; 0 places through the end
	Refresh  bool `json:"refresh,omitempty"` // ignore the stored snapshot

	// Render options
	Formats []string `json:"formats,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger               `json:"-"`
	Hooks  observability.LayoutHooks `json:"-"` // engine hooks; nil uses the registered ones

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// FromConfig returns options carrying the engine settings of cfg.
func FromConfig(cfg config.Config) Options {
	return Options{
		Lanes:       cfg.Lanes,
		LaneSize:    cfg.LaneSize,
		Orientation: cfg.Orientation,
		Strategy:    cfg.Strategy,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Frames are the placed items, in position order.
	Frames []layout.Frame

	// DatasetHash is the content hash of the dataset.
	DatasetHash string

	// Snapshot holds the engine's entries after layout. Nil for an empty
	// dataset.
	Snapshot *snapshot.Snapshot

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks snapshot reuse.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Items      int
	Placed     int
	Measured   int // items sent to the measurement collaborator
	Cached     int // items served from cached entries
	Restored   int // entries loaded from the stored snapshot
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks snapshot reuse.
type CacheInfo struct {
	SnapshotHit bool // Whether a stored snapshot was restored
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, json, dot, lanes)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks every field and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	cfg := o.engineConfig()
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.Lanes, o.LaneSize = cfg.Lanes, cfg.LaneSize
	o.Orientation, o.Strategy = cfg.Orientation, cfg.Strategy

	if o.Position < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "position must be non-negative, got %d", o.Position)
	}
	if o.Count < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "count must be non-negative, got %d", o.Count)
	}

	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	o.validated = true
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// EngineOptions converts the engine settings to layout options.
func (o *Options) EngineOptions() ([]layout.Option, error) {
	cfg := o.engineConfig()
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, fmt.Errorf("engine options: %w", err)
	}
	return opts, nil
}

func (o *Options) engineConfig() config.Config {
	return config.Config{
		Lanes:       o.Lanes,
		LaneSize:    o.LaneSize,
		Orientation: o.Orientation,
		Strategy:    o.Strategy,
		Cache:       config.CacheConfig{Backend: config.BackendNone},
	}
}
