package layout

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/stagger/pkg/entry"
	"github.com/matzehuels/stagger/pkg/lanes"
	"github.com/matzehuels/stagger/pkg/observability"
)

const (
	// DefaultLanes matches a two-column masonry grid.
	DefaultLanes = 2

	// DefaultLaneSize is the cross-axis size of one lane when none is set.
	DefaultLaneSize = 100
)

// Option configures an Engine.
type Option func(*settings)

type settings struct {
	laneCount   int
	laneSize    int
	orientation lanes.Orientation
	strategy    Strategy
	entries     *entry.Cache
	logger      *log.Logger
	hooks       observability.LayoutHooks
}

func defaultSettings() settings {
	return settings{
		laneCount:   DefaultLanes,
		laneSize:    DefaultLaneSize,
		orientation: lanes.Vertical,
		strategy:    Staggered{},
	}
}

// WithLanes sets the number of lanes. It must be positive.
func WithLanes(n int) Option { return func(s *settings) { s.laneCount = n } }

// WithLaneSize sets the cross-axis size of each lane.
func WithLaneSize(size int) Option { return func(s *settings) { s.laneSize = size } }

// WithOrientation selects column (Vertical) or row (Horizontal) lanes.
func WithOrientation(o lanes.Orientation) Option { return func(s *settings) { s.orientation = o } }

// WithStrategy selects the placement strategy (default [Staggered]).
func WithStrategy(st Strategy) Option {
	return func(s *settings) {
		if st != nil {
			s.strategy = st
		}
	}
}

// WithEntries makes the engine use an existing entry cache, for example one
// restored from a snapshot. The engine takes ownership of it.
func WithEntries(c *entry.Cache) Option { return func(s *settings) { s.entries = c } }

// WithLogger sets the logger (default log.Default()).
func WithLogger(l *log.Logger) Option { return func(s *settings) { s.logger = l } }

// WithHooks overrides the globally registered layout hooks.
func WithHooks(h observability.LayoutHooks) Option { return func(s *settings) { s.hooks = h } }
