package layout

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stagger/pkg/entry"
	errs "github.com/matzehuels/stagger/pkg/errors"
	"github.com/matzehuels/stagger/pkg/lanes"
	"github.com/matzehuels/stagger/pkg/observability"
)

// Frame is the placement of one item for the current layout pass.
type Frame struct {
	Position int
	Lane     int
	Rect     lanes.Rect
}

// Stats counts the work done since the last MoveToPosition.
type Stats struct {
	Target   int
	Measured int           // positions sent to Source.Measure
	Cached   int           // positions served from the entry cache
	Duration time.Duration // time spent in MoveToPosition
}

// Engine lays out a Source into lanes using a Strategy. It owns its lane set
// and entry cache; nothing else may mutate them.
type Engine struct {
	src      Source
	strategy Strategy
	lanes    *lanes.LaneSet
	entries  *entry.Cache
	logger   *log.Logger
	hooks    observability.LayoutHooks
	stats    Stats
}

// New creates an engine for src. An invalid lane configuration is reported
// here, never later.
func New(src Source, opts ...Option) (*Engine, error) {
	if src == nil {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "layout source is nil")
	}

	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	set, err := lanes.New(s.orientation, s.laneCount, s.laneSize)
	if err != nil {
		return nil, err
	}
	if s.entries == nil {
		s.entries = entry.New()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.hooks == nil {
		s.hooks = observability.Layout()
	}

	return &Engine{
		src:      src,
		strategy: s.strategy,
		lanes:    set,
		entries:  s.entries,
		logger:   s.logger,
		hooks:    s.hooks,
	}, nil
}

// Lanes returns the engine's lane set. Callers may read it; mutating it
// outside a Strategy breaks the replay invariants.
func (e *Engine) Lanes() *lanes.LaneSet { return e.lanes }

// Entries returns the engine's entry cache.
func (e *Engine) Entries() *entry.Cache { return e.entries }

// Strategy returns the placement strategy.
func (e *Engine) Strategy() Strategy { return e.strategy }

// Source returns the dataset being laid out.
func (e *Engine) Source() Source { return e.src }

// Stats returns the counters of the last move and the placements after it.
func (e *Engine) Stats() Stats { return e.stats }

// LaneForPosition returns the lane position is, or would be, placed in when
// extending toward dir. For positions without an entry the answer is a
// prediction: nothing is measured or recorded.
func (e *Engine) LaneForPosition(position int, dir lanes.Direction) lanes.LaneID {
	return e.strategy.LaneForPosition(e, position, dir)
}

// MoveToPosition rebuilds lane state so that the item at position starts at
// offset along the main axis. Positions outside [0, Count) are an error.
func (e *Engine) MoveToPosition(position, offset int) error {
	if err := errs.ValidatePosition(position, e.src.Count()); err != nil {
		return err
	}

	start := time.Now()
	e.stats = Stats{Target: position}
	err := e.strategy.MoveToPosition(e, position, offset)
	e.stats.Duration = time.Since(start)

	e.hooks.OnReplay(e.strategy.Name(), position, e.stats.Measured, e.stats.Cached, e.stats.Duration, err)
	if err != nil {
		e.logger.Warn("layout replay aborted", "target", position, "measured", e.stats.Measured, "err", err)
		return fmt.Errorf("move to position %d: %w", position, err)
	}

	e.logger.Debug("layout replayed",
		"strategy", e.strategy.Name(),
		"target", position,
		"offset", offset,
		"measured", e.stats.Measured,
		"cached", e.stats.Cached,
		"duration", e.stats.Duration)
	return nil
}

// CacheItemEntry records the placement of position in lane with the size of
// frame, unless position already has an entry, and returns the entry in
// effect.
func (e *Engine) CacheItemEntry(frame lanes.Rect, position, lane int) entry.Entry {
	return e.entries.CreateOrGet(position, lane, frame)
}

// Place lays out the item at position in the lane the strategy picks for dir,
// commits it to that lane and returns its frame. Hosts call it after
// MoveToPosition for every item they bring into view, in order.
func (e *Engine) Place(position int, dir lanes.Direction) (Frame, error) {
	if err := errs.ValidatePosition(position, e.src.Count()); err != nil {
		return Frame{}, err
	}

	ent, cached, err := e.Lookup(position)
	if err != nil {
		return Frame{}, err
	}
	lane, ok := e.LaneForPosition(position, dir).Index()
	if !ok {
		return Frame{}, errs.New(errs.ErrCodeInternal, "no lane for position %d", position)
	}
	var frame lanes.Rect
	if cached {
		frame = e.lanes.ChildFrame(ent.Width, ent.Height, lane, dir)
	} else {
		size, err := e.Measure(position)
		if err != nil {
			return Frame{}, err
		}
		frame = e.lanes.ChildFrame(size.Width, size.Height, lane, dir)
		e.CacheItemEntry(frame, position, lane)
	}
	e.lanes.PushChildFrame(frame, lane, dir)

	return Frame{Position: position, Lane: lane, Rect: frame}, nil
}

// Layout moves to position with the given offset and places up to count
// items from there toward the end of the main axis.
func (e *Engine) Layout(position, offset, count int) ([]Frame, error) {
	if err := e.MoveToPosition(position, offset); err != nil {
		return nil, err
	}

	end := min(position+max(count, 0), e.src.Count())
	frames := make([]Frame, 0, end-position)
	for p := position; p < end; p++ {
		f, err := e.Place(p, lanes.End)
		if err != nil {
			return frames, fmt.Errorf("place position %d: %w", p, err)
		}
		frames = append(frames, f)
	}
	return frames, nil
}

// ItemsChanged drops the entries of from and every later position. Call it
// when items are inserted, removed or resized at from.
func (e *Engine) ItemsChanged(from int) {
	n := e.entries.InvalidateFrom(max(from, 0))
	e.logger.Debug("invalidated entries", "from", from, "count", n)
}

// Lookup returns the cached entry for position and counts it as a cache hit.
// An entry whose lane does not exist in this engine (a snapshot taken with
// more lanes, or a corrupt one) is an error rather than a placement.
func (e *Engine) Lookup(position int) (entry.Entry, bool, error) {
	ent, ok := e.entries.Get(position)
	if !ok {
		return entry.Entry{}, false, nil
	}
	if ent.Lane < 0 || ent.Lane >= e.lanes.Count() {
		return entry.Entry{}, false, errs.New(errs.ErrCodeInvalidSnapshot,
			"position %d cached in lane %d, engine has %d lanes", position, ent.Lane, e.lanes.Count())
	}
	e.stats.Cached++
	return ent, true, nil
}

// Measure asks the source for the size of position, counting the call.
func (e *Engine) Measure(position int) (Size, error) {
	start := time.Now()
	size, err := e.src.Measure(position)
	if err == nil {
		err = errs.ValidateSize(size.Width, size.Height)
	}
	e.hooks.OnMeasure(position, time.Since(start), err)
	e.stats.Measured++
	if err != nil {
		return Size{}, errs.Wrap(errs.ErrCodeMeasure, err, "measure position %d", position)
	}
	return size, nil
}
