package layout

import (
	errs "github.com/matzehuels/stagger/pkg/errors"
	"github.com/matzehuels/stagger/pkg/lanes"
)

// Staggered is the masonry strategy: every item goes to the lane with the
// least extent at the time it is first placed, and that choice is memoized.
type Staggered struct{}

// Name implements Strategy.
func (Staggered) Name() string { return StrategyStaggered }

// LaneForPosition returns the cached lane of position, or the lane FindLane
// would pick right now. A cached lane the engine does not have yields NoLane.
func (Staggered) LaneForPosition(e *Engine, position int, dir lanes.Direction) lanes.LaneID {
	if ent, ok := e.entries.Get(position); ok {
		if ent.Lane < 0 || ent.Lane >= e.lanes.Count() {
			return lanes.NoLane
		}
		return lanes.Lane(ent.Lane)
	}
	return e.lanes.FindLane(dir)
}

// MoveToPosition replays positions 0 through position-1 toward End from a
// zero origin, then shifts all lanes so the target's lane ends at offset.
// Replay always runs forward: lane cursors only ever advance toward End while
// rebuilding.
func (s Staggered) MoveToPosition(e *Engine, position, offset int) error {
	set := e.lanes
	set.ResetTo(0)

	for i := 0; i < position; i++ {
		ent, ok, err := e.Lookup(i)
		if err != nil {
			return err
		}

		var frame lanes.Rect
		if ok {
			frame = set.ChildFrame(ent.Width, ent.Height, ent.Lane, lanes.End)
		} else {
			size, err := e.Measure(i)
			if err != nil {
				return err
			}
			lane, _ := set.FindLane(lanes.End).Index()
			frame = set.ChildFrame(size.Width, size.Height, lane, lanes.End)
			ent = e.CacheItemEntry(frame, i, lane)
		}

		set.PushChildFrame(frame, ent.Lane, lanes.End)
	}

	set.Reset(lanes.End)
	lane, ok := s.LaneForPosition(e, position, lanes.End).Index()
	if !ok {
		return errs.New(errs.ErrCodeInvalidSnapshot,
			"position %d cached in a lane the engine does not have (%d lanes)", position, set.Count())
	}
	bounds := set.Lane(lane)
	set.Offset(offset - set.Orientation().MainEnd(bounds))
	return nil
}
