package layout

import (
	"github.com/matzehuels/stagger/pkg/entry"
	"github.com/matzehuels/stagger/pkg/lanes"
)

// Grid is the uniform grid strategy: item i always goes to lane i mod n, so
// no replay is needed to find where an item lives.
type Grid struct{}

// Name implements Strategy.
func (Grid) Name() string { return StrategyGrid }

// LaneForPosition implements Strategy.
func (Grid) LaneForPosition(e *Engine, position int, _ lanes.Direction) lanes.LaneID {
	return lanes.Lane(position % e.lanes.Count())
}

// MoveToPosition puts every lane at offset. When the target is not the first
// item of its row, the lanes before it are pushed past the target's main-axis
// size, so the items that follow in those lanes start on the next row.
func (g Grid) MoveToPosition(e *Engine, position, offset int) error {
	set := e.lanes
	set.ResetTo(offset)

	lane, _ := g.LaneForPosition(e, position, lanes.End).Index()
	if lane == 0 {
		return nil
	}

	ent, ok, err := e.Lookup(position)
	if err != nil {
		return err
	}
	if !ok {
		size, err := e.Measure(position)
		if err != nil {
			return err
		}
		ent = entry.Entry{Lane: lane, Width: size.Width, Height: size.Height}
		e.entries.Set(position, ent)
	}

	dim := set.Orientation().MainSize(ent.Width, ent.Height)
	for i := lane - 1; i >= 0; i-- {
		set.OffsetLane(i, dim)
	}
	return nil
}
