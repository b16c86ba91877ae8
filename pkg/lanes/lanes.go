package lanes

import (
	errs "github.com/matzehuels/stagger/pkg/errors"
)

// LaneSet is a fixed-size collection of lanes sharing one orientation.
// The lane count never changes after [New]. A LaneSet is not safe for
// concurrent use.
type LaneSet struct {
	orientation Orientation
	laneSize    int
	lanes       []Rect
}

// New creates count lanes of laneSize cross-axis units each, all with their
// cursors at 0. A non-positive count is a configuration error.
func New(o Orientation, count, laneSize int) (*LaneSet, error) {
	if err := errs.ValidateLaneCount(count); err != nil {
		return nil, err
	}
	if laneSize < 0 {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "lane size must be non-negative, got %d", laneSize)
	}

	s := &LaneSet{
		orientation: o,
		laneSize:    laneSize,
		lanes:       make([]Rect, count),
	}
	for i := range s.lanes {
		cross := i * laneSize
		if o == Vertical {
			s.lanes[i] = Rect{Left: cross, Right: cross + laneSize}
		} else {
			s.lanes[i] = Rect{Top: cross, Bottom: cross + laneSize}
		}
	}
	return s, nil
}

// Count returns the number of lanes.
func (s *LaneSet) Count() int { return len(s.lanes) }

// Orientation returns the orientation the set was created with.
func (s *LaneSet) Orientation() Orientation { return s.orientation }

// LaneSize returns the cross-axis size of each lane.
func (s *LaneSet) LaneSize() int { return s.laneSize }

// ResetTo moves both main-axis edges of every lane to offset.
func (s *LaneSet) ResetTo(offset int) {
	for i := range s.lanes {
		s.setMain(i, offset, offset)
	}
}

// Reset collapses every lane onto the edge facing dir: for End the start edge
// moves to the end edge, for Start the end edge moves to the start edge.
func (s *LaneSet) Reset(dir Direction) {
	for i, r := range s.lanes {
		start, end := s.orientation.MainStart(r), s.orientation.MainEnd(r)
		if dir == End {
			s.setMain(i, end, end)
		} else {
			s.setMain(i, start, start)
		}
	}
}

// FindLane returns the lane the next item placed toward dir should go to:
// the smallest end edge for End, the largest start edge for Start. Ties go to
// the lowest index. It panics on a LaneSet with no lanes, which only a zero
// value can be.
func (s *LaneSet) FindLane(dir Direction) LaneID {
	if len(s.lanes) == 0 {
		panic("lanes: FindLane on empty lane set")
	}

	best := 0
	bestEdge := s.edge(0, dir)
	for i := 1; i < len(s.lanes); i++ {
		e := s.edge(i, dir)
		if (dir == End && e < bestEdge) || (dir == Start && e > bestEdge) {
			best, bestEdge = i, e
		}
	}
	return Lane(best)
}

// ChildFrame returns the rectangle a width x height item would occupy in lane
// when placed toward dir. It does not modify the set.
func (s *LaneSet) ChildFrame(width, height, lane int, dir Direction) Rect {
	r := s.lanes[lane]
	var f Rect
	if s.orientation == Vertical {
		f.Left = r.Left
		if dir == End {
			f.Top = r.Bottom
		} else {
			f.Top = r.Top - height
		}
	} else {
		f.Top = r.Top
		if dir == End {
			f.Left = r.Right
		} else {
			f.Left = r.Left - width
		}
	}
	f.Right = f.Left + width
	f.Bottom = f.Top + height
	return f
}

// PushChildFrame commits frame into lane: toward End the lane's end edge moves
// to the frame's end, toward Start its start edge moves to the frame's start.
func (s *LaneSet) PushChildFrame(frame Rect, lane int, dir Direction) {
	r := s.lanes[lane]
	start, end := s.orientation.MainStart(r), s.orientation.MainEnd(r)
	if dir == End {
		end = s.orientation.MainEnd(frame)
	} else {
		start = s.orientation.MainStart(frame)
	}
	s.setMain(lane, start, end)
}

// Lane returns the current bounds of lane.
func (s *LaneSet) Lane(lane int) Rect { return s.lanes[lane] }

// Offset translates every lane by delta along the main axis.
func (s *LaneSet) Offset(delta int) {
	for i := range s.lanes {
		s.OffsetLane(i, delta)
	}
}

// OffsetLane translates a single lane by delta along the main axis.
func (s *LaneSet) OffsetLane(lane, delta int) {
	if s.orientation == Vertical {
		s.lanes[lane] = s.lanes[lane].Offset(0, delta)
	} else {
		s.lanes[lane] = s.lanes[lane].Offset(delta, 0)
	}
}

// Extent returns the smallest start edge and largest end edge over all lanes.
func (s *LaneSet) Extent() (start, end int) {
	for i, r := range s.lanes {
		ls, le := s.orientation.MainStart(r), s.orientation.MainEnd(r)
		if i == 0 || ls < start {
			start = ls
		}
		if i == 0 || le > end {
			end = le
		}
	}
	return start, end
}

// CrossSize returns the total cross-axis span of the set.
func (s *LaneSet) CrossSize() int { return s.laneSize * len(s.lanes) }

func (s *LaneSet) edge(lane int, dir Direction) int {
	if dir == End {
		return s.orientation.MainEnd(s.lanes[lane])
	}
	return s.orientation.MainStart(s.lanes[lane])
}

func (s *LaneSet) setMain(lane, start, end int) {
	r := &s.lanes[lane]
	if s.orientation == Vertical {
		r.Top, r.Bottom = start, end
	} else {
		r.Left, r.Right = start, end
	}
}
