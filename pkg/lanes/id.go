package lanes

import "strconv"

// LaneID identifies a lane, or the absence of one.
type LaneID struct {
	index int
	valid bool
}

// NoLane is the unresolved lane. It is the zero value of LaneID.
var NoLane = LaneID{}

// Lane returns the id of lane i.
func Lane(i int) LaneID { return LaneID{index: i, valid: true} }

// Index returns the lane index and whether the id refers to a lane at all.
func (id LaneID) Index() (int, bool) { return id.index, id.valid }

// Valid reports whether the id refers to a lane.
func (id LaneID) Valid() bool { return id.valid }

// Or returns id if it is valid and fallback otherwise.
func (id LaneID) Or(fallback LaneID) LaneID {
	if id.valid {
		return id
	}
	return fallback
}

func (id LaneID) String() string {
	if !id.valid {
		return "none"
	}
	return strconv.Itoa(id.index)
}
