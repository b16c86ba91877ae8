// Package lanes tracks the parallel tracks of a staggered grid.
//
// # Overview
//
// A [LaneSet] owns a fixed number of lanes laid side by side along the cross
// axis. Each lane is a [Rect] whose cross-axis bounds never change and whose
// main-axis edges act as cursors: the end edge is where the next item placed
// toward [End] begins, the start edge is where the next item placed toward
// [Start] ends.
//
// For [Vertical] orientation lanes are columns and the main axis is Y (top
// to bottom). For [Horizontal] orientation lanes are rows and the main axis
// is X (left to right).
//
// # Placement
//
// Placing an item is a query followed by a commit:
//
//	lane := set.FindLane(lanes.End)          // shortest lane
//	i, _ := lane.Index()
//	frame := set.ChildFrame(w, h, i, lanes.End)
//	set.PushChildFrame(frame, i, lanes.End)
//
// [LaneSet.FindLane] is strictly greedy: the lane with the smallest end edge
// for End, the largest start edge for Start, lowest index on ties.
//
// # Lane identity
//
// [LaneID] is an option type. [NoLane] (its zero value) means "not resolved
// yet" and is never a valid placement; resolve it with FindLane.
package lanes
