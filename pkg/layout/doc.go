// Package layout places items of variable size into a staggered grid.
//
// # Overview
//
// An [Engine] distributes the items of a [Source] across the lanes of a
// [lanes.LaneSet]. Lane state is never stored: every [Engine.MoveToPosition]
// rebuilds it by replaying positions 0 through the target in increasing
// order. Placements seen before come from the engine's [entry.Cache]; new
// ones are measured once through [Source.Measure], assigned greedily to the
// shortest lane, and memoized. The first replay to a deep position costs one
// measurement per unseen item, every later replay only cache lookups.
//
// After the replay the whole lane set is translated so the lane that holds
// the target item ends exactly at the requested viewport offset. The host
// then fills the viewport with [Engine.Place], or does both in one call with
// [Engine.Layout]:
//
//	eng, err := layout.New(src,
//	    layout.WithLanes(3),
//	    layout.WithLaneSize(120),
//	)
//	if err != nil {
//	    return err
//	}
//	frames, err := eng.Layout(500, 0, 20) // items 500..519, item 500 at y=0
//
// # Strategies
//
// Placement is pluggable through [Strategy]:
//
//   - [Staggered] (default): shortest-lane masonry with full replay
//   - [Grid]: uniform grid, item i goes to lane i mod n, no replay needed
//
// # Errors
//
// A position outside [0, Count) fails with errors.ErrCodeOutOfRange and is
// never clamped. A failing or negative measurement aborts the replay with
// errors.ErrCodeMeasure; entries recorded before the failure stay valid, and
// the next move rebuilds lane state from scratch anyway.
//
// # Concurrency
//
// An Engine is single-threaded: it must be driven from one goroutine (the
// host's layout pass) and the Source is called synchronously.
package layout
