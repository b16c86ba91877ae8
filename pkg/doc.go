// Package pkg provides the core libraries for Stagger staggered grid layouts.
//
// # Overview
//
// Stagger places items of varying size into a fixed number of lanes, always
// extending the lane that ends first. A host can jump to any item position
// and get the same placement it would have reached by scrolling there, while
// only measuring items it has never seen. The pkg directory is organized into
// three main areas:
//
//  1. Engine - lane geometry, placement records and replay ([lanes], [entry], [layout])
//  2. Persistence - snapshots of placement records and their cache backends ([snapshot], [cache])
//  3. Orchestration - datasets, configuration and rendering ([items], [config], [pipeline], [render])
//
// # Architecture
//
// The typical data flow through Stagger:
//
//	items.json / items.toml
//	         ↓
//	    [items] package (dataset, measurement)
//	         ↓
//	    [snapshot] package (restore cached placements)
//	         ↓
//	    [layout] package (replay to position, place the window)
//	         ↓
//	    [render] package (SVG/PNG/JSON, Graphviz lane graph)
//
// # Quick Start
//
// Lay out a dataset and jump into the middle of it:
//
//	ds, _ := items.Import("photos.json")
//	e, _ := layout.New(ds, layout.WithLanes(3), layout.WithLaneSize(120))
//
//	// Item 40 starts at the top of the window.
//	frames, _ := e.Layout(40, 0, 12)
//
//	svg := render.RenderSVG(frames, render.WithLabels(ds.Label))
//
// Keep placements across runs:
//
//	runner := pipeline.NewRunner(fileCache, nil, logger)
//	result, _ := runner.Execute(ctx, ds, pipeline.Options{Position: 40, Count: 12})
//
// # Main Packages
//
// [lanes] - Lane rectangles with main-axis cursors. Finds the lane an item
// goes to and commits frames toward either end of the main axis.
//
// [entry] - Write-once cache of the lane and size every position was placed
// with. Positions are invalidated from a point onward when items change.
//
// [layout] - The engine and its strategies. Staggered replays placement from
// the first item so a jump matches a scroll; grid assigns lanes by position.
//
// [snapshot] - Versioned JSON snapshots of the entry cache and a [cache]-backed
// store keyed by dataset content and lane configuration.
//
// [cache] - Byte cache interface with file, Redis, MongoDB and null backends.
//
// [pipeline] - Restore, layout, save and render in one call. Used by the CLI.
//
// [observability] - Hooks for replay, measurement and cache events, with a
// Prometheus adapter in observability/prom.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...         # All tests
//	go test ./pkg/layout/...  # Specific package
//	go test -run Example      # Examples only
package pkg
