// Package render draws computed layout frames.
//
// The sinks share one set of options:
//
//   - [RenderSVG]: a standalone SVG document, one rect per item colored by lane
//   - [RenderPNG]: the same picture rasterized with fogleman/gg
//   - [RenderJSON]: frames with labels and canvas bounds for other tools
//   - [ToDOT] and [RenderGraphSVG]: the lane chains as a Graphviz graph, one
//     cluster per lane, useful to check which lane each item went to
//
// Frames are drawn in engine coordinates translated so the picture starts at
// the configured padding. With [WithLanes] the full cross-axis span of the
// lane set is drawn even where no item has been placed, plus lane guides.
//
//	frames, _ := engine.Layout(0, 0, ds.Count())
//	svg := render.RenderSVG(frames, render.WithLabels(ds.Label), render.WithLanes(o, 3, 120))
package render
