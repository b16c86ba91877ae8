package render

import (
	"github.com/matzehuels/stagger/pkg/lanes"
	"github.com/matzehuels/stagger/pkg/layout"
)

// DefaultPadding is the margin around the drawing, in layout units.
const DefaultPadding = 8

// palette holds the lane fill colors; lanes past its length wrap around.
var palette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2",
	"#59a14f", "#edc948", "#b07aa1", "#ff9da7",
}

// laneColor returns the fill color for lane.
func laneColor(lane int) string {
	return palette[lane%len(palette)]
}

// Option configures all renderers.
type Option func(*options)

type options struct {
	label       func(position int) string
	padding     int
	scale       float64
	orientation lanes.Orientation
	laneCount   int
	laneSize    int
}

// WithLabels draws label(position) inside each item.
func WithLabels(label func(position int) string) Option {
	return func(o *options) { o.label = label }
}

// WithPadding sets the margin around the drawing.
func WithPadding(p int) Option { return func(o *options) { o.padding = max(p, 0) } }

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) Option {
	return func(o *options) {
		if s > 0 {
			o.scale = s
		}
	}
}

// WithLanes draws count lanes of size units along orientation as guides and
// includes their full cross-axis span in the canvas.
func WithLanes(orientation lanes.Orientation, count, size int) Option {
	return func(o *options) {
		o.orientation = orientation
		o.laneCount = count
		o.laneSize = size
	}
}

func newOptions(opts ...Option) options {
	o := options{padding: DefaultPadding, scale: 2.0}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// scene is the frames translated into canvas coordinates.
type scene struct {
	width, height int
	items         []item
	guides        []lanes.Rect
}

type item struct {
	position int
	lane     int
	rect     lanes.Rect
	label    string
}

func buildScene(frames []layout.Frame, o options) scene {
	var b lanes.Rect
	first := true
	grow := func(r lanes.Rect) {
		if first {
			b, first = r, false
			return
		}
		b.Left = min(b.Left, r.Left)
		b.Top = min(b.Top, r.Top)
		b.Right = max(b.Right, r.Right)
		b.Bottom = max(b.Bottom, r.Bottom)
	}
	for _, f := range frames {
		grow(f.Rect)
	}

	// Lane guides span the main-axis extent of the items.
	var guides []lanes.Rect
	if o.laneCount > 0 {
		start, end := 0, 0
		if !first {
			start, end = o.orientation.MainStart(b), o.orientation.MainEnd(b)
		}
		for i := 0; i < o.laneCount; i++ {
			cross := i * o.laneSize
			var g lanes.Rect
			if o.orientation == lanes.Vertical {
				g = lanes.Rect{Left: cross, Top: start, Right: cross + o.laneSize, Bottom: end}
			} else {
				g = lanes.Rect{Left: start, Top: cross, Right: end, Bottom: cross + o.laneSize}
			}
			guides = append(guides, g)
			grow(g)
		}
	}

	dx, dy := o.padding-b.Left, o.padding-b.Top
	s := scene{
		width:  b.Width() + 2*o.padding,
		height: b.Height() + 2*o.padding,
		items:  make([]item, len(frames)),
	}
	for i, g := range guides {
		guides[i] = g.Offset(dx, dy)
	}
	s.guides = guides
	for i, f := range frames {
		it := item{position: f.Position, lane: f.Lane, rect: f.Rect.Offset(dx, dy)}
		if o.label != nil {
			it.label = o.label(f.Position)
		}
		s.items[i] = it
	}
	return s
}
