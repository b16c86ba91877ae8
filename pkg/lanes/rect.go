package lanes

import "fmt"

// Rect is an axis-aligned rectangle in integer layout units.
// Left/Top are inclusive, Right/Bottom exclusive.
type Rect struct {
	Left, Top     int
	Right, Bottom int
}

// Width returns the horizontal span of the rectangle.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the vertical span of the rectangle.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Offset returns r translated by (dx, dy).
func (r Rect) Offset(dx, dy int) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Right: r.Right + dx, Bottom: r.Bottom + dy}
}

// Empty reports whether r covers no area.
func (r Rect) Empty() bool { return r.Right <= r.Left || r.Bottom <= r.Top }

func (r Rect) String() string {
	return fmt.Sprintf("[%d,%d %d,%d]", r.Left, r.Top, r.Right, r.Bottom)
}
