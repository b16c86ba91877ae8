package lanes

import (
	"strings"

	errs "github.com/matzehuels/stagger/pkg/errors"
)

// Orientation selects which axis lanes extend along.
type Orientation int

const (
	// Vertical lanes are columns; items stack top to bottom.
	Vertical Orientation = iota
	// Horizontal lanes are rows; items stack left to right.
	Horizontal
)

func (o Orientation) String() string {
	if o == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// ParseOrientation parses "vertical" or "horizontal" (case-insensitive).
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vertical", "v":
		return Vertical, nil
	case "horizontal", "h":
		return Horizontal, nil
	}
	return Vertical, errs.ValidateChoice("orientation", s, "vertical", "horizontal")
}

// Direction is the end of the main axis a lane is being extended toward.
type Direction int

const (
	// End extends lanes forward (down or right).
	End Direction = iota
	// Start extends lanes backward (up or left).
	Start
)

func (d Direction) String() string {
	if d == Start {
		return "start"
	}
	return "end"
}

// MainStart returns r's leading edge on the main axis.
func (o Orientation) MainStart(r Rect) int {
	if o == Vertical {
		return r.Top
	}
	return r.Left
}

// MainEnd returns r's trailing edge on the main axis.
func (o Orientation) MainEnd(r Rect) int {
	if o == Vertical {
		return r.Bottom
	}
	return r.Right
}

// MainSize returns the dimension of a width x height item along the main axis.
func (o Orientation) MainSize(width, height int) int {
	if o == Vertical {
		return height
	}
	return width
}
