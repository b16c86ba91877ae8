package render

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/stagger/pkg/layout"
)

type jsonOutput struct {
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Lanes       int         `json:"lanes,omitempty"`
	LaneSize    int         `json:"lane_size,omitempty"`
	Orientation string      `json:"orientation,omitempty"`
	Frames      []jsonFrame `json:"frames"`
}

type jsonFrame struct {
	Position int    `json:"position"`
	Lane     int    `json:"lane"`
	Label    string `json:"label,omitempty"`
	Left     int    `json:"left"`
	Top      int    `json:"top"`
	Right    int    `json:"right"`
	Bottom   int    `json:"bottom"`
}

// RenderJSON encodes frames in engine coordinates together with the canvas
// size the other renderers would use. Padding only affects the canvas size.
func RenderJSON(frames []layout.Frame, opts ...Option) ([]byte, error) {
	o := newOptions(opts...)
	s := buildScene(frames, o)

	out := jsonOutput{
		Width:  s.width,
		Height: s.height,
		Frames: make([]jsonFrame, len(frames)),
	}
	if o.laneCount > 0 {
		out.Lanes = o.laneCount
		out.LaneSize = o.laneSize
		out.Orientation = o.orientation.String()
	}
	for i, f := range frames {
		out.Frames[i] = jsonFrame{
			Position: f.Position,
			Lane:     f.Lane,
			Label:    s.items[i].label,
			Left:     f.Rect.Left,
			Top:      f.Rect.Top,
			Right:    f.Rect.Right,
			Bottom:   f.Rect.Bottom,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return append(data, '\n'), nil
}
