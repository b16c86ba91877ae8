package render

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/stagger/pkg/layout"
)

// RenderSVG renders frames as a standalone SVG document.
func RenderSVG(frames []layout.Frame, opts ...Option) []byte {
	s := buildScene(frames, newOptions(opts...))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		s.width, s.height, s.width, s.height)
	fmt.Fprintf(&buf, `  <rect width="%d" height="%d" fill="#ffffff"/>`+"\n", s.width, s.height)

	for i, g := range s.guides {
		fmt.Fprintf(&buf, `  <rect class="lane" data-lane="%d" x="%d" y="%d" width="%d" height="%d" fill="none" stroke="#dddddd" stroke-dasharray="4 4"/>`+"\n",
			i, g.Left, g.Top, g.Width(), g.Height())
	}

	for _, it := range s.items {
		r := it.rect
		fmt.Fprintf(&buf, `  <rect class="item" id="item-%d" data-lane="%d" x="%d" y="%d" width="%d" height="%d" fill="%s" fill-opacity="0.85" stroke="#333333" stroke-width="1"/>`+"\n",
			it.position, it.lane, r.Left, r.Top, r.Width(), r.Height(), laneColor(it.lane))
	}

	for _, it := range s.items {
		if it.label == "" {
			continue
		}
		r := it.rect
		fmt.Fprintf(&buf, `  <text x="%d" y="%d" font-family="sans-serif" font-size="12" text-anchor="middle" dominant-baseline="middle" fill="#ffffff">`,
			r.Left+r.Width()/2, r.Top+r.Height()/2)
		_ = xml.EscapeText(&buf, []byte(it.label))
		buf.WriteString("</text>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}
