package render

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"

	errs "github.com/matzehuels/stagger/pkg/errors"
	"github.com/matzehuels/stagger/pkg/layout"
)

// MaxPNGPixels bounds the canvas RenderPNG allocates (4 bytes per pixel).
const MaxPNGPixels = 1 << 26

// RenderPNG rasterizes frames at the configured scale. A canvas above
// MaxPNGPixels is refused rather than allocated.
func RenderPNG(frames []layout.Frame, opts ...Option) ([]byte, error) {
	o := newOptions(opts...)
	s := buildScene(frames, o)

	fw := max(float64(s.width)*o.scale, 1)
	fh := max(float64(s.height)*o.scale, 1)
	if fw*fh > MaxPNGPixels {
		return nil, errs.New(errs.ErrCodeInvalidInput,
			"png canvas %.0fx%.0f exceeds %d pixels; lower the scale or render svg", fw, fh, MaxPNGPixels)
	}
	w, h := int(fw), int(fh)
	dc := gg.NewContext(w, h)
	dc.Scale(o.scale, o.scale)

	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetDash(4, 4)
	dc.SetLineWidth(1)
	dc.SetHexColor("#dddddd")
	for _, g := range s.guides {
		dc.DrawRectangle(float64(g.Left), float64(g.Top), float64(g.Width()), float64(g.Height()))
		dc.Stroke()
	}
	dc.SetDash()

	for _, it := range s.items {
		r := it.rect
		x, y := float64(r.Left), float64(r.Top)
		rw, rh := float64(r.Width()), float64(r.Height())

		dc.DrawRectangle(x, y, rw, rh)
		dc.SetHexColor(laneColor(it.lane))
		dc.FillPreserve()
		dc.SetHexColor("#333333")
		dc.Stroke()

		if it.label != "" {
			dc.SetRGB(1, 1, 1)
			dc.DrawStringAnchored(it.label, x+rw/2, y+rh/2, 0.5, 0.5)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
