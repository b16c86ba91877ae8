package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/stagger/pkg/lanes"
	"github.com/matzehuels/stagger/pkg/layout"
)

func TestToDOT(t *testing.T) {
	dot := ToDOT(twoLaneFrames(), WithLabels(func(p int) string { return []string{"a", "b", "c"}[p] }))

	for _, want := range []string{
		"digraph lanes {",
		"subgraph cluster_0 {",
		"subgraph cluster_1 {",
		`"p0" [label="0: a"`,
		`"p1" [label="1: b"`,
		`"p0" -> "p2";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q in:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"p0" -> "p1"`) {
		t.Error("items in different lanes should not be chained")
	}
}

func TestToDOTOrdersByMainStart(t *testing.T) {
	// Position 3 was placed toward Start above position 1.
	frames := []layout.Frame{
		{Position: 1, Lane: 0, Rect: lanes.Rect{Left: 0, Top: 50, Right: 100, Bottom: 100}},
		{Position: 3, Lane: 0, Rect: lanes.Rect{Left: 0, Top: 0, Right: 100, Bottom: 50}},
		{Position: 2, Lane: 0, Rect: lanes.Rect{Left: 0, Top: 100, Right: 100, Bottom: 150}},
	}
	dot := ToDOT(frames)

	if !strings.Contains(dot, `"p3" -> "p1";`) || !strings.Contains(dot, `"p1" -> "p2";`) {
		t.Errorf("ToDOT() chain not ordered by main-axis start:\n%s", dot)
	}
}

func TestToDOTEmptyLanes(t *testing.T) {
	dot := ToDOT(nil, WithLanes(lanes.Vertical, 2, 100))

	if got := strings.Count(dot, "subgraph cluster_"); got != 2 {
		t.Errorf("clusters = %d, want 2", got)
	}
	if !strings.Contains(dot, `"lane1_empty"`) {
		t.Error("empty lanes should get an invisible placeholder")
	}
}

func TestRenderGraphSVG(t *testing.T) {
	svg, err := RenderGraphSVG(context.Background(), twoLaneFrames())
	if err != nil {
		t.Fatalf("RenderGraphSVG() error: %v", err)
	}
	if !bytes.Contains(svg, []byte(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `)) {
		t.Errorf("RenderGraphSVG() root not normalized:\n%s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "rewrites root",
			in:   `<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00"><g/></svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10.00 20.00" width="10" height="20"><g/></svg>`,
		},
		{
			name: "no viewBox",
			in:   `<svg><g/></svg>`,
			want: `<svg><g/></svg>`,
		},
		{
			name: "zero size",
			in:   `<svg viewBox="0 0 0 0"></svg>`,
			want: `<svg viewBox="0 0 0 0"></svg>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(normalizeViewBox([]byte(tt.in))); got != tt.want {
				t.Errorf("normalizeViewBox() = %s, want %s", got, tt.want)
			}
		})
	}
}
