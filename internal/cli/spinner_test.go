package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stagger/pkg/layout"
)

type countingHooks struct {
	measures, replays int
	lastErr           error
}

func (h *countingHooks) OnMeasure(_ int, _ time.Duration, err error) {
	h.measures++
	h.lastErr = err
}

func (h *countingHooks) OnReplay(string, int, int, int, time.Duration, error) { h.replays++ }

func quietSpinner(message string, total int) (*Spinner, *bytes.Buffer) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), message, total)
	s.out = &buf
	s.next = &countingHooks{}
	return s, &buf
}

func TestSpinnerStatus(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		measured int
		cached   int
		want     string
	}{
		{"nothing yet", 10, 0, 0, "Computing layout..."},
		{"measuring", 10, 3, 0, "Computing layout... 3/10 measured"},
		{"unknown total", 0, 3, 0, "Computing layout... 3 measured"},
		{"replayed from cache", 10, 2, 8, "Computing layout... 2/10 measured, 8 reused"},
		{"all reused", 10, 0, 8, "Computing layout... 8 reused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := quietSpinner("Computing layout...", tt.total)
			for i := 0; i < tt.measured; i++ {
				s.OnMeasure(i, time.Millisecond, nil)
			}
			s.OnReplay(layout.StrategyStaggered, 0, 0, tt.cached, 0, nil)
			if got := s.status(); got != tt.want {
				t.Errorf("status() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSpinnerForwardsHooks(t *testing.T) {
	s, _ := quietSpinner("x", 2)
	next := s.next.(*countingHooks)

	boom := errors.New("boom")
	s.OnMeasure(0, 0, nil)
	s.OnMeasure(1, 0, boom)
	s.OnReplay(layout.StrategyGrid, 1, 1, 0, 0, nil)

	if next.measures != 2 || next.replays != 1 || next.lastErr != boom {
		t.Errorf("forwarded measures/replays/err = %d/%d/%v, want 2/1/boom", next.measures, next.replays, next.lastErr)
	}
}

func TestSpinnerCountsEngineMeasurements(t *testing.T) {
	s, _ := quietSpinner("Computing layout...", 6)
	src := layout.Sizes{
		{Width: 10, Height: 10}, {Width: 10, Height: 20}, {Width: 10, Height: 10},
		{Width: 10, Height: 30}, {Width: 10, Height: 10}, {Width: 10, Height: 10},
	}
	e, err := layout.New(src, layout.WithHooks(s), layout.WithLogger(log.New(io.Discard)))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.Layout(4, 0, 2); err != nil {
		t.Fatal(err)
	}
	if got := s.measured.Load(); got != 6 {
		t.Errorf("measured = %d, want 6", got)
	}

	// A second pass over the same items replays from the entry cache.
	if _, err := e.Layout(4, 0, 2); err != nil {
		t.Fatal(err)
	}
	if got := s.measured.Load(); got != 6 {
		t.Errorf("measured after replay = %d, want 6", got)
	}
	if got := s.cached.Load(); got != 4 {
		t.Errorf("cached after replay = %d, want 4", got)
	}
}

func TestSpinnerDrawsProgress(t *testing.T) {
	s, buf := quietSpinner("Rendering 10 items...", 10)
	for i := 0; i < 3; i++ {
		s.OnMeasure(i, 0, nil)
	}
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "3/10 measured") {
		t.Errorf("spinner output %q does not show progress", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("spinner output %q should end by clearing the line", out)
	}
	if s.Cancelled() {
		t.Error("Stop() should not count as cancellation")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, "Computing layout...", 0)
	s.out = io.Discard
	s.Start()

	cancel()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s, _ := quietSpinner("x", 0)
	s.Start()
	s.Stop()
	s.Stop()
}
