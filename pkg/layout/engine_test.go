package layout

import (
	"errors"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stagger/pkg/entry"
	errs "github.com/matzehuels/stagger/pkg/errors"
	"github.com/matzehuels/stagger/pkg/lanes"
)

// countingSource serves fixed sizes and records every Measure call.
type countingSource struct {
	sizes  []Size
	calls  []int
	fail   map[int]error
	onCall func(position int)
}

func (s *countingSource) Count() int { return len(s.sizes) }

func (s *countingSource) Measure(position int) (Size, error) {
	s.calls = append(s.calls, position)
	if s.onCall != nil {
		s.onCall(position)
	}
	if err := s.fail[position]; err != nil {
		return Size{}, err
	}
	return s.sizes[position], nil
}

func uniform(n, w, h int) *countingSource {
	s := &countingSource{sizes: make([]Size, n)}
	for i := range s.sizes {
		s.sizes[i] = Size{Width: w, Height: h}
	}
	return s
}

// varied returns n items of width w and deterministic heights in [40, 130).
func varied(n, w int) *countingSource {
	s := &countingSource{sizes: make([]Size, n)}
	for i := range s.sizes {
		s.sizes[i] = Size{Width: w, Height: 40 + (i*37)%90}
	}
	return s
}

func quietLogger() *log.Logger { return log.New(io.Discard) }

func newEngine(t *testing.T, src Source, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger()), WithHooks(&recordingHooks{})}, opts...)
	e, err := New(src, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func laneEnd(e *Engine, lane int) int {
	return e.Lanes().Orientation().MainEnd(e.Lanes().Lane(lane))
}

type recordingHooks struct {
	measures int
	replays  int
	lastErr  error
}

func (h *recordingHooks) OnMeasure(int, time.Duration, error) { h.measures++ }

func (h *recordingHooks) OnReplay(_ string, _, _, _ int, _ time.Duration, err error) {
	h.replays++
	h.lastErr = err
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(nil); !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("New(nil) error = %v, want %s", err, errs.ErrCodeInvalidConfig)
	}
	for _, n := range []int{0, -1} {
		if _, err := New(uniform(3, 10, 10), WithLanes(n)); !errs.Is(err, errs.ErrCodeInvalidConfig) {
			t.Errorf("New(WithLanes(%d)) error = %v, want %s", n, err, errs.ErrCodeInvalidConfig)
		}
	}
}

func TestNewDefaults(t *testing.T) {
	e, err := New(uniform(1, 10, 10))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if e.Lanes().Count() != DefaultLanes {
		t.Errorf("lane count = %d, want %d", e.Lanes().Count(), DefaultLanes)
	}
	if e.Lanes().LaneSize() != DefaultLaneSize {
		t.Errorf("lane size = %d, want %d", e.Lanes().LaneSize(), DefaultLaneSize)
	}
	if e.Strategy().Name() != StrategyStaggered {
		t.Errorf("strategy = %q, want %q", e.Strategy().Name(), StrategyStaggered)
	}
	if e.Lanes().Orientation() != lanes.Vertical {
		t.Error("default orientation is not vertical")
	}
}

func TestTwoLaneScenario(t *testing.T) {
	src := uniform(10, 100, 100)
	e := newEngine(t, src, WithLanes(2))

	if err := e.MoveToPosition(3, 0); err != nil {
		t.Fatalf("MoveToPosition(3, 0) error = %v", err)
	}

	want := map[int]entry.Entry{
		0: {Lane: 0, Width: 100, Height: 100},
		1: {Lane: 1, Width: 100, Height: 100},
		2: {Lane: 0, Width: 100, Height: 100},
	}
	for p, w := range want {
		if got, ok := e.Entries().Get(p); !ok || got != w {
			t.Errorf("entry %d = %v (%v), want %v", p, got, ok, w)
		}
	}
	if _, ok := e.Entries().Get(3); ok {
		t.Error("target position was cached by MoveToPosition")
	}
	if got := e.LaneForPosition(3, lanes.End); got != lanes.Lane(1) {
		t.Errorf("LaneForPosition(3, End) = %v, want 1", got)
	}
	if !reflect.DeepEqual(src.calls, []int{0, 1, 2}) {
		t.Errorf("measured %v, want [0 1 2]", src.calls)
	}

	// lane 1 (cursor 100) is aligned to offset 0, lane 0 keeps its lead.
	if laneEnd(e, 1) != 0 || laneEnd(e, 0) != 100 {
		t.Errorf("lane ends = (%d, %d), want (100, 0)", laneEnd(e, 0), laneEnd(e, 1))
	}
}

func TestTwoLaneScenarioFrames(t *testing.T) {
	e := newEngine(t, uniform(10, 100, 100), WithLanes(2))

	frames, err := e.Layout(0, 0, 3)
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	want := []Frame{
		{Position: 0, Lane: 0, Rect: lanes.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}},
		{Position: 1, Lane: 1, Rect: lanes.Rect{Left: 100, Top: 0, Right: 200, Bottom: 100}},
		{Position: 2, Lane: 0, Rect: lanes.Rect{Left: 0, Top: 100, Right: 100, Bottom: 200}},
	}
	if !reflect.DeepEqual(frames, want) {
		t.Errorf("Layout() = %v, want %v", frames, want)
	}
}

func TestReentryUsesCacheAndShiftsUniformly(t *testing.T) {
	src := uniform(10, 100, 100)
	e := newEngine(t, src, WithLanes(2))
	if err := e.MoveToPosition(3, 0); err != nil {
		t.Fatal(err)
	}
	src.calls = nil

	if err := e.MoveToPosition(1, 50); err != nil {
		t.Fatalf("MoveToPosition(1, 50) error = %v", err)
	}
	if len(src.calls) != 0 {
		t.Errorf("re-entry measured %v, want no calls", src.calls)
	}

	// Replay of position 0 leaves lane 0 at 100 and lane 1 at 0; position 1
	// lives in lane 1, so every lane moves by 50 - 0.
	if laneEnd(e, 0) != 150 || laneEnd(e, 1) != 50 {
		t.Errorf("lane ends = (%d, %d), want (150, 50)", laneEnd(e, 0), laneEnd(e, 1))
	}
	if st := e.Stats(); st.Measured != 0 || st.Cached != 1 || st.Target != 1 {
		t.Errorf("Stats() = %+v, want 0 measured, 1 cached", st)
	}
}

func TestMoveToPositionIsIdempotent(t *testing.T) {
	e := newEngine(t, varied(60, 80), WithLanes(3), WithLaneSize(80))

	first, err := e.Layout(25, 37, 15)
	if err != nil {
		t.Fatal(err)
	}
	lanesAfterFirst := snapshotLanes(e)

	second, err := e.Layout(25, 37, 15)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second layout differs:\n%v\n%v", first, second)
	}
	if !reflect.DeepEqual(lanesAfterFirst, snapshotLanes(e)) {
		t.Error("lane state differs between identical layouts")
	}
}

func snapshotLanes(e *Engine) []lanes.Rect {
	out := make([]lanes.Rect, e.Lanes().Count())
	for i := range out {
		out[i] = e.Lanes().Lane(i)
	}
	return out
}

func TestJumpMatchesSequentialDiscovery(t *testing.T) {
	cold := newEngine(t, varied(80, 60), WithLanes(4), WithLaneSize(60))
	jumped, err := cold.Layout(50, 0, 20)
	if err != nil {
		t.Fatal(err)
	}

	warm := newEngine(t, varied(80, 60), WithLanes(4), WithLaneSize(60))
	for p := 0; p < 80; p += 7 {
		if _, err := warm.Layout(p, 0, 7); err != nil {
			t.Fatal(err)
		}
	}
	sequential, err := warm.Layout(50, 0, 20)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(jumped, sequential) {
		t.Errorf("jump-first layout differs from sequential:\n%v\n%v", jumped, sequential)
	}
}

func TestEntriesAreWriteOnce(t *testing.T) {
	e := newEngine(t, varied(40, 50), WithLanes(3))
	if _, err := e.Layout(20, 0, 10); err != nil {
		t.Fatal(err)
	}
	before := e.Entries().Records()

	for _, p := range []int{39, 0, 7, 31, 20} {
		if _, err := e.Layout(p, p*3, 5); err != nil {
			t.Fatal(err)
		}
		for q := p - 1; q >= 0 && q > p-5; q-- {
			if _, err := e.Place(q, lanes.Start); err != nil {
				t.Fatal(err)
			}
		}
	}

	for _, r := range before {
		got, ok := e.Entries().Get(r.Position)
		if !ok || got != r.Entry() {
			t.Errorf("entry %d changed: %v -> %v", r.Position, r.Entry(), got)
		}
	}
}

func TestReplayGrowsLanesMonotonically(t *testing.T) {
	src := varied(50, 70)
	e := newEngine(t, src, WithLanes(3))

	prev := make([]int, 3)
	src.onCall = func(int) {
		for i := range prev {
			end := laneEnd(e, i)
			if end < prev[i] {
				t.Errorf("lane %d shrank during replay: %d -> %d", i, prev[i], end)
			}
			prev[i] = end
		}
	}
	if err := e.MoveToPosition(49, 0); err != nil {
		t.Fatal(err)
	}
	if len(src.calls) != 49 {
		t.Errorf("measured %d items, want 49", len(src.calls))
	}
}

func TestGreedyBalance(t *testing.T) {
	const h = 90
	for n := 1; n <= 4; n++ {
		e := newEngine(t, uniform(30, 10, h), WithLanes(n))
		for k := 0; k < 30; k++ {
			if err := e.MoveToPosition(k, 0); err != nil {
				t.Fatal(err)
			}
			lo, hi := laneEnd(e, 0), laneEnd(e, 0)
			for i := 1; i < n; i++ {
				lo, hi = min(lo, laneEnd(e, i)), max(hi, laneEnd(e, i))
			}
			if hi-lo > h {
				t.Errorf("%d lanes, target %d: spread %d > %d", n, k, hi-lo, h)
			}
		}
	}
}

func TestAlignment(t *testing.T) {
	for _, o := range []lanes.Orientation{lanes.Vertical, lanes.Horizontal} {
		t.Run(o.String(), func(t *testing.T) {
			e := newEngine(t, varied(30, 45), WithLanes(3), WithOrientation(o))
			for p := 0; p < 30; p += 4 {
				offset := 17 * p
				if err := e.MoveToPosition(p, offset); err != nil {
					t.Fatal(err)
				}
				lane, ok := e.LaneForPosition(p, lanes.End).Index()
				if !ok {
					t.Fatalf("no lane for %d", p)
				}
				if got := laneEnd(e, lane); got != offset {
					t.Errorf("position %d: lane %d ends at %d, want %d", p, lane, got, offset)
				}
				f, err := e.Place(p, lanes.End)
				if err != nil {
					t.Fatal(err)
				}
				if got := o.MainStart(f.Rect); got != offset {
					t.Errorf("position %d placed at %d, want %d", p, got, offset)
				}
			}
		})
	}
}

func TestBackwardFillMatchesForwardLayout(t *testing.T) {
	const target, offset = 12, 500
	e := newEngine(t, varied(20, 50), WithLanes(3))
	forward, err := e.Layout(0, 0, 20)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.Layout(target, offset, 8); err != nil {
		t.Fatal(err)
	}
	shift := offset - forward[target].Rect.Top
	for p := target - 1; p >= 0; p-- {
		f, err := e.Place(p, lanes.Start)
		if err != nil {
			t.Fatal(err)
		}
		if want := forward[p].Rect.Offset(0, shift); f.Rect != want || f.Lane != forward[p].Lane {
			t.Errorf("backward Place(%d) = lane %d %v, want lane %d %v", p, f.Lane, f.Rect, forward[p].Lane, want)
		}
	}
}

func TestHorizontalFrames(t *testing.T) {
	e := newEngine(t, Sizes{{Width: 30, Height: 50}, {Width: 40, Height: 50}, {Width: 20, Height: 50}},
		WithLanes(2), WithLaneSize(50), WithOrientation(lanes.Horizontal))

	frames, err := e.Layout(0, 0, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []lanes.Rect{
		{Left: 0, Top: 0, Right: 30, Bottom: 50},
		{Left: 0, Top: 50, Right: 40, Bottom: 100},
		{Left: 30, Top: 0, Right: 50, Bottom: 50},
	}
	for i, f := range frames {
		if f.Rect != want[i] {
			t.Errorf("frame %d = %v, want %v", i, f.Rect, want[i])
		}
	}
}

func TestOutOfRange(t *testing.T) {
	e := newEngine(t, uniform(5, 10, 10))
	for _, p := range []int{-1, 5, 100} {
		if err := e.MoveToPosition(p, 0); !errs.Is(err, errs.ErrCodeOutOfRange) {
			t.Errorf("MoveToPosition(%d) error = %v, want %s", p, err, errs.ErrCodeOutOfRange)
		}
		if _, err := e.Place(p, lanes.End); !errs.Is(err, errs.ErrCodeOutOfRange) {
			t.Errorf("Place(%d) error = %v, want %s", p, err, errs.ErrCodeOutOfRange)
		}
	}

	empty := newEngine(t, Sizes{})
	if err := empty.MoveToPosition(0, 0); !errs.Is(err, errs.ErrCodeOutOfRange) {
		t.Errorf("MoveToPosition on empty source error = %v", err)
	}
}

func TestLayoutClampsCount(t *testing.T) {
	e := newEngine(t, uniform(5, 10, 10))
	frames, err := e.Layout(3, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(frames) != 2 {
		t.Errorf("Layout(3, 0, 10) returned %d frames, want 2", len(frames))
	}
	if frames, _ := e.Layout(3, 0, -1); len(frames) != 0 {
		t.Errorf("negative count returned %d frames", len(frames))
	}
}

func TestMeasureFailureKeepsCommittedEntries(t *testing.T) {
	boom := errors.New("detached")
	src := uniform(10, 10, 10)
	src.fail = map[int]error{5: boom}
	hooks := &recordingHooks{}
	e := newEngine(t, src, WithLanes(2), WithHooks(hooks))

	err := e.MoveToPosition(8, 0)
	if !errs.Is(err, errs.ErrCodeMeasure) || !errors.Is(err, boom) {
		t.Fatalf("MoveToPosition() error = %v, want MEASURE_FAILED wrapping cause", err)
	}
	if e.Entries().Len() != 5 {
		t.Errorf("entries after failure = %d, want 5", e.Entries().Len())
	}
	if hooks.replays != 1 || hooks.lastErr == nil {
		t.Errorf("OnReplay calls = %d (err %v), want 1 with error", hooks.replays, hooks.lastErr)
	}

	src.fail = nil
	src.calls = nil
	if err := e.MoveToPosition(8, 0); err != nil {
		t.Fatalf("retry error = %v", err)
	}
	if !reflect.DeepEqual(src.calls, []int{5, 6, 7}) {
		t.Errorf("retry measured %v, want [5 6 7]", src.calls)
	}
	if hooks.measures != 9 {
		t.Errorf("OnMeasure calls = %d, want 9", hooks.measures)
	}
}

func TestNegativeMeasurementRejected(t *testing.T) {
	e := newEngine(t, Sizes{{Width: 10, Height: 10}, {Width: 10, Height: -3}, {Width: 10, Height: 10}})
	if err := e.MoveToPosition(2, 0); !errs.Is(err, errs.ErrCodeMeasure) {
		t.Errorf("MoveToPosition() error = %v, want %s", err, errs.ErrCodeMeasure)
	}
	if _, ok := e.Entries().Get(1); ok {
		t.Error("negative size was cached")
	}
}

func TestForeignLaneInCacheRejected(t *testing.T) {
	tests := []struct {
		name     string
		position int // cached position with a lane the engine lacks
		lane     int
		target   int
	}{
		{"before target", 0, 3, 2},
		{"at target", 2, 3, 2},
		{"negative lane before target", 0, -1, 2},
		{"negative lane at target", 1, -1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := entry.New()
			c.Set(tt.position, entry.Entry{Lane: tt.lane, Width: 10, Height: 10})
			e := newEngine(t, uniform(4, 10, 10), WithLanes(2), WithEntries(c))

			if err := e.MoveToPosition(tt.target, 0); !errs.Is(err, errs.ErrCodeInvalidSnapshot) {
				t.Errorf("MoveToPosition(%d) error = %v, want %s", tt.target, err, errs.ErrCodeInvalidSnapshot)
			}
			if got := e.LaneForPosition(tt.position, lanes.End); got.Valid() {
				t.Errorf("LaneForPosition(%d) = %v, want NoLane", tt.position, got)
			}
		})
	}
}

func TestPlaceRejectsForeignLane(t *testing.T) {
	c := entry.New()
	c.Set(1, entry.Entry{Lane: 5, Width: 10, Height: 10})
	e := newEngine(t, uniform(4, 10, 10), WithLanes(2), WithEntries(c))
	if err := e.MoveToPosition(0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Place(0, lanes.End); err != nil {
		t.Fatal(err)
	}

	if _, err := e.Place(1, lanes.End); !errs.Is(err, errs.ErrCodeInvalidSnapshot) {
		t.Errorf("Place(1) error = %v, want %s", err, errs.ErrCodeInvalidSnapshot)
	}
}

func TestItemsChanged(t *testing.T) {
	src := uniform(10, 10, 10)
	e := newEngine(t, src, WithLanes(2))
	if err := e.MoveToPosition(9, 0); err != nil {
		t.Fatal(err)
	}

	e.ItemsChanged(6)
	if e.Entries().Len() != 6 {
		t.Errorf("entries after ItemsChanged(6) = %d, want 6", e.Entries().Len())
	}

	src.calls = nil
	if err := e.MoveToPosition(9, 0); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(src.calls, []int{6, 7, 8}) {
		t.Errorf("measured %v after invalidation, want [6 7 8]", src.calls)
	}
}

func TestSourceFunc(t *testing.T) {
	src := SourceFunc(3, func(p int) (Size, error) { return Size{Width: p, Height: 2 * p}, nil })
	if src.Count() != 3 {
		t.Errorf("Count() = %d", src.Count())
	}
	if s, _ := src.Measure(2); s != (Size{Width: 2, Height: 4}) {
		t.Errorf("Measure(2) = %v", s)
	}
}
