package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matzehuels/stagger/pkg/observability"
)

// Spinner animates a status line on stderr while a layout runs. It is also
// an observability.LayoutHooks: handed to the engine through
// pipeline.Options.Hooks it counts measurements as they happen, so long
// first-visit replays show how far they got. Events are forwarded to the
// hooks that were registered when the spinner was created.
type Spinner struct {
	message string
	total   int
	out     io.Writer
	next    observability.LayoutHooks

	measured    atomic.Int64
	cached      atomic.Int64
	interrupted atomic.Bool

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	frames   []string
	mu       sync.Mutex
	width    int // printed width of the last status line
}

// newSpinner creates a spinner for a layout over total items. It stops when
// ctx is cancelled.
func newSpinner(ctx context.Context, message string, total int) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		total:   total,
		out:     os.Stderr,
		next:    observability.Layout(),
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

// OnMeasure implements observability.LayoutHooks.
func (s *Spinner) OnMeasure(position int, d time.Duration, err error) {
	s.measured.Add(1)
	s.next.OnMeasure(position, d, err)
}

// OnReplay implements observability.LayoutHooks.
func (s *Spinner) OnReplay(strategy string, target, measured, cached int, d time.Duration, err error) {
	s.cached.Add(int64(cached))
	s.next.OnReplay(strategy, target, measured, cached, d, err)
}

// status is the text after the spinner frame.
func (s *Spinner) status() string {
	m, c := s.measured.Load(), s.cached.Load()
	var parts []string
	if m > 0 && s.total > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d measured", m, s.total))
	} else if m > 0 {
		parts = append(parts, fmt.Sprintf("%d measured", m))
	}
	if c > 0 {
		parts = append(parts, fmt.Sprintf("%d reused", c))
	}
	if len(parts) == 0 {
		return s.message
	}
	return s.message + " " + strings.Join(parts, ", ")
}

// Start begins the animation.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-s.ctx.Done():
				s.interrupted.Store(true)
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				frame := s.frames[i%len(s.frames)]
				text := s.status()
				s.mu.Lock()
				fmt.Fprintf(s.out, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(text))
				s.width = max(s.width, len([]rune(text))+2)
				s.mu.Unlock()
				i++
			}
		}
	}()
}

// Stop stops the animation and clears the line. It may be called more than
// once.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
	<-s.stopped
	s.cancel()
	s.clearLine()
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width))
	s.width = 0
}

// StopWithError stops the spinner and shows an error message with the
// measurements done so far.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	if m := s.measured.Load(); m > 0 {
		message = fmt.Sprintf("%s after measuring %d items", message, m)
	}
	printError("%s", message)
}

// Cancelled reports whether the spinner stopped because its context ended.
func (s *Spinner) Cancelled() bool {
	return s.interrupted.Load()
}
