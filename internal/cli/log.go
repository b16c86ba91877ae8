// Package cli implements the stagger command-line interface.
//
// The commands lay out item datasets (layout), draw them (render), move
// placement snapshots between runs (snapshot), scroll through a layout
// interactively (browse), serve layouts over HTTP (serve) and manage the
// snapshot cache (cache). The CLI is
// built using cobra and logs through charmbracelet/log; --verbose (-v)
// enables debug output.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger. Engine, cache and server logs go through
// it, so --verbose shows per-replay debug lines such as "layout replayed".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times a CLI operation and logs it once with its fields.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with keyvals and the elapsed time, rounded to the
// millisecond, under the "elapsed" key.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}
