// Package progress draws a per-file frame progress bar from pipeline events.
package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/smazurov/depthvideo/internal/events"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Display renders one bar per input file.
type Display struct {
	w   io.Writer
	mu  sync.Mutex
	bar *progressbar.ProgressBar
	cur string
}

// New creates a Display writing to w.
func New(w io.Writer) *Display {
	return &Display{w: w}
}

// Subscribe drives the display from bus. Returns an unsubscribe function.
func (d *Display) Subscribe(bus *events.Bus) func() {
	unsubs := []func(){
		bus.Subscribe(d.start),
		bus.Subscribe(d.frame),
		bus.Subscribe(d.finish),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (d *Display) start(e events.FileStartedEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.bar != nil {
		_ = d.bar.Finish()
	}

	total := e.Frames
	if total <= 0 {
		total = -1 // spinner
	}
	d.cur = e.Input
	d.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(d.w),
		progressbar.OptionSetDescription(fmt.Sprintf("[%d/%d] %s", e.Index, e.Total, filepath.Base(e.Input))),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("frames"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(d.w)
		}),
	)
}

func (d *Display) frame(e events.FrameRenderedEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.bar == nil || e.Input != d.cur {
		return
	}
	_ = d.bar.Set(e.Frame)
}

func (d *Display) finish(e events.FileCompletedEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.bar == nil || e.Input != d.cur {
		return
	}
	_ = d.bar.Finish()
	d.bar = nil
	d.cur = ""
}
