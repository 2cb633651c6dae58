// Package report records a TOML summary of a run.
package report

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/smazurov/depthvideo/internal/events"
)

// Remux status values.
const (
	RemuxSuccess = "success"
	RemuxFailed  = "failed"
	RemuxSkipped = "skipped"
)

// File is the outcome for one input.
type File struct {
	Input     string  `toml:"input"`
	Output    string  `toml:"output,omitempty"`
	Width     int     `toml:"width,omitempty"`
	Height    int     `toml:"height,omitempty"`
	FrameRate string  `toml:"frame_rate,omitempty"`
	Frames    int     `toml:"frames"`
	Seconds   float64 `toml:"seconds"`
	Remux     string  `toml:"remux,omitempty"`
	Stage     string  `toml:"stage,omitempty"`
	Error     string  `toml:"error,omitempty"`
}

// Report is the document written by --report.
type Report struct {
	Version   string    `toml:"version"`
	Encoder   string    `toml:"encoder"`
	Backend   string    `toml:"backend"`
	Colormap  string    `toml:"colormap"`
	OnlyDepth bool      `toml:"only_depth"`
	WithSound bool      `toml:"with_sound"`
	Started   time.Time `toml:"started"`
	Finished  time.Time `toml:"finished"`
	Files     []File    `toml:"files"`
}

// Collector builds a Report from pipeline events.
type Collector struct {
	mu     sync.Mutex
	report Report
	index  map[string]int
}

// NewCollector starts a report with the given run header.
func NewCollector(header Report) *Collector {
	header.Files = nil
	if header.Started.IsZero() {
		header.Started = time.Now()
	}
	return &Collector{report: header, index: make(map[string]int)}
}

// Subscribe records events from bus. Returns an unsubscribe function.
func (c *Collector) Subscribe(bus *events.Bus) func() {
	unsubs := []func(){
		bus.Subscribe(func(e events.FileStartedEvent) {
			c.update(e.Input, func(f *File) {
				f.Output = e.Output
				f.Width, f.Height = e.Width, e.Height
				f.FrameRate = e.FrameRate
			})
		}),
		bus.Subscribe(func(e events.FileCompletedEvent) {
			c.update(e.Input, func(f *File) {
				f.Frames = e.Frames
				f.Seconds = e.Duration.Seconds()
				if e.Failed() {
					f.Stage, f.Error = e.Stage, e.Error
				}
				// The remux handler may already have set the sound file.
				if e.Output != "" && f.Remux != RemuxSuccess {
					f.Output = e.Output
				}
			})
		}),
		bus.Subscribe(func(e events.RemuxCompletedEvent) {
			c.update(e.Input, func(f *File) {
				switch {
				case e.Skipped:
					f.Remux = RemuxSkipped
				case e.Succeeded():
					f.Remux = RemuxSuccess
					f.Output = e.Output
				default:
					f.Remux = RemuxFailed
					if f.Error == "" {
						f.Error = e.Error
					}
				}
			})
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (c *Collector) update(input string, fn func(*File)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.index[input]
	if !ok {
		i = len(c.report.Files)
		c.index[input] = i
		c.report.Files = append(c.report.Files, File{Input: input})
	}
	fn(&c.report.Files[i])
}

// Report returns a copy of the report with Finished set to now.
func (c *Collector) Report() Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := c.report
	r.Files = append([]File(nil), c.report.Files...)
	r.Finished = time.Now()
	return r
}

// Write encodes r as TOML to path.
func Write(path string, r Report) error {
	data, err := toml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Read decodes a report written by Write.
func Read(path string) (Report, error) {
	var r Report
	data, err := os.ReadFile(path)
	if err != nil {
		return r, fmt.Errorf("failed to read report: %w", err)
	}
	if err := toml.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("failed to parse report: %w", err)
	}
	return r, nil
}
