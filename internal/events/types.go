package events

import "time"

// Event type constants for kelindar/event.
const (
	TypeFileStarted uint32 = iota + 1
	TypeFrameRendered
	TypeFileCompleted
	TypeRemuxCompleted
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// FileStartedEvent is published once an input has been probed and its
// encoder opened.
type FileStartedEvent struct {
	Index     int // 1-based position in the run
	Total     int
	Input     string
	Output    string
	Width     int
	Height    int
	FrameRate string
	FPS       float64
	Frames    int // 0 when unknown
	Timestamp time.Time
}

// Type returns the event type identifier for FileStartedEvent.
func (e FileStartedEvent) Type() uint32 { return TypeFileStarted }

// FrameRenderedEvent is published after each frame is written.
type FrameRenderedEvent struct {
	Input    string
	Frame    int           // 1-based
	Frames   int           // expected total, 0 when unknown
	Infer    time.Duration // model call
	Duration time.Duration // preprocess through write
}

// Type returns the event type identifier for FrameRenderedEvent.
func (e FrameRenderedEvent) Type() uint32 { return TypeFrameRendered }

// FileCompletedEvent is published when an input finishes, successfully or not.
type FileCompletedEvent struct {
	Input    string
	Output   string
	Frames   int
	Duration time.Duration
	Stage    string // failing stage, empty on success
	Error    string
}

// Type returns the event type identifier for FileCompletedEvent.
func (e FileCompletedEvent) Type() uint32 { return TypeFileCompleted }

// Failed reports whether the file did not complete.
func (e FileCompletedEvent) Failed() bool { return e.Error != "" }

// RemuxCompletedEvent reports the outcome of the audio remux for one file.
type RemuxCompletedEvent struct {
	Input    string
	Output   string
	ExitCode int
	Skipped  bool // input has no audio
	Error    string
}

// Type returns the event type identifier for RemuxCompletedEvent.
func (e RemuxCompletedEvent) Type() uint32 { return TypeRemuxCompleted }

// Succeeded reports whether the sound file was produced.
func (e RemuxCompletedEvent) Succeeded() bool { return !e.Skipped && e.Error == "" && e.ExitCode == 0 }
