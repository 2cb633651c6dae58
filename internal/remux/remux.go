// Package remux copies the original audio track into a rendered video.
package remux

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/smazurov/depthvideo/internal/ffmpeg"
	"github.com/smazurov/depthvideo/internal/logging"
	"github.com/smazurov/depthvideo/internal/process"
)

const defaultTailLines = 50

// Result is the outcome of one remux run.
type Result struct {
	Output   string
	ExitCode int
	Log      []string // tail of the ffmpeg output
}

// Error reports a failed remux. The silent input is left in place.
type Error struct {
	Original string
	Silent   string
	ExitCode int
	Log      []string
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("remux %s failed", e.Original)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	} else {
		msg += fmt.Sprintf(": exit code %d", e.ExitCode)
	}
	if len(e.Log) > 0 {
		msg += "\n" + strings.Join(e.Log, "\n")
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Remuxer combines the audio of original with the video of silent into output.
type Remuxer interface {
	Remux(ctx context.Context, original, silent, output string) (Result, error)
}

// FFmpeg remuxes by running the ffmpeg binary.
type FFmpeg struct {
	Binary    string // "ffmpeg" when empty
	TailLines int    // output lines kept for error reports
	logger    *slog.Logger
}

// NewFFmpeg creates an ffmpeg-backed Remuxer.
func NewFFmpeg(binary string) *FFmpeg {
	return &FFmpeg{
		Binary:    binary,
		TailLines: defaultTailLines,
		logger:    logging.GetLogger("remux"),
	}
}

// Remux runs ffmpeg synchronously. On success the silent file is removed;
// on failure it is kept and an *Error carrying the output tail is returned.
func (f *FFmpeg) Remux(ctx context.Context, original, silent, output string) (Result, error) {
	logger := f.logger
	if logger == nil {
		logger = logging.GetLogger("remux")
	}

	cmd, err := ffmpeg.BuildRemuxCommand(&ffmpeg.RemuxParams{
		Binary:   f.Binary,
		Original: original,
		Silent:   silent,
		Output:   output,
	})
	if err != nil {
		return Result{}, &Error{Original: original, Silent: silent, ExitCode: -1, Err: err}
	}

	tail := logging.NewRingBuffer(f.TailLines)
	capture := process.OutputHandlerFunc(func(_, line string) {
		captureLine(tail, line)
	})

	p := process.NewProcessWithOutput("remux", cmd, logger, capture)
	p.SetLogParser(logging.GetLogger("ffmpeg"), ffmpeg.ParseLogLevel)

	logger.Info("Remuxing audio", "original", original, "output", output)
	code := p.RunContext(ctx)
	res := Result{Output: output, ExitCode: code, Log: tail.Messages()}

	if code != 0 {
		remuxErr := &Error{Original: original, Silent: silent, ExitCode: code, Log: res.Log}
		if ctxErr := ctx.Err(); ctxErr != nil {
			remuxErr.Err = ctxErr
		}
		return res, remuxErr
	}

	if err := os.Remove(silent); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to remove intermediate file", "path", silent, "error", err)
	}
	return res, nil
}

// captureLine keeps line as ffmpeg printed it, tagged with its ffmpeg level.
func captureLine(tail *logging.RingBuffer, line string) {
	level, _ := ffmpeg.ParseLogLevel(line)
	tail.Write(logging.LogEntry{Timestamp: time.Now(), Level: level, Module: "ffmpeg", Message: line})
}
