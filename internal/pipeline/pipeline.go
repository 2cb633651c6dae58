// Package pipeline runs inputs through decode, depth inference, rendering,
// encoding and the optional audio remux, one file and one frame at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/smazurov/depthvideo/internal/colormap"
	"github.com/smazurov/depthvideo/internal/depth"
	"github.com/smazurov/depthvideo/internal/events"
	"github.com/smazurov/depthvideo/internal/ffmpeg"
	"github.com/smazurov/depthvideo/internal/logging"
	"github.com/smazurov/depthvideo/internal/preprocess"
	"github.com/smazurov/depthvideo/internal/remux"
	"github.com/smazurov/depthvideo/internal/render"
	"github.com/smazurov/depthvideo/internal/video"
)

// Options are the per-run output settings.
type Options struct {
	OutDir       string
	OnlyDepth    bool
	WithSound    bool
	VideoCodec   string
	VideoQuality int
}

// Config holds the collaborators of a Runner.
type Config struct {
	Estimator depth.Estimator
	Palette   colormap.Palette
	Opener    video.Opener
	Remuxer   remux.Remuxer // nil disables the audio remux
	Bus       *events.Bus   // nil publishes nothing
	Options
}

// Runner processes inputs sequentially. Its handles are fixed at construction.
type Runner struct {
	cfg    Config
	logger *slog.Logger
}

// FileResult is the outcome of one input.
type FileResult struct {
	Input        string
	Output       string // final file: the sound file when remux succeeded
	Width        int
	Height       int
	FrameRate    string
	Frames       int
	Duration     time.Duration
	RemuxSkipped bool
	RemuxErr     error
}

// Summary aggregates a run.
type Summary struct {
	Total     int
	Completed int
	Failed    int
	Frames    int
	Files     []FileResult
	Errors    []error
}

// New validates cfg and creates a Runner.
func New(cfg Config) (*Runner, error) {
	if cfg.Estimator == nil {
		return nil, errors.New("pipeline: estimator is required")
	}
	if cfg.Opener == nil {
		return nil, errors.New("pipeline: opener is required")
	}
	if cfg.OutDir == "" {
		return nil, errors.New("pipeline: output directory is required")
	}
	if cfg.Palette.Name() == "" {
		cfg.Palette = colormap.Inferno
	}
	if cfg.WithSound && cfg.Remuxer == nil {
		cfg.Remuxer = remux.NewFFmpeg("")
	}
	return &Runner{cfg: cfg, logger: logging.GetLogger("pipeline")}, nil
}

// Run processes inputs in order. Per-file failures are logged and counted;
// only a failure to create the output directory or context cancellation
// stop the run.
func (r *Runner) Run(ctx context.Context, inputs []string) (Summary, error) {
	summary := Summary{Total: len(inputs)}

	if err := os.MkdirAll(r.cfg.OutDir, 0o755); err != nil {
		return summary, fmt.Errorf("failed to create output directory: %w", err)
	}

	for k, input := range inputs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		r.logger.Info("Processing", "progress", fmt.Sprintf("%d/%d", k+1, len(inputs)), "file", input)

		res, err := r.processFile(ctx, k+1, len(inputs), input)
		summary.Files = append(summary.Files, res)
		summary.Frames += res.Frames
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, err)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return summary, ctxErr
			}
			r.logger.Error("File failed", "file", input, "error", err)
			continue
		}
		summary.Completed++
	}

	return summary, nil
}

// ProcessFile processes a single input.
func (r *Runner) ProcessFile(ctx context.Context, input string) (FileResult, error) {
	return r.processFile(ctx, 1, 1, input)
}

func (r *Runner) processFile(ctx context.Context, index, total int, input string) (res FileResult, err error) {
	start := time.Now()
	res.Input = input
	logger := r.logger.With("file", input)

	defer func() {
		res.Duration = time.Since(start)
		ev := events.FileCompletedEvent{Input: input, Output: res.Output, Frames: res.Frames, Duration: res.Duration}
		var fe *FileError
		if errors.As(err, &fe) {
			ev.Stage = fe.Stage
		}
		if err != nil {
			ev.Error = err.Error()
		}
		r.publish(ev)
	}()

	info, err := r.cfg.Opener.Probe(ctx, input)
	if err != nil {
		return res, &FileError{Path: input, Stage: StageProbe, Err: err}
	}
	res.Width, res.Height, res.FrameRate = info.Width, info.Height, info.FrameRate

	outPath := video.OutputPath(r.cfg.OutDir, input, video.SuffixDepth)
	outWidth := render.OutputWidth(info.Width, r.cfg.OnlyDepth)

	src, err := r.cfg.Opener.OpenReader(ctx, info)
	if err != nil {
		return res, &FileError{Path: input, Stage: StageOpen, Err: err}
	}
	sink, err := r.cfg.Opener.OpenWriter(ctx, outPath, ffmpeg.EncodeParams{
		Width:     outWidth,
		Height:    info.Height,
		FrameRate: info.FrameRate,
		Codec:     r.cfg.VideoCodec,
		Quality:   r.cfg.VideoQuality,
	})
	if err != nil {
		return res, &FileError{Path: input, Stage: StageOpen, Err: multierr.Append(err, src.Close())}
	}

	logger.Debug("Opened file", "size", fmt.Sprintf("%dx%d", info.Width, info.Height),
		"frame_rate", info.FrameRate, "frames", info.Frames, "output", outPath)
	r.publish(events.FileStartedEvent{
		Index:     index,
		Total:     total,
		Input:     input,
		Output:    outPath,
		Width:     info.Width,
		Height:    info.Height,
		FrameRate: info.FrameRate,
		FPS:       info.FPS,
		Frames:    info.Frames,
		Timestamp: start,
	})

	frames, renderErr := r.renderFrames(ctx, input, info, src, sink)
	res.Frames = frames
	closeErr := multierr.Combine(src.Close(), sink.Close())
	if renderErr != nil {
		if closeErr != nil {
			logger.Debug("Close after failure", "error", closeErr)
		}
		return res, renderErr
	}
	if closeErr != nil {
		return res, &FileError{Path: input, Stage: StageFinalize, Err: closeErr}
	}
	res.Output = outPath
	logger.Info("Wrote depth video", "output", outPath, "frames", frames)

	if r.cfg.WithSound {
		r.remuxAudio(ctx, info, &res)
	}
	return res, nil
}

// renderFrames pushes every decoded frame through the model and into sink.
func (r *Runner) renderFrames(ctx context.Context, input string, info video.Info, src video.FrameSource, sink video.FrameSink) (int, error) {
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return n, &FileError{Path: input, Stage: StageDecode, Err: err}
		}

		frame, err := src.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, &FileError{Path: input, Stage: StageDecode, Err: err}
		}

		began := time.Now()
		in, err := preprocess.Preprocess(frame)
		if err != nil {
			return n, &FileError{Path: input, Stage: StagePreprocess, Err: err}
		}

		inferStart := time.Now()
		m, err := r.cfg.Estimator.Estimate(ctx, in)
		if err != nil {
			return n, &FileError{Path: input, Stage: StageInfer, Err: err}
		}
		inferTime := time.Since(inferStart)

		out, err := render.Render(m, info.Height, info.Width, frame, r.cfg.Palette, r.cfg.OnlyDepth)
		if err != nil {
			return n, &FileError{Path: input, Stage: StageRender, Err: err}
		}
		if err := sink.Write(out); err != nil {
			return n, &FileError{Path: input, Stage: StageWrite, Err: err}
		}

		n++
		r.publish(events.FrameRenderedEvent{
			Input:    input,
			Frame:    n,
			Frames:   info.Frames,
			Infer:    inferTime,
			Duration: time.Since(began),
		})
	}
}

// remuxAudio copies the input's audio into the rendered file. Failures are
// reported on res and never fail the file.
func (r *Runner) remuxAudio(ctx context.Context, info video.Info, res *FileResult) {
	input, silent := res.Input, res.Output
	logger := r.logger.With("file", input)

	if !info.HasAudio {
		logger.Warn("Input has no audio stream, keeping video without sound")
		res.RemuxSkipped = true
		r.publish(events.RemuxCompletedEvent{Input: input, Output: silent, Skipped: true})
		return
	}

	soundPath := video.OutputPath(r.cfg.OutDir, input, video.SuffixSound)
	out, err := r.cfg.Remuxer.Remux(ctx, input, silent, soundPath)
	if err != nil {
		res.RemuxErr = &FileError{Path: input, Stage: StageRemux, Err: err}
		logger.Error("Audio remux failed, keeping video without sound",
			"exit_code", out.ExitCode, "output", strings.Join(out.Log, "\n"))
		r.publish(events.RemuxCompletedEvent{Input: input, Output: silent, ExitCode: out.ExitCode, Error: err.Error()})
		return
	}

	res.Output = soundPath
	logger.Info("Added audio", "output", soundPath)
	r.publish(events.RemuxCompletedEvent{Input: input, Output: soundPath, ExitCode: out.ExitCode})
}

func (r *Runner) publish(ev events.Event) {
	if r.cfg.Bus != nil {
		r.cfg.Bus.Publish(ev)
	}
}
