package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/smazurov/depthvideo/cmd"
	"github.com/smazurov/depthvideo/internal/colormap"
	"github.com/smazurov/depthvideo/internal/config"
	"github.com/smazurov/depthvideo/internal/depth"
	"github.com/smazurov/depthvideo/internal/events"
	"github.com/smazurov/depthvideo/internal/logging"
	"github.com/smazurov/depthvideo/internal/metrics"
	"github.com/smazurov/depthvideo/internal/pipeline"
	"github.com/smazurov/depthvideo/internal/progress"
	"github.com/smazurov/depthvideo/internal/report"
	"github.com/smazurov/depthvideo/internal/version"
	"github.com/smazurov/depthvideo/internal/video"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `doc:"Path to configuration file" short:"c" default:"depthvideo.toml"`

	// Input/output
	VideoPath    string `doc:"Video file, .txt list of paths, or directory" toml:"input.video_path" env:"VIDEO_PATH"`
	Outdir       string `doc:"Output directory" default:"./vis_video_depth" toml:"output.dir" env:"OUTDIR"`
	OnlyDepth    bool   `doc:"Write the depth map only, without the source frame" default:"false" toml:"output.only_depth" env:"ONLY_DEPTH"`
	WithSound    bool   `doc:"Remux the original audio track with ffmpeg" default:"false" toml:"output.with_sound" env:"WITH_SOUND"`
	Colormap     string `doc:"Depth palette name (see the colormaps command)" default:"inferno" toml:"output.colormap" env:"COLORMAP"`
	VideoCodec   string `doc:"ffmpeg codec for the rendered video" default:"mpeg4" toml:"output.video_codec" env:"VIDEO_CODEC"`
	VideoQuality int    `doc:"ffmpeg q:v for the rendered video" default:"3" toml:"output.video_quality" env:"VIDEO_QUALITY"`

	// Model settings
	Encoder   string `doc:"Model encoder (vits, vitb, vitl)" default:"vitl" toml:"model.encoder" env:"ENCODER"`
	Backend   string `doc:"Inference backend (remote, tflite)" default:"remote" toml:"model.backend" env:"BACKEND"`
	ModelURL  string `doc:"Inference server base URL" default:"http://localhost:8000" toml:"model.url" env:"MODEL_URL"`
	ModelsDir string `doc:"Directory holding .tflite checkpoints" default:"./checkpoints" toml:"model.dir" env:"MODELS_DIR"`
	Threads   int    `doc:"tflite interpreter threads, 0 for all CPUs" default:"0" toml:"model.threads" env:"THREADS"`

	// Run outputs
	MetricsFile string `doc:"Write Prometheus metrics to this textfile at exit" toml:"metrics.file" env:"METRICS_FILE"`
	Report      string `doc:"Write a TOML run report to this path" toml:"report.path" env:"REPORT"`
	Progress    bool   `doc:"Show a progress bar when attached to a terminal" default:"true" toml:"progress.enabled" env:"PROGRESS"`

	// Logging settings
	LoggingLevel    string `doc:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat   string `doc:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingPipeline string `doc:"Pipeline logging level" default:"info" toml:"logging.pipeline" env:"LOGGING_PIPELINE"`
	LoggingVideo    string `doc:"Video I/O logging level" default:"info" toml:"logging.video" env:"LOGGING_VIDEO"`
	LoggingRemux    string `doc:"Audio remux logging level" default:"info" toml:"logging.remux" env:"LOGGING_REMUX"`
	LoggingDepth    string `doc:"Inference backend logging level" default:"info" toml:"logging.depth" env:"LOGGING_DEPTH"`
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Load configuration automatically
		if loadErr := config.LoadConfig(opts, cli.Root()); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		// Module levels from [logging.modules] in the config file, then the
		// per-module flags on top.
		loggingConfig := config.LoadLoggingConfig(opts.Config)
		loggingConfig.Level = opts.LoggingLevel
		loggingConfig.Format = opts.LoggingFormat
		loggingConfig.Modules["pipeline"] = opts.LoggingPipeline
		loggingConfig.Modules["video"] = opts.LoggingVideo
		loggingConfig.Modules["remux"] = opts.LoggingRemux
		loggingConfig.Modules["depth"] = opts.LoggingDepth
		logging.Initialize(loggingConfig)

		hooks.OnStart(func() {
			os.Exit(run(opts))
		})
	})

	cli.Root().Use = "depthvideo"
	cli.Root().Short = "Render depth maps for videos"
	cli.Root().Version = version.Get().String()

	cli.Root().AddCommand(cmd.CreateColormapsCmd())
	cli.Root().AddCommand(cmd.CreateProbeCmd())
	cli.Root().AddCommand(cmd.CreateVersionCmd())

	// Run the CLI
	cli.Run()
}

// run processes every discovered input and returns the process exit code.
// Only startup failures are fatal; per-file failures are logged and reported.
func run(opts *Options) int {
	logger := logging.GetLogger("main")

	if opts.VideoPath == "" {
		logger.Error("No input given, set --video-path")
		return 1
	}

	encoder, err := depth.ParseEncoder(opts.Encoder)
	if err != nil {
		logger.Error("Invalid encoder", "error", err)
		return 1
	}

	palette, ok := colormap.Lookup(opts.Colormap)
	if !ok {
		logger.Warn("Unknown colormap, using default", "colormap", opts.Colormap, "default", colormap.DefaultName)
		palette = colormap.Inferno
	}

	inputs, err := video.Discover(opts.VideoPath)
	if err != nil {
		logger.Error("Failed to discover inputs", "path", opts.VideoPath, "error", err)
		return 1
	}
	if len(inputs) == 0 {
		logger.Error("No inputs found", "path", opts.VideoPath)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Loading model",
		"encoder", encoder,
		"checkpoint", encoder.Checkpoint(),
		"params_m", encoder.Params(),
		"backend", opts.Backend)

	estimator, err := depth.Open(ctx, depth.Options{
		Backend:   opts.Backend,
		Encoder:   encoder,
		ModelURL:  opts.ModelURL,
		ModelsDir: opts.ModelsDir,
		Threads:   opts.Threads,
	})
	if err != nil {
		logger.Error("Failed to load model", "error", err)
		return 1
	}
	defer func() {
		if closeErr := estimator.Close(); closeErr != nil {
			logger.Warn("Failed to close model", "error", closeErr)
		}
	}()

	// Create event bus for in-process event handling
	bus := events.New()
	defer metrics.Subscribe(bus)()

	collector := report.NewCollector(report.Report{
		Version:   version.Version,
		Encoder:   string(encoder),
		Backend:   opts.Backend,
		Colormap:  palette.Name(),
		OnlyDepth: opts.OnlyDepth,
		WithSound: opts.WithSound,
		Started:   time.Now(),
	})
	defer collector.Subscribe(bus)()

	if opts.Progress && progress.IsTerminal(os.Stdout) {
		defer progress.New(os.Stdout).Subscribe(bus)()
	}

	runner, err := pipeline.New(pipeline.Config{
		Estimator: estimator,
		Palette:   palette,
		Opener:    video.FFmpegOpener{},
		Bus:       bus,
		Options: pipeline.Options{
			OutDir:       opts.Outdir,
			OnlyDepth:    opts.OnlyDepth,
			WithSound:    opts.WithSound,
			VideoCodec:   opts.VideoCodec,
			VideoQuality: opts.VideoQuality,
		},
	})
	if err != nil {
		logger.Error("Failed to create pipeline", "error", err)
		return 1
	}

	summary, runErr := runner.Run(ctx, inputs)
	bus.Flush()

	if opts.MetricsFile != "" {
		if writeErr := metrics.WriteTextfile(opts.MetricsFile); writeErr != nil {
			logger.Warn("Failed to write metrics", "path", opts.MetricsFile, "error", writeErr)
		}
	}
	if opts.Report != "" {
		if writeErr := report.Write(opts.Report, collector.Report()); writeErr != nil {
			logger.Warn("Failed to write report", "path", opts.Report, "error", writeErr)
		}
	}

	logger.Info("Run finished",
		"total", summary.Total,
		"completed", summary.Completed,
		"failed", summary.Failed,
		"frames", summary.Frames)

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			logger.Warn("Interrupted")
		} else {
			logger.Error("Run failed", "error", runErr)
		}
		return 1
	}
	return 0
}
