package video

import (
	"context"
	"image"

	"github.com/smazurov/depthvideo/internal/ffmpeg"
)

// FrameSource yields decoded frames until io.EOF.
type FrameSource interface {
	Next() (*image.NRGBA, error)
	Close() error
}

// FrameSink accepts composited frames for one output file.
type FrameSink interface {
	Write(img image.Image) error
	Close() error
}

// Opener probes inputs and opens decoders and encoders.
type Opener interface {
	Probe(ctx context.Context, path string) (Info, error)
	OpenReader(ctx context.Context, info Info) (FrameSource, error)
	OpenWriter(ctx context.Context, path string, params ffmpeg.EncodeParams) (FrameSink, error)
}

// FFmpegOpener is the Opener backed by the ffmpeg and ffprobe binaries.
type FFmpegOpener struct{}

// Probe implements Opener.
func (FFmpegOpener) Probe(ctx context.Context, path string) (Info, error) {
	return Probe(ctx, path)
}

// OpenReader implements Opener.
func (FFmpegOpener) OpenReader(ctx context.Context, info Info) (FrameSource, error) {
	r, err := OpenReader(ctx, info)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// OpenWriter implements Opener.
func (FFmpegOpener) OpenWriter(ctx context.Context, path string, params ffmpeg.EncodeParams) (FrameSink, error) {
	w, err := OpenWriter(ctx, path, params)
	if err != nil {
		return nil, err
	}
	return w, nil
}
