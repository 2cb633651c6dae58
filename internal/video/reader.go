package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"github.com/smazurov/depthvideo/internal/ffmpeg"
	"github.com/smazurov/depthvideo/internal/logging"
)

// Reader decodes a video into rgb24 frames.
type Reader struct {
	info   Info
	pipe   *io.PipeReader
	done   chan error
	cancel context.CancelFunc
	stderr *tailWriter
	buf    []byte
	frames int
	logger *slog.Logger
}

// OpenReader starts decoding info.Path.
func OpenReader(ctx context.Context, info Info) (*Reader, error) {
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", info.Width, info.Height)
	}

	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	r := &Reader{
		info:   info,
		pipe:   pr,
		done:   make(chan error, 1),
		cancel: cancel,
		stderr: newTailWriter("ffmpeg"),
		buf:    make([]byte, info.Width*info.Height*3),
		logger: logging.GetLogger("video").With("input", info.Path),
	}

	stream := ffmpeggo.Input(info.Path).Output("pipe:", ffmpeg.DecodeOutputArgs())
	// Pipes are carried in the stream context, so it is set first.
	stream.Context = ctx
	stream = stream.WithOutput(pw).WithErrorOutput(r.stderr)

	go func() {
		err := stream.Run()
		// Unblocks Next with io.EOF on success or the decode error otherwise.
		pw.CloseWithError(err)
		r.done <- err
	}()

	return r, nil
}

// Next returns the next frame, or io.EOF at the end of the stream. A
// truncated or failed decode also ends the stream with io.EOF.
func (r *Reader) Next() (*image.NRGBA, error) {
	if _, err := io.ReadFull(r.pipe, r.buf); err != nil {
		switch {
		case errors.Is(err, io.EOF):
		case errors.Is(err, io.ErrUnexpectedEOF):
			r.logger.Debug("Truncated frame at end of stream", "frames", r.frames)
		default:
			r.logger.Debug("Decode ended", "frames", r.frames, "error", err, "stderr", r.stderr.String())
		}
		return nil, io.EOF
	}

	r.frames++
	return rgbToNRGBA(r.buf, r.info.Width, r.info.Height), nil
}

// Close stops the decoder and waits for it to exit. Decode errors are not
// reported; they only end the stream.
func (r *Reader) Close() error {
	r.cancel()
	r.pipe.Close()
	<-r.done
	return nil
}

func rgbToNRGBA(buf []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, j := 0, 0; i < len(buf); i, j = i+3, j+4 {
		img.Pix[j] = buf[i]
		img.Pix[j+1] = buf[i+1]
		img.Pix[j+2] = buf[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}
