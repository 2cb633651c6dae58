package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"

	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"github.com/smazurov/depthvideo/internal/ffmpeg"
)

var errEncoderExited = errors.New("encoder exited")

// Writer encodes rgb24 frames into a video file.
type Writer struct {
	path   string
	params ffmpeg.EncodeParams
	pipe   *io.PipeWriter
	done   chan error
	cancel context.CancelFunc
	stderr *tailWriter
	buf    []byte
	frames int
	closed bool
}

// OpenWriter starts an encoder writing to path. Width, height and frame rate
// are fixed for the file.
func OpenWriter(ctx context.Context, path string, params ffmpeg.EncodeParams) (*Writer, error) {
	if params.Width <= 0 || params.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", params.Width, params.Height)
	}

	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	w := &Writer{
		path:   path,
		params: params,
		pipe:   pw,
		done:   make(chan error, 1),
		cancel: cancel,
		stderr: newTailWriter("ffmpeg"),
		buf:    make([]byte, params.Width*params.Height*3),
	}

	stream := ffmpeggo.Input("pipe:", ffmpeg.EncodeInputArgs(&params)).
		Output(path, ffmpeg.EncodeOutputArgs(&params)).
		OverWriteOutput()
	stream.Context = ctx
	stream = stream.WithInput(pr).WithErrorOutput(w.stderr)

	go func() {
		err := stream.Run()
		// Pending writes fail instead of blocking on a dead encoder.
		pr.CloseWithError(errEncoderExited)
		w.done <- err
	}()

	return w, nil
}

// Write encodes exactly one frame. The image must match the writer's size.
func (w *Writer) Write(img image.Image) error {
	b := img.Bounds()
	if b.Dx() != w.params.Width || b.Dy() != w.params.Height {
		return fmt.Errorf("frame is %dx%d, writer expects %dx%d", b.Dx(), b.Dy(), w.params.Width, w.params.Height)
	}

	fillRGB(w.buf, img)
	if _, err := w.pipe.Write(w.buf); err != nil {
		return fmt.Errorf("write frame %d: %w: %s", w.frames, err, w.stderr.String())
	}
	w.frames++
	return nil
}

// Close flushes the encoder and reports its exit status. A failed encode
// removes the partial file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	w.pipe.Close()
	err := <-w.done
	w.cancel()
	if err != nil {
		os.Remove(w.path)
		return fmt.Errorf("encoder failed for %s: %w: %s", w.path, err, w.stderr.String())
	}
	return nil
}

// fillRGB packs img into buf as rgb24.
func fillRGB(buf []byte, img image.Image) {
	b := img.Bounds()
	if n, ok := img.(*image.NRGBA); ok {
		w := b.Dx()
		for y := 0; y < b.Dy(); y++ {
			row := n.Pix[y*n.Stride : y*n.Stride+w*4]
			dst := buf[y*w*3 : (y+1)*w*3]
			for x := 0; x < w; x++ {
				dst[x*3] = row[x*4]
				dst[x*3+1] = row[x*4+1]
				dst[x*3+2] = row[x*4+2]
			}
		}
		return
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			buf[i], buf[i+1], buf[i+2] = uint8(r>>8), uint8(g>>8), uint8(bl>>8)
			i += 3
		}
	}
}
