package ffmpeg

import (
	"fmt"
	"strings"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
)

const (
	// RawPixelFormat is the frame layout exchanged with ffmpeg over pipes.
	RawPixelFormat = "rgb24"

	defaultCodec  = "mpeg4"
	defaultPixFmt = "yuv420p"
)

// BaseWith returns the ffmpeg command with standard flags. An empty binary
// means "ffmpeg" from PATH.
func BaseWith(binary string) string {
	if binary == "" {
		binary = "ffmpeg"
	}
	return quoteIfNeeded(binary) + " -hide_banner"
}

// BuildRemuxCommand builds the command that copies the audio of the
// original input next to the first video stream of the silent render.
// Paths are quoted so that process.parseCommand splits them back intact.
func BuildRemuxCommand(p *RemuxParams) (string, error) {
	if p.Original == "" || p.Silent == "" || p.Output == "" {
		return "", fmt.Errorf("remux requires original, silent and output paths")
	}

	var cmd strings.Builder
	cmd.WriteString(BaseWith(p.Binary))
	cmd.WriteString(" -loglevel level+warning")
	cmd.WriteString(" -y")
	cmd.WriteString(" -i " + quote(p.Original))
	cmd.WriteString(" -i " + quote(p.Silent))
	cmd.WriteString(" -map 0:a -map 1:v:0")
	cmd.WriteString(" -c:v copy")
	cmd.WriteString(" " + quote(p.Output))
	return cmd.String(), nil
}

// DecodeOutputArgs returns output arguments that make ffmpeg write raw
// frames to a pipe, one rgb24 frame per width*height*3 bytes.
func DecodeOutputArgs() ffmpeggo.KwArgs {
	return ffmpeggo.KwArgs{
		"format":   "rawvideo",
		"pix_fmt":  RawPixelFormat,
		"loglevel": "error",
	}
}

// EncodeInputArgs returns input arguments for raw rgb24 frames on stdin.
func EncodeInputArgs(p *EncodeParams) ffmpeggo.KwArgs {
	args := ffmpeggo.KwArgs{
		"format":  "rawvideo",
		"pix_fmt": RawPixelFormat,
		"s":       fmt.Sprintf("%dx%d", p.Width, p.Height),
	}
	if p.FrameRate != "" {
		args["framerate"] = p.FrameRate
	}
	return args
}

// EncodeOutputArgs returns output arguments for the rendered file.
func EncodeOutputArgs(p *EncodeParams) ffmpeggo.KwArgs {
	codec := p.Codec
	if codec == "" {
		codec = defaultCodec
	}
	pixFmt := p.PixFmt
	if pixFmt == "" {
		pixFmt = defaultPixFmt
	}

	args := ffmpeggo.KwArgs{
		"c:v":      codec,
		"pix_fmt":  pixFmt,
		"loglevel": "error",
	}
	if p.Quality > 0 {
		args["q:v"] = p.Quality
	}
	// 4:2:0 chroma needs even dimensions.
	if pixFmt == defaultPixFmt && (p.Width%2 != 0 || p.Height%2 != 0) {
		args["vf"] = "pad=ceil(iw/2)*2:ceil(ih/2)*2"
	}
	return args
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, " \t\"'\\") {
		return quote(s)
	}
	return s
}

// quote wraps a path in double quotes, escaping backslashes and quotes.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
