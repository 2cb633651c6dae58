package video

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	ffmpeggo "github.com/u2takey/ffmpeg-go"
)

// Info describes an input video. It is read once per file.
type Info struct {
	Path      string
	Width     int
	Height    int
	FrameRate string  // exact rational from ffprobe, e.g. 30000/1001
	FPS       float64 // FrameRate as a float
	Frames    int     // 0 when the container does not say
	HasAudio  bool
	Rotation  int     // display rotation in degrees; Width and Height are already display-oriented
}

type sideData struct {
	SideDataType string  `json:"side_data_type"`
	Rotation     float64 `json:"rotation"`
}

type probeOutput struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		AvgFrameRate string `json:"avg_frame_rate"`
		RFrameRate   string `json:"r_frame_rate"`
		NbFrames     string `json:"nb_frames"`
		Tags         struct {
			Rotate string `json:"rotate"`
		} `json:"tags"`
		SideDataList []sideData `json:"side_data_list"`
	} `json:"streams"`
}

// Probe reads stream metadata with ffprobe.
func Probe(ctx context.Context, path string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	out, err := ffmpeggo.Probe(path)
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	info, err := parseProbe(out)
	if err != nil {
		return Info{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	info.Path = path
	return info, nil
}

// parseProbe extracts Info from ffprobe JSON. The first video stream wins.
func parseProbe(data string) (Info, error) {
	var out probeOutput
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return Info{}, fmt.Errorf("failed to parse probe output: %w", err)
	}

	var info Info
	found := false
	for _, s := range out.Streams {
		switch s.CodecType {
		case "audio":
			info.HasAudio = true
		case "video":
			if found {
				continue
			}
			found = true
			info.Width, info.Height = s.Width, s.Height
			// ffmpeg autorotates on decode, so frames come out display-oriented.
			info.Rotation = streamRotation(s.Tags.Rotate, s.SideDataList)
			if info.Rotation == 90 || info.Rotation == 270 {
				info.Width, info.Height = info.Height, info.Width
			}
			for _, rate := range []string{s.AvgFrameRate, s.RFrameRate} {
				if fps, ok := parseRational(rate); ok {
					info.FrameRate, info.FPS = rate, fps
					break
				}
			}
			if n, err := strconv.Atoi(s.NbFrames); err == nil && n > 0 {
				info.Frames = n
			}
		}
	}

	if !found {
		return Info{}, fmt.Errorf("no video stream")
	}
	if info.Width <= 0 || info.Height <= 0 {
		return Info{}, fmt.Errorf("invalid video size %dx%d", info.Width, info.Height)
	}
	if info.FrameRate == "" {
		return Info{}, fmt.Errorf("no frame rate")
	}
	return info, nil
}

// streamRotation returns the display rotation normalized to [0, 360). The
// display matrix side data wins over the legacy rotate tag.
func streamRotation(tag string, list []sideData) int {
	deg := 0.0
	if r, err := strconv.ParseFloat(tag, 64); err == nil {
		deg = r
	}
	for _, sd := range list {
		if sd.SideDataType == "Display Matrix" {
			deg = sd.Rotation
			break
		}
	}
	return (int(math.Round(deg))%360 + 360) % 360
}

// parseRational parses "num/den" or a plain number into a positive float.
func parseRational(s string) (float64, bool) {
	num, den, hasDen := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	d := 1.0
	if hasDen {
		if d, err = strconv.ParseFloat(den, 64); err != nil || d == 0 {
			return 0, false
		}
	}
	if v := n / d; v > 0 {
		return v, true
	}
	return 0, false
}
