package ffmpeg

// EncodeParams describes the raw-frame encoder for one output file.
// Width, height and frame rate are fixed for the lifetime of the file.
type EncodeParams struct {
	Width     int
	Height    int
	FrameRate string // ffprobe rational, e.g. 30000/1001

	Codec   string // mpeg4 matches the mp4v fourcc
	Quality int    // q:v, 0 = encoder default
	PixFmt  string // yuv420p unless set
}

// RemuxParams describes an audio remux: audio from Original, video from Silent.
type RemuxParams struct {
	Binary   string // ffmpeg executable, "ffmpeg" when empty
	Original string
	Silent   string
	Output   string
}
