package ffmpeg

import "testing"

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantLevel string
		wantMsg   string
	}{
		{"plain level", "[error] Stream map '0:a' matches no streams.", "error", "Stream map '0:a' matches no streams."},
		{"component and level", "[mp4 @ 0x55d0] [warning] track 1: codec frame size is not set", "warning", "[mp4 @ 0x55d0] track 1: codec frame size is not set"},
		{"component only", "[mp4 @ 0x55d0] muxing", "info", "[mp4 @ 0x55d0] muxing"},
		{"no prefix", "frame=  120 fps= 30", "info", "frame=  120 fps= 30"},
		{"unknown tag", "[foo] bar", "info", "[foo] bar"},
		{"unterminated", "[error message", "info", "[error message"},
		{"empty", "", "info", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, msg := ParseLogLevel(tt.line)
			if level != tt.wantLevel {
				t.Errorf("level = %q, want %q", level, tt.wantLevel)
			}
			if msg != tt.wantMsg {
				t.Errorf("msg = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}
