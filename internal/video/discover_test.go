package video

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDiscoverSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	writeFile(t, path, "")

	got, err := Discover(path)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if diff := cmp.Diff([]string{path}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscoverList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "inputs.txt")
	writeFile(t, path, "a.mp4\n\n  /videos/b.mov  \r\nc.avi")

	got, err := Discover(path)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if diff := cmp.Diff([]string{"a.mp4", "/videos/b.mov", "c.avi"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscoverDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mp4", ".hidden.mp4", "a.mp4", "C.mp4"} {
		writeFile(t, filepath.Join(dir, name), "")
	}

	got, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{
		filepath.Join(dir, "C.mp4"),
		filepath.Join(dir, "a.mp4"),
		filepath.Join(dir, "b.mp4"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscoverMissing(t *testing.T) {
	if _, err := Discover(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		input, suffix, want string
	}{
		{"/in/clip.mp4", SuffixDepth, "out/clip_video_depth.mp4"},
		{"/in/my.holiday.mov", SuffixDepth, "out/my.holiday_video_depth.mp4"},
		{"noext", SuffixDepth, "out/noext_video_depth.mp4"},
		{"clip.mp4", SuffixSound, "out/clip_video_depth_sound.mp4"},
	}
	for _, tt := range tests {
		if got := OutputPath("out", tt.input, tt.suffix); got != tt.want {
			t.Errorf("OutputPath(%q, %q) = %q, want %q", tt.input, tt.suffix, got, tt.want)
		}
	}
}
