package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smazurov/depthvideo/internal/events"
)

func TestSubscribeCountsEvents(t *testing.T) {
	bus := events.New()
	unsub := Subscribe(bus)
	defer unsub()

	before := GetTotals()

	for i := range 3 {
		bus.Publish(events.FrameRenderedEvent{Input: "a.mp4", Frame: i + 1, Infer: 20 * time.Millisecond, Duration: 30 * time.Millisecond})
	}
	bus.Publish(events.FileCompletedEvent{Input: "a.mp4", Frames: 3, Duration: time.Second})
	bus.Publish(events.FileCompletedEvent{Input: "b.mp4", Stage: "probe", Error: "no video stream"})
	bus.Publish(events.RemuxCompletedEvent{Input: "a.mp4"})
	bus.Publish(events.RemuxCompletedEvent{Input: "c.mp4", ExitCode: 1, Error: "exit status 1"})
	bus.Publish(events.RemuxCompletedEvent{Input: "d.mp4", Skipped: true})
	bus.Flush()

	after := GetTotals()
	want := Totals{
		FilesCompleted: before.FilesCompleted + 1,
		FilesFailed:    before.FilesFailed + 1,
		Frames:         before.Frames + 3,
		RemuxSuccess:   before.RemuxSuccess + 1,
		RemuxFailed:    before.RemuxFailed + 1,
		RemuxSkipped:   before.RemuxSkipped + 1,
	}
	if after != want {
		t.Errorf("totals = %+v, want %+v", after, want)
	}
}

func TestWriteTextfile(t *testing.T) {
	bus := events.New()
	unsub := Subscribe(bus)
	defer unsub()

	bus.Publish(events.FrameRenderedEvent{Input: "t.mp4", Frame: 1, Infer: time.Millisecond})
	bus.Publish(events.FileCompletedEvent{Input: "t.mp4", Frames: 10, Duration: 2 * time.Second})
	bus.Flush()

	path := filepath.Join(t.TempDir(), "depthvideo.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	body := string(data)
	for _, want := range []string{
		"depthvideo_pipeline_frames_rendered_total",
		"depthvideo_model_inference_seconds_bucket",
		`depthvideo_pipeline_files_total{result="completed"}`,
		`depthvideo_pipeline_processing_fps{input="t.mp4"} 5`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}
