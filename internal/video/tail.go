package video

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/smazurov/depthvideo/internal/logging"
)

const tailLines = 20

// tailWriter keeps the last lines written by an ffmpeg subprocess and
// logs each one at debug level.
type tailWriter struct {
	mu      sync.Mutex
	partial bytes.Buffer
	lines   *logging.RingBuffer
	module  string
	logger  *slog.Logger
}

func newTailWriter(module string) *tailWriter {
	return &tailWriter{
		lines:  logging.NewRingBuffer(tailLines),
		module: module,
		logger: logging.GetLogger(module),
	}
}

func (t *tailWriter) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.partial.Write(p)
	for {
		line, err := t.partial.ReadString('\n')
		if err != nil {
			// Incomplete line; keep it for the next write.
			t.partial.Reset()
			t.partial.WriteString(line)
			break
		}
		t.add(strings.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}

func (t *tailWriter) add(line string) {
	if line == "" {
		return
	}
	t.lines.Write(logging.LogEntry{Timestamp: time.Now(), Level: "info", Module: t.module, Message: line})
	t.logger.Debug(line)
}

// String returns the buffered tail, including any unterminated last line.
func (t *tailWriter) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	msgs := t.lines.Messages()
	if rest := strings.TrimSpace(t.partial.String()); rest != "" {
		msgs = append(msgs, rest)
	}
	return strings.Join(msgs, "\n")
}
