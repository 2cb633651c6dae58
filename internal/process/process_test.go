package process

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestProcess creates a Process with short timeouts for testing.
func newTestProcess(command string, handler OutputHandler) *Process {
	p := NewProcessWithOutput("test", command, testLogger(), handler)
	p.gracefulTimeout = 100 * time.Millisecond
	p.killTimeout = 100 * time.Millisecond
	return p
}

// runAsync runs RunContext in a goroutine and returns the exit code channel.
func runAsync(ctx context.Context, p *Process) <-chan int {
	done := make(chan int, 1)
	go func() {
		done <- p.RunContext(ctx)
	}()
	return done
}

// waitForExit waits for exit code with timeout, fails test on timeout.
func waitForExit(t *testing.T, done <-chan int, timeout time.Duration) int {
	t.Helper()
	select {
	case exitCode := <-done:
		return exitCode
	case <-time.After(timeout):
		t.Fatal("timeout waiting for process to exit")
		return -1
	}
}

type lineCollector struct {
	mu    sync.Mutex
	lines map[string][]string
}

func (c *lineCollector) HandleLine(source, line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lines == nil {
		c.lines = make(map[string][]string)
	}
	c.lines[source] = append(c.lines[source], line)
}

func (c *lineCollector) get(source string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines[source]...)
}

func TestRunExitCodes(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    int
	}{
		{"success", "true", 0},
		{"failure", "false", 1},
		{"custom code", `sh -c "exit 42"`, 42},
		{"missing binary", "/nonexistent/binary-for-test", 1},
		{"empty command", "   ", 1},
		{"unclosed quote", `sh -c "exit 0`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProcess(tt.command, nil)
			if got := waitForExit(t, runAsync(context.Background(), p), 2*time.Second); got != tt.want {
				t.Errorf("exit code = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOutputHandlerReceivesBothStreams(t *testing.T) {
	c := &lineCollector{}
	p := newTestProcess(`sh -c "echo out-line; echo err-line 1>&2"`, c)

	if code := p.Run(); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	if got := c.get("stdout"); len(got) != 1 || got[0] != "out-line" {
		t.Errorf("stdout lines = %v", got)
	}
	if got := c.get("stderr"); len(got) != 1 || got[0] != "err-line" {
		t.Errorf("stderr lines = %v", got)
	}
}

func TestLogParserReceivesLines(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	p := newTestProcess(`sh -c "echo '[warning] low disk'"`, nil)
	p.SetLogParser(testLogger(), func(line string) (string, string) {
		mu.Lock()
		seen = append(seen, line)
		mu.Unlock()
		return "warning", strings.TrimPrefix(line, "[warning] ")
	})

	if code := p.Run(); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || seen[0] != "[warning] low disk" {
		t.Errorf("parser saw %v", seen)
	}
}

func TestGracefulShutdown(t *testing.T) {
	// Process that handles SIGINT
	p := newTestProcess(`sh -c "trap 'exit 0' INT TERM; while :; do sleep 0.1; done"`, nil)
	p.gracefulTimeout = 500 * time.Millisecond

	done := runAsync(context.Background(), p)
	time.Sleep(100 * time.Millisecond)
	p.Shutdown()

	if exitCode := waitForExit(t, done, 1*time.Second); exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", exitCode)
	}
}

func TestContextCancelStopsProcess(t *testing.T) {
	p := newTestProcess(`sh -c "trap 'exit 3' INT; while :; do sleep 0.1; done"`, nil)
	p.gracefulTimeout = 500 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, p)
	time.Sleep(100 * time.Millisecond)
	cancel()

	if exitCode := waitForExit(t, done, 1*time.Second); exitCode != 3 {
		t.Errorf("expected exit code 3, got %d", exitCode)
	}
}

func TestForceKillOnTimeout(t *testing.T) {
	// Process that ignores SIGINT
	p := newTestProcess(`sh -c "trap '' INT; sleep 10"`, nil)
	p.gracefulTimeout = 50 * time.Millisecond
	p.killTimeout = 50 * time.Millisecond

	done := runAsync(context.Background(), p)
	time.Sleep(50 * time.Millisecond)
	p.Shutdown()

	if exitCode := waitForExit(t, done, 500*time.Millisecond); exitCode != ExitKilled {
		t.Errorf("expected exit code %d, got %d", ExitKilled, exitCode)
	}
}

func TestShutdownBeforeRun(t *testing.T) {
	p := newTestProcess("sleep 10", nil)
	p.Shutdown()

	if exitCode := waitForExit(t, runAsync(context.Background(), p), time.Second); exitCode == 0 {
		t.Error("expected non-zero exit code after early shutdown")
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{"simple", "ffmpeg -y -i in.mp4", []string{"ffmpeg", "-y", "-i", "in.mp4"}, false},
		{"double quotes", `ffmpeg -i "my video.mp4"`, []string{"ffmpeg", "-i", "my video.mp4"}, false},
		{"single quotes", `sh -c 'echo hi'`, []string{"sh", "-c", "echo hi"}, false},
		{"nested quote", `sh -c "echo 'x'"`, []string{"sh", "-c", "echo 'x'"}, false},
		{"escaped quote", `echo "a\"b"`, []string{"echo", `a"b`}, false},
		{"escaped backslash", `echo "a\\b"`, []string{"echo", `a\b`}, false},
		{"empty quoted", `echo ""`, []string{"echo", ""}, false},
		{"extra spaces", "  a   b  ", []string{"a", "b"}, false},
		{"empty", "", nil, false},
		{"unclosed", `echo "abc`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommand(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("arg %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}
