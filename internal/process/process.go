package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/smazurov/depthvideo/internal/logging"
)

// ExitKilled is returned when the process had to be killed after the grace period.
const ExitKilled = 137

// OutputHandler receives output lines from the subprocess.
// HandleLine may be called concurrently for stdout and stderr.
type OutputHandler interface {
	HandleLine(source, line string)
}

// OutputHandlerFunc adapts a function to OutputHandler.
type OutputHandlerFunc func(source, line string)

// HandleLine calls f(source, line).
func (f OutputHandlerFunc) HandleLine(source, line string) {
	f(source, line)
}

// LogParser parses a log line and returns the log level and message.
type LogParser func(line string) (level, msg string)

// Process runs one subprocess to completion.
type Process struct {
	id              string
	command         string
	cmd             *exec.Cmd
	logger          logging.Logger
	processLogger   logging.Logger // logger for process output (nil = use logger)
	logParser       LogParser      // nil = every line at info
	ctx             context.Context
	cancel          context.CancelFunc
	outputHandler   OutputHandler
	gracefulTimeout time.Duration // SIGINT to SIGKILL
	killTimeout     time.Duration // SIGKILL to giving up
}

// NewProcessWithOutput creates a new process with an output handler.
// The handler receives each line of stdout/stderr from the subprocess.
func NewProcessWithOutput(id, command string, logger logging.Logger, handler OutputHandler) *Process {
	ctx, cancel := context.WithCancel(context.Background())
	return &Process{
		id:              id,
		command:         command,
		logger:          logger,
		ctx:             ctx,
		cancel:          cancel,
		outputHandler:   handler,
		gracefulTimeout: 5 * time.Second,
		killTimeout:     5 * time.Second,
	}
}

// Command returns the command string.
func (p *Process) Command() string {
	return p.command
}

// SetLogParser sets a separate logger and level parser for process output.
func (p *Process) SetLogParser(logger logging.Logger, parser LogParser) {
	p.processLogger = logger
	p.logParser = parser
}

// Shutdown stops a running process. Safe to call before Run or after exit.
func (p *Process) Shutdown() {
	p.cancel()
}

// Run starts the subprocess and blocks until it exits or Shutdown is called.
func (p *Process) Run() int {
	return p.RunContext(context.Background())
}

// RunContext starts the subprocess and blocks until it exits, ctx is done,
// or Shutdown is called. Returns the exit code; 1 for parse or start
// failures and ExitKilled when the process had to be killed.
func (p *Process) RunContext(ctx context.Context) int {
	processDone, err := p.start()
	if err != nil {
		return 1
	}

	select {
	case processErr := <-processDone:
		exitCode := exitCodeFromError(processErr)
		if processErr != nil && exitCode == 1 {
			p.logger.Error("Process exited with error", "id", p.id, "error", processErr)
		}
		p.logger.Debug("Process exited", "id", p.id, "exit_code", exitCode)
		return exitCode
	case <-ctx.Done():
		p.logger.Info("Context cancelled, stopping process", "id", p.id)
	case <-p.ctx.Done():
		p.logger.Info("Shutdown requested, stopping process", "id", p.id)
	}

	p.sendStopSignal()
	return p.waitForExit(processDone)
}

// start parses the command and launches it. The returned channel yields the
// Wait result once both output streams are drained.
func (p *Process) start() (<-chan error, error) {
	args, err := parseCommand(p.command)
	if err != nil {
		p.logger.Error("Failed to parse command", "id", p.id, "error", err)
		return nil, err
	}
	if len(args) == 0 {
		p.logger.Error("Empty command", "id", p.id)
		return nil, errors.New("empty command")
	}

	p.cmd = exec.Command(args[0], args[1:]...)
	p.cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := p.cmd.StdoutPipe()
	if err != nil {
		p.logger.Error("Failed to create stdout pipe", "id", p.id, "error", err)
		return nil, err
	}
	stderr, err := p.cmd.StderrPipe()
	if err != nil {
		p.logger.Error("Failed to create stderr pipe", "id", p.id, "error", err)
		return nil, err
	}

	if err := p.cmd.Start(); err != nil {
		p.logger.Error("Failed to start process", "id", p.id, "error", err, "command", p.command)
		return nil, err
	}

	p.logger.Debug("Process started", "id", p.id, "pid", p.cmd.Process.Pid, "command", p.command)

	var output sync.WaitGroup
	output.Add(2)
	go func() {
		defer output.Done()
		p.streamOutput(stdout, "stdout")
	}()
	go func() {
		defer output.Done()
		p.streamOutput(stderr, "stderr")
	}()

	processDone := make(chan error, 1)
	go func() {
		// Wait closes the pipes, so both readers must be drained first.
		output.Wait()
		processDone <- p.cmd.Wait()
	}()

	return processDone, nil
}

// exitCodeFromError extracts exit code from process error.
// Returns 0 for nil error, the exit code for ExitError, or 1 for other errors.
func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

// sendStopSignal sends SIGINT to the subprocess without waiting.
func (p *Process) sendStopSignal() {
	if p.cmd == nil || p.cmd.Process == nil {
		return
	}
	p.logger.Debug("Sending SIGINT to process", "id", p.id, "pid", p.cmd.Process.Pid)
	if err := p.cmd.Process.Signal(syscall.SIGINT); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.logger.Warn("Failed to send SIGINT", "id", p.id, "error", err)
	}
}

// waitForExit waits for the process to exit, force-killing it after the grace period.
func (p *Process) waitForExit(processDone <-chan error) int {
	select {
	case err := <-processDone:
		return exitCodeFromError(err)
	case <-time.After(p.gracefulTimeout):
		p.logger.Warn("Graceful shutdown timeout, forcing kill", "id", p.id, "timeout", p.gracefulTimeout)
		if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			p.logger.Error("Failed to kill process", "id", p.id, "error", err)
		}
		select {
		case <-processDone:
		case <-time.After(p.killTimeout):
			p.logger.Error("Process did not exit after kill signal", "id", p.id)
		}
		return ExitKilled
	}
}

// streamOutput forwards each output line to the handler and the logger.
func (p *Process) streamOutput(reader io.Reader, source string) {
	scanner := bufio.NewScanner(reader)

	logger := p.processLogger
	if logger == nil {
		logger = p.logger
	}

	for scanner.Scan() {
		line := scanner.Text()

		if p.outputHandler != nil {
			p.outputHandler.HandleLine(source, line)
		}

		level, msg := "info", line
		if p.logParser != nil {
			level, msg = p.logParser(line)
		}

		switch level {
		case "panic", "fatal", "error":
			logger.Error(msg, "id", p.id)
		case "warning":
			logger.Warn(msg, "id", p.id)
		case "verbose", "debug", "trace":
			logger.Debug(msg, "id", p.id)
		default:
			logger.Info(msg, "id", p.id)
		}
	}

	if err := scanner.Err(); err != nil {
		p.logger.Warn("Error reading output", "id", p.id, "source", source, "error", err)
	}
}

// parseCommand splits a command string into arguments.
// Single and double quotes group words; a backslash escapes the next rune.
func parseCommand(command string) ([]string, error) {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := rune(0)
	pending := false // an empty quoted argument still counts

	runes := []rune(strings.TrimSpace(command))

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\\' && i+1 < len(runes):
			i++
			current.WriteRune(runes[i])
			pending = true
		case r == '"' || r == '\'':
			switch {
			case !inQuote:
				inQuote = true
				quoteChar = r
				pending = true
			case r == quoteChar:
				inQuote = false
				quoteChar = 0
			default:
				current.WriteRune(r)
			}
		case r == ' ' && !inQuote:
			if pending {
				args = append(args, current.String())
				current.Reset()
				pending = false
			}
		default:
			current.WriteRune(r)
			pending = true
		}
	}

	if inQuote {
		return nil, fmt.Errorf("unclosed quote in command")
	}
	if pending {
		args = append(args, current.String())
	}

	return args, nil
}
