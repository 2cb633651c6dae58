// Package process runs external commands such as ffmpeg to completion.
//
// Process wraps os/exec for a single subprocess:
//   - the command string is split with shell-like quoting
//   - stdout and stderr are streamed line by line to a logger, optionally
//     re-levelled by a LogParser, and to an OutputHandler
//   - cancellation sends SIGINT, then SIGKILL after a grace period
//   - Run returns the exit status instead of an error
//
// Example:
//
//	p := process.NewProcessWithOutput("remux", cmd, logger, handler)
//	p.SetLogParser(logging.GetLogger("ffmpeg"), ffmpeg.ParseLogLevel)
//	if code := p.RunContext(ctx); code != 0 {
//	    // report handler contents
//	}
package process
