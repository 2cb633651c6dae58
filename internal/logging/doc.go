// Package logging provides structured logging with per-module log levels.
//
// # Overview
//
// Loggers are log/slog loggers. Output is routed automatically:
//   - to the systemd journal when journald is reachable
//   - to stdout when a terminal, pipe or file is attached
//   - to both when both are available
//
// # Usage
//
// Initialize once at startup, then ask for a logger per module:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"pipeline": "debug",
//			"ffmpeg":   "warn",
//		},
//	})
//
//	logger := logging.GetLogger("pipeline").With("input", path)
//	logger.Info("Processing file")
//
// Loggers obtained before Initialize are updated in place when it runs.
//
// # Journal
//
// Journal entries carry SYSLOG_IDENTIFIER=depthvideo and one upper-cased
// field per attribute:
//
//	journalctl -t depthvideo MODULE=remux
//
// # Subprocess output
//
// [RingBuffer] keeps the last N lines of a subprocess so they can be shown
// when it fails. See [FormatLogLine].
package logging
