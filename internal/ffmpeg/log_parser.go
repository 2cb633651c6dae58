package ffmpeg

import "strings"

// ParseLogLevel splits an ffmpeg output line produced with -loglevel
// level+<lvl> into its level and message. Lines look like
// "[error] message" or "[mp4 @ 0x55d] [warning] message"; the component
// prefix is kept in the message. Unprefixed lines are reported as info.
func ParseLogLevel(line string) (level, msg string) {
	if level, rest, ok := splitLevel(line); ok {
		return level, rest
	}

	// Component prefix followed by a level tag.
	if strings.HasPrefix(line, "[") {
		if end := strings.Index(line, "] "); end != -1 {
			component, rest := line[:end+2], line[end+2:]
			if level, tail, ok := splitLevel(rest); ok {
				return level, component + tail
			}
		}
	}

	return "info", line
}

// splitLevel strips a leading "[level] " tag when it names an ffmpeg level.
func splitLevel(s string) (level, rest string, ok bool) {
	if !strings.HasPrefix(s, "[") {
		return "", s, false
	}
	end := strings.Index(s, "] ")
	if end == -1 {
		return "", s, false
	}
	switch tag := s[1:end]; tag {
	case "quiet", "panic", "fatal", "error", "warning", "info", "verbose", "debug", "trace":
		return tag, s[end+2:], true
	}
	return "", s, false
}
