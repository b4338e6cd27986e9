package internal

import (
	"log/slog"
	"strconv"
	"sync/atomic"
)

var (
	quietMode   atomic.Bool
	debugMode   atomic.Bool
	verboseMode atomic.Bool
)

// Seeds the output modes from linker flags. CLI flags may override them later.
func init() {
	seed(&quietMode, rawQuiet)
	seed(&debugMode, rawDebug)
	seed(&verboseMode, rawVerbose)
}

func seed(b *atomic.Bool, raw string) {
	if v, err := strconv.ParseBool(raw); err == nil {
		b.Store(v)
	}
}

// Enables or disables quiet mode.
func SetQuiet(enabled bool) { quietMode.Store(enabled) }

// Enables or disables debug mode.
func SetDebug(enabled bool) { debugMode.Store(enabled) }

// Enables or disables verbose output.
func SetVerbose(enabled bool) { verboseMode.Store(enabled) }

func IsQuiet() bool   { return quietMode.Load() }
func IsDebug() bool   { return debugMode.Load() }
func IsVerbose() bool { return verboseMode.Load() }

// Returns the log level implied by the current modes.
//
// Debug wins over quiet. Verbose does not change the level; it only adds
// source locations to log records.
func LogLevel() slog.Level {
	switch {
	case IsDebug():
		return slog.LevelDebug
	case IsQuiet():
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
