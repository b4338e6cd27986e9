package internal

import (
	"io"
	"log/slog"
)

// Creates the process logger, writing text records to w.
//
// The level follows the current output modes, and verbose mode adds source
// locations. Call again after the modes change.
func NewLogger(w io.Writer) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     LogLevel(),
		AddSource: IsVerbose(),
	})
	return slog.New(handler).With("app", Name)
}
