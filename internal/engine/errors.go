package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/containerd/errdefs"
)

var (
	ErrConfiguration = errors.New("engine not configured")
	ErrBuild         = errors.New("image build failed")
	ErrPull          = errors.New("image pull failed")
	ErrInspection    = errors.New("image inspection failed")
)

// Failed engine invocation.
//
// Error wraps the category sentinel for the operation, and additionally
// [errdefs.ErrNotFound] when the engine reported that the image does not
// exist.
type Error struct {
	Op       string // Engine subcommand, e.g. "image build".
	Ref      string // Image reference the command operated on.
	ExitCode int    // Exit code of the client process.
	Stderr   string // Captured standard error, trimmed.

	kind error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s %s exited with code %d", e.kind, e.Op, e.Ref, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if isNotFound(e.Stderr) {
		return []error{e.kind, errdefs.ErrNotFound}
	}
	return []error{e.kind}
}

// Returns true when stderr carries the engine's missing image message.
func isNotFound(stderr string) bool {
	s := strings.ToLower(stderr)
	return strings.Contains(s, "no such image") || strings.Contains(s, "no such object")
}
