package launch

import (
	"context"
	"log/slog"
	"os"
	"os/user"
	"regexp"

	"github.com/cruciblehq/cruxlaunch/internal/dockerfile"
	"github.com/cruciblehq/cruxlaunch/internal/engine"
)

// Interpreters probed for the host python version, in order.
var pythonBinaries = []string{"python3", "python"}

var pythonVersionPattern = regexp.MustCompile(`Python (\d+\.\d+(?:\.\d+)?)`)

// Returns the version of the host's python interpreter, or "" when none is
// found.
func hostPythonVersion(ctx context.Context, runner engine.Runner) string {
	for _, bin := range pythonBinaries {
		if _, err := runner.LookPath(bin); err != nil {
			continue
		}

		res, err := runner.Run(ctx, bin, "--version")
		if err != nil || res.ExitCode != 0 {
			continue
		}

		// Python 2 prints its version on stderr.
		if m := pythonVersionPattern.FindStringSubmatch(res.Stdout + res.Stderr); m != nil {
			return m[1]
		}
	}

	slog.Debug("no python interpreter found on host")
	return ""
}

// Returns the user the container user is modeled on.
func hostUser() dockerfile.HostUser {
	u := dockerfile.HostUser{UID: os.Geteuid()}

	current, err := user.Current()
	if err != nil {
		slog.Debug("could not look up current user", "error", err)
		return u
	}

	u.Name = current.Username
	return u
}
