package internal

import (
	"fmt"
	"runtime"
	"strings"
)

// Name of the tool, used for logger groups, XDG directories and the CLI.
const Name = "cruxlaunch"

const (
	undefined  = "(undefined)"
	localBuild = "(local)"
	mainBranch = "main"
)

// Set via -ldflags "-X github.com/cruciblehq/cruxlaunch/internal.version=...".
var (
	version   = ""
	stage     = ""
	gitCommit = ""

	rawQuiet   = "false"
	rawDebug   = "false"
	rawVerbose = "false"
)

// Returns the version without a leading "v", or "(undefined)".
func Version() string {
	v := strings.ToLower(strings.TrimSpace(version))
	if v == "" {
		return undefined
	}
	return strings.TrimPrefix(v, "v")
}

// Returns the release stage the binary was built from, or "(undefined)".
func Stage() string {
	return orUndefined(strings.ToLower(stage))
}

// Returns the commit hash the binary was built from, or "(undefined)".
func GitCommit() string {
	return orUndefined(gitCommit)
}

// Returns true if any of the release variables were left unset.
func IsLocal() bool {
	for _, v := range []string{version, stage, gitCommit} {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

// Returns "<version>[+<stage>] <commit> [<os>/<arch>]", or "(local)" for
// builds made outside the release pipeline.
func VersionString() string {
	if IsLocal() {
		return localBuild
	}

	suffix := ""
	if s := Stage(); s != mainBranch {
		suffix = "+" + s
	}

	return fmt.Sprintf("%s%s %s [%s/%s]", Version(), suffix, GitCommit(), runtime.GOOS, runtime.GOARCH)
}

func orUndefined(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return undefined
	}
	return s
}
